// Package rewrite performs the write-back phase: generating resource XML
// files and editing source files to reference them. All formatting decisions
// are delegated to the configured FormatHooks; this package only owns
// placement, verification, and atomicity.
package rewrite

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/config"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/scanner"
)

// ResourceWriter merges translated entries into the per-module resource XML
// files for both the source and target language.
type ResourceWriter struct {
	root         string
	pathTemplate string
	hooks        config.FormatHooks
	sourceLang   string
	targetLang   string
}

// NewResourceWriter creates a writer rooted at the project directory.
// pathTemplate locates a module's resource file with {module} and {lang}
// placeholders.
func NewResourceWriter(root, pathTemplate string, hooks config.FormatHooks, sourceLang, targetLang string) *ResourceWriter {
	return &ResourceWriter{
		root:         root,
		pathTemplate: pathTemplate,
		hooks:        hooks,
		sourceLang:   sourceLang,
		targetLang:   targetLang,
	}
}

// WriteModule merges entries into one module's source- and target-language
// resource files. Resource names colliding with a differently-texted
// existing resource are resolved by numeric suffixing before anything is
// written, so both files and the subsequent code edits agree on the final
// names. Entries are mutated in place when their name is resolved.
func (w *ResourceWriter) WriteModule(module string, entries []*strex.StringEntry, paths *WrittenPaths) ([]*strex.NameCollisionWarning, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	srcPath := w.resourcePath(module, w.sourceLang)
	dstPath := w.resourcePath(module, w.targetLang)

	existingSrc, err := loadResource(srcPath)
	if err != nil {
		return nil, err
	}
	existingDst, err := loadResource(dstPath)
	if err != nil {
		return nil, err
	}

	warnings := w.resolveNames(entries, existingSrc)

	srcFile := w.mergeEntries(existingSrc, entries, func(e *strex.StringEntry) string { return e.Text })
	if err := w.writeResourceFile(srcPath, srcFile); err != nil {
		return warnings, err
	}
	dstFile := w.mergeEntries(existingDst, entries, func(e *strex.StringEntry) string { return e.Translation })
	if err := w.writeResourceFile(dstPath, dstFile); err != nil {
		return warnings, err
	}
	if paths != nil {
		paths.add(srcPath, dstPath)
	}
	return warnings, nil
}

// resolveNames gives every entry a resource name that is unique within the
// module. An existing resource with the same name and the same text is
// reused as-is; a name clash with different text gets a numeric suffix.
func (w *ResourceWriter) resolveNames(entries []*strex.StringEntry, existing []scanner.ResourceEntry) []*strex.NameCollisionWarning {
	taken := make(map[string]string, len(existing))
	for _, r := range existing {
		taken[r.Name] = r.Text
	}

	var warnings []*strex.NameCollisionWarning
	for _, e := range entries {
		name := e.ResourceName
		if name == "" {
			name = scanner.GenerateResourceName(e.Text)
		}
		if text, ok := taken[name]; ok && text == e.Text {
			e.ResourceName = name
			continue
		}
		resolved := name
		for i := 2; ; i++ {
			if _, ok := taken[resolved]; !ok {
				break
			}
			resolved = fmt.Sprintf("%s_%d", name, i)
		}
		if resolved != name {
			warnings = append(warnings, &strex.NameCollisionWarning{Name: name, Resolved: resolved})
		}
		e.ResourceName = resolved
		taken[resolved] = e.Text
	}
	return warnings
}

// mergeEntries appends the new resources after the existing ones, skipping
// entries whose name is already present (the reuse case from resolveNames).
func (w *ResourceWriter) mergeEntries(existing []scanner.ResourceEntry, entries []*strex.StringEntry, textOf func(*strex.StringEntry) string) []resourceElement {
	out := make([]resourceElement, 0, len(existing)+len(entries))
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		out = append(out, resourceElement{name: r.Name, body: w.hooks.FormatXMLText(r.Text, nil)})
		seen[r.Name] = true
	}
	sorted := append([]*strex.StringEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ResourceName < sorted[j].ResourceName })
	for _, e := range sorted {
		if seen[e.ResourceName] {
			continue
		}
		out = append(out, resourceElement{name: e.ResourceName, body: w.hooks.FormatXMLText(textOf(e), e.Params)})
		seen[e.ResourceName] = true
	}
	return out
}

type resourceElement struct {
	name string
	body string
}

// writeResourceFile renders the canonical file shape and writes it via a
// temp file and rename. Saving the same content twice produces identical
// bytes.
func (w *ResourceWriter) writeResourceFile(path string, elements []resourceElement) error {
	var b strings.Builder
	b.WriteString("<resources>\n")
	for _, el := range elements {
		fmt.Fprintf(&b, "    <string name=\"%s\">%s</string>\n", el.name, el.body)
	}
	b.WriteString("</resources>\n")
	return writeFileAtomic(path, []byte(b.String()))
}

func (w *ResourceWriter) resourcePath(module, lang string) string {
	p := strings.ReplaceAll(w.pathTemplate, "{module}", module)
	p = strings.ReplaceAll(p, "{lang}", lang)
	return filepath.Join(w.root, filepath.FromSlash(p))
}

func loadResource(path string) ([]scanner.ResourceEntry, error) {
	entries, err := scanner.LoadResourceFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// WrittenPaths accumulates the files touched by a save, for reporting.
type WrittenPaths struct {
	paths []string
	seen  map[string]bool
}

func (p *WrittenPaths) add(paths ...string) {
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	for _, path := range paths {
		if !p.seen[path] {
			p.seen[path] = true
			p.paths = append(p.paths, path)
		}
	}
}

// List returns the touched paths in write order.
func (p *WrittenPaths) List() []string {
	return append([]string(nil), p.paths...)
}

// writeFileAtomic writes data through a temp file in the target directory
// followed by a rename, creating parent directories as needed. Failures
// leave any previous file intact.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &strex.PersistenceError{Path: path, Cause: err}
	}
	tmp, err := os.CreateTemp(dir, ".strex-*.tmp")
	if err != nil {
		return &strex.PersistenceError{Path: path, Cause: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &strex.PersistenceError{Path: path, Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &strex.PersistenceError{Path: path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &strex.PersistenceError{Path: path, Cause: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &strex.PersistenceError{Path: path, Cause: err}
	}
	return nil
}
