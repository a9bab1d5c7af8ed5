package rewrite

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/config"
)

// CodeRewriter replaces extracted literals in source files with resource
// accessor expressions and inserts the imports those expressions need.
type CodeRewriter struct {
	root  string
	hooks config.FormatHooks
}

// NewCodeRewriter creates a rewriter rooted at the project directory.
func NewCodeRewriter(root string, hooks config.FormatHooks) *CodeRewriter {
	return &CodeRewriter{root: root, hooks: hooks}
}

// RewriteFile applies all edits for one source file in a single pass.
// Every entry's recorded source slice is re-verified at its offset first;
// entries that no longer match are skipped and reported, never guessed at.
// Edits apply from the highest offset down so earlier offsets stay valid.
// The file is written only if at least one edit applied.
func (r *CodeRewriter) RewriteFile(filePath string, entries []*strex.StringEntry, paths *WrittenPaths) (applied []string, stale []*strex.StaleReplacementError, err error) {
	full := filepath.Join(r.root, filepath.FromSlash(filePath))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, nil, &strex.ScanError{Path: filePath, Cause: err}
	}

	sorted := append([]*strex.StringEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset > sorted[j].Offset })

	text := string(data)
	var module string
	for _, e := range sorted {
		end := e.Offset + len(e.Raw)
		if e.Offset < 0 || end > len(text) || text[e.Offset:end] != e.Raw {
			stale = append(stale, &strex.StaleReplacementError{
				Fingerprint: e.Fingerprint,
				FilePath:    e.FilePath,
				Line:        e.Line,
			})
			continue
		}
		replacement := r.hooks.GetReplacedText(e.ResourceName, e.Params, e.FilePath)
		text = text[:e.Offset] + replacement + text[end:]
		applied = append(applied, e.Fingerprint)
		module = e.Module
	}
	if len(applied) == 0 {
		return nil, stale, nil
	}

	text = r.ensureImports(text, module, filePath)
	if err := writeFileAtomic(full, []byte(text)); err != nil {
		return nil, stale, err
	}
	if paths != nil {
		paths.add(full)
	}
	return applied, stale, nil
}

// ensureImports inserts the hook-provided import lines that are not already
// present. New imports go after the last existing import, or after the
// package declaration when the file has none.
func (r *CodeRewriter) ensureImports(text, module, filePath string) string {
	needed := r.hooks.GetImportStatements(module, filePath)
	if len(needed) == 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	lastImport := -1
	packageLine := -1
	have := make(map[string]bool)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import "):
			lastImport = i
			have[trimmed] = true
		case strings.HasPrefix(trimmed, "package "):
			packageLine = i
		}
	}

	var missing []string
	for _, imp := range needed {
		if !have[strings.TrimSpace(imp)] {
			missing = append(missing, imp)
		}
	}
	if len(missing) == 0 {
		return text
	}

	insertAt := lastImport + 1
	if lastImport == -1 {
		insertAt = packageLine + 1
		// a blank separator after the package declaration
		if packageLine >= 0 {
			missing = append([]string{""}, missing...)
		}
	}

	out := make([]string, 0, len(lines)+len(missing))
	out = append(out, lines[:insertAt]...)
	out = append(out, missing...)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}
