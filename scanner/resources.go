package scanner

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

// ResourceEntry is one name/text pair from an existing resource file.
type ResourceEntry struct {
	Name string
	Text string
}

// androidUnescaper reverses the backslash escapes Android-style resource
// files carry for quotes. XML entities are already decoded by the parser;
// without this the loaded text still contains `\'`, and writing it back
// would escape the backslash again.
var androidUnescaper = strings.NewReplacer(`\'`, "'", `\"`, `"`)

// LoadResourceFile parses a strings_*.xml file leniently and returns its
// entries in document order, with XML entities and quote escapes decoded.
// Resource files are routinely hand-edited and not always well-formed XML,
// so this goes through an error-tolerant HTML parse instead of a strict
// XML decode.
func LoadResourceFile(path string) ([]ResourceEntry, error) {
	f, err := os.Open(path) // #nosec G304 - project resource files are user-specified
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var entries []ResourceEntry
	doc.Find("string").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			return
		}
		entries = append(entries, ResourceEntry{Name: name, Text: androidUnescaper.Replace(sel.Text())})
	})
	return entries, nil
}

// loadExistingResources maps already-localized literal text to its resource
// name, so rescans treat such literals as context instead of candidates.
// Only source-language files contribute; unparseable files are skipped.
func (s *Scanner) loadExistingResources(files []string) map[string]string {
	existing := make(map[string]string)
	for _, path := range files {
		if resourceFileLang(path) != s.cfg.SourceLang {
			continue
		}
		entries, err := LoadResourceFile(path)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if s.textIsNative(e.Text) {
				existing[e.Text] = e.Name
			}
		}
	}
	return existing
}

func (s *Scanner) textIsNative(text string) bool {
	for _, r := range text {
		for _, rt := range s.cfg.NativeRanges {
			if unicode.Is(rt, r) {
				return true
			}
		}
	}
	return false
}

// resourceFileLang extracts "zh" from ".../strings_zh.xml".
func resourceFileLang(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".xml")
	_, lang, found := strings.Cut(base, "strings_")
	if !found {
		return ""
	}
	return lang
}

// HarvestReferences collects up to limit existing source/target translation
// pairs by walking the project's module directories and matching resource
// names across the source- and target-language files located by
// pathTemplate ({module} and {lang} placeholders). The pairs seed the
// translation prompt so new strings match the project's existing tone.
func (s *Scanner) HarvestReferences(pathTemplate, targetLang string, limit int) ([]strex.ReferencePair, error) {
	if limit <= 0 {
		limit = 10
	}

	dirEntries, err := os.ReadDir(s.cfg.Root)
	if err != nil {
		return nil, err
	}

	var refs []strex.ReferencePair
	for _, de := range dirEntries {
		if !de.IsDir() || strings.HasPrefix(de.Name(), ".") || skipDirs[de.Name()] {
			continue
		}
		module := de.Name()

		sourcePath, err := renderResourcePath(pathTemplate, module, s.cfg.SourceLang)
		if err != nil {
			return nil, err
		}
		targetPath, err := renderResourcePath(pathTemplate, module, targetLang)
		if err != nil {
			return nil, err
		}

		source, err := LoadResourceFile(filepath.Join(s.cfg.Root, sourcePath))
		if err != nil {
			continue
		}
		target, err := LoadResourceFile(filepath.Join(s.cfg.Root, targetPath))
		if err != nil {
			continue
		}

		targetByName := make(map[string]string, len(target))
		for _, t := range target {
			targetByName[t.Name] = t.Text
		}

		for _, src := range source {
			t, ok := targetByName[src.Name]
			if !ok || strings.TrimSpace(t) == "" || !s.textIsNative(src.Text) {
				continue
			}
			refs = append(refs, strex.ReferencePair{
				Source:       src.Text,
				Target:       t,
				ResourceName: src.Name,
				Module:       module,
			})
			if len(refs) >= limit {
				return refs, nil
			}
		}
	}
	return refs, nil
}

func renderResourcePath(tmpl, module, lang string) (string, error) {
	return strex.RenderTemplate(tmpl, map[string]string{
		"module": module,
		"lang":   lang,
	})
}

// GenerateResourceName derives a default snake_case resource name from the
// ASCII content of the literal: letters lowercased, whitespace collapsed to
// underscores, everything else stripped, capped at 30 bytes. Text with no
// usable ASCII (the common case for purely native text) falls back to a
// short hash name; the AI provider usually suggests something better, and
// users can edit the name before saving.
func GenerateResourceName(text string) string {
	if name := AsciiResourceName(text); name != "" {
		return name
	}
	h := fnv.New32a()
	h.Write([]byte(text))
	return fmt.Sprintf("text_%05d", h.Sum32()%100000)
}

// AsciiResourceName is GenerateResourceName without the hash fallback: it
// returns "" when the text has no usable ASCII. The scanner uses it so that
// purely native literals keep an empty name the AI provider may fill in.
func AsciiResourceName(text string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			lastUnderscore = false
		case unicode.IsSpace(r):
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	name := strings.Trim(b.String(), "_")
	if len(name) > 30 {
		name = strings.Trim(name[:30], "_")
	}
	return name
}
