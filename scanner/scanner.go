// Package scanner walks a project tree and extracts native-language string
// literal candidates from source files.
//
// The scan is lexical, not syntactic: each file is tokenized with full
// quote/escape awareness so comments, char literals, raw strings and
// escaped quotes never produce false candidates. A literal qualifies when
// its decoded text contains at least one codepoint in the configured native
// range (CJK Unified Ideographs by default). Literals passed directly to
// logging calls and accesses of already-generated resource symbols are
// excluded; the latter are recorded as "already localized" context.
package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"unicode"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

// skipDirs contains directory names never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	".gradle":      true,
	".idea":        true,
	"build":        true,
	"node_modules": true,
}

// Config controls a scan.
type Config struct {
	// Root is the project root directory.
	Root string
	// FileTypes are the source extensions to scan (default .kt, .kts).
	FileTypes []string
	// LogCalls are call names whose direct string arguments are excluded
	// (default Log.d/w/i/e/v, println, print).
	LogCalls []string
	// ResourcePrefix is the accessor pattern of already-generated resources
	// (default "ResStrings.").
	ResourcePrefix string
	// NativeRanges are the codepoint ranges that make a literal a candidate
	// (default unicode.Han).
	NativeRanges []*unicode.RangeTable
	// ResourceDirSuffix locates existing resource files: any directory whose
	// slash path ends with this suffix is searched for resource XML files
	// (default "libres/strings").
	ResourceDirSuffix string
	// SourceLang selects which strings_<lang>.xml carries original-language
	// text when loading existing resources (default "zh").
	SourceLang string
	// Workers bounds the per-file scan concurrency (default NumCPU, max 8).
	Workers int
}

func (c *Config) withDefaults() Config {
	out := *c
	if len(out.FileTypes) == 0 {
		out.FileTypes = []string{".kt", ".kts"}
	}
	if len(out.LogCalls) == 0 {
		out.LogCalls = []string{"Log.d", "Log.w", "Log.i", "Log.e", "Log.v", "println", "print"}
	}
	if out.ResourcePrefix == "" {
		out.ResourcePrefix = "ResStrings."
	}
	if len(out.NativeRanges) == 0 {
		out.NativeRanges = []*unicode.RangeTable{unicode.Han}
	}
	if out.ResourceDirSuffix == "" {
		out.ResourceDirSuffix = "libres/strings"
	}
	if out.SourceLang == "" {
		out.SourceLang = "zh"
	}
	if out.Workers <= 0 {
		out.Workers = runtime.NumCPU()
		if out.Workers > 8 {
			out.Workers = 8
		}
	}
	return out
}

// Result is the outcome of one project scan.
type Result struct {
	// Entries are the extracted candidates in (path, offset) order.
	Entries []*strex.StringEntry
	// Existing are resource accessor occurrences recorded as context.
	Existing []strex.ResourceRef
	// AlreadyLocalized maps literal text that matched an existing resource
	// to that resource's name; such literals are not re-extracted.
	AlreadyLocalized map[string]string
	// Errors collects per-file scan failures; the scan itself continues.
	Errors []*strex.ScanError
	// FilesScanned is the number of source files visited.
	FilesScanned int
}

// Scanner extracts candidate literals from a project tree.
type Scanner struct {
	cfg Config
}

// New creates a Scanner. Zero-value config fields take defaults.
func New(cfg Config) *Scanner {
	return &Scanner{cfg: cfg.withDefaults()}
}

// fileOutcome is the per-file scan result, merged in file order afterward.
type fileOutcome struct {
	literals []rawLiteral
	refs     []strex.ResourceRef
	err      *strex.ScanError
}

// Scan walks the tree and extracts all candidates. Files are scanned
// concurrently; results are merged into one deterministic ordering.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	sources, resourceFiles, err := s.collectFiles()
	if err != nil {
		return nil, err
	}

	existing := s.loadExistingResources(resourceFiles)

	outcomes := make([]fileOutcome, len(sources))
	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup

	for i, path := range sources {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = s.scanFile(path)
		}(i, path)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		AlreadyLocalized: make(map[string]string),
		FilesScanned:     len(sources),
	}

	for i, path := range sources {
		o := outcomes[i]
		if o.err != nil {
			res.Errors = append(res.Errors, o.err)
			continue
		}
		rel := s.relPath(path)
		res.Existing = append(res.Existing, o.refs...)

		// Occurrence ordinals count identical (text, call context) literals
		// within one file, in file order, for stable fingerprints.
		ordinals := make(map[string]int)
		for _, lit := range o.literals {
			if name, ok := existing[lit.text]; ok {
				res.AlreadyLocalized[lit.text] = name
				continue
			}
			key := lit.text + "\x00" + lit.callContext
			ord := ordinals[key]
			ordinals[key]++

			res.Entries = append(res.Entries, &strex.StringEntry{
				Fingerprint:  strex.Fingerprint(rel, lit.text, lit.callContext, ord),
				Text:         lit.text,
				FilePath:     rel,
				Line:         lit.line,
				Offset:       lit.offset,
				Raw:          lit.raw,
				Module:       moduleOf(rel),
				CallContext:  lit.callContext,
				Ordinal:      ord,
				Params:       lit.params,
				ResourceName: AsciiResourceName(lit.text),
				State:        strex.StateNew,
			})
		}
	}

	return res, nil
}

// collectFiles walks the root once, gathering source files and existing
// resource XML files. The source list is sorted for deterministic output.
func (s *Scanner) collectFiles() (sources, resources []string, err error) {
	exts := make(map[string]bool, len(s.cfg.FileTypes))
	for _, e := range s.cfg.FileTypes {
		exts[e] = true
	}

	walkErr := filepath.WalkDir(s.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if exts[filepath.Ext(path)] {
			sources = append(sources, path)
			return nil
		}
		if isResourceFile(path, s.cfg.ResourceDirSuffix) {
			resources = append(resources, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, walkErr
	}

	sort.Strings(sources)
	sort.Strings(resources)
	return sources, resources, nil
}

// scanFile lexes one file. Read or decode failures become a ScanError.
func (s *Scanner) scanFile(path string) fileOutcome {
	content, err := readSourceFile(path)
	if err != nil {
		return fileOutcome{err: &strex.ScanError{Path: s.relPath(path), Cause: err}}
	}

	lx := newLexer(content, lexConfig{
		logCalls:       s.cfg.LogCalls,
		resourcePrefix: s.cfg.ResourcePrefix,
		nativeRanges:   s.cfg.NativeRanges,
	})
	literals, refs := lx.run()

	rel := s.relPath(path)
	for i := range refs {
		refs[i].FilePath = rel
	}
	return fileOutcome{literals: literals, refs: refs}
}

func (s *Scanner) relPath(path string) string {
	rel, err := filepath.Rel(s.cfg.Root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func isResourceFile(path, dirSuffix string) bool {
	slash := filepath.ToSlash(path)
	dir := filepath.ToSlash(filepath.Dir(slash))
	if !strings.HasSuffix(dir, dirSuffix) {
		return false
	}
	base := filepath.Base(slash)
	return strings.HasPrefix(base, "strings_") && strings.HasSuffix(base, ".xml")
}

// moduleOf returns the top-level module directory of a relative path,
// "common" when the file sits at the root.
func moduleOf(rel string) string {
	head, _, found := strings.Cut(rel, "/")
	if !found {
		return "common"
	}
	return head
}
