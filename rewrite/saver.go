package rewrite

import (
	"fmt"
	"sort"
	"sync"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/session"
)

// saveLocks serializes saves per project root. Concurrent saves of the same
// project are rejected, not queued.
var saveLocks sync.Map // root -> *sync.Mutex

// ErrSaveInProgress is returned when another save of the same project is
// still running.
var ErrSaveInProgress = fmt.Errorf("a save of this project is already in progress")

// Saver runs the full write-back of all translated entries: resource files
// first, then source edits, then the session state transition.
type Saver struct {
	root      string
	store     *session.Store
	resources *ResourceWriter
	code      *CodeRewriter
}

// NewSaver wires a saver from its parts.
func NewSaver(root string, store *session.Store, resources *ResourceWriter, code *CodeRewriter) *Saver {
	return &Saver{root: root, store: store, resources: resources, code: code}
}

// SaveReport summarizes one save run.
type SaveReport struct {
	// Saved lists the fingerprints whose resource and code edits are both
	// on disk. These entries transitioned to the saved state.
	Saved []string
	// Stale lists entries whose resource was written but whose source
	// location changed since the scan. They remain translated; a rescan
	// re-anchors them.
	Stale []*strex.StaleReplacementError
	// Collisions lists auto-resolved resource name clashes.
	Collisions []*strex.NameCollisionWarning
	// Files lists every file written, in write order.
	Files []string
}

// Save writes back every translated entry. Resource files for all modules
// are written before any source edit, so a stale source location can only
// leave an unused resource behind, never a dangling accessor. Entries whose
// edits all land are marked saved and the session is persisted.
func (s *Saver) Save() (*SaveReport, error) {
	lock := lockFor(s.root)
	if !lock.TryLock() {
		return nil, ErrSaveInProgress
	}
	defer lock.Unlock()

	entries := s.store.Translated()
	if len(entries) == 0 {
		return &SaveReport{}, nil
	}

	report := &SaveReport{}
	var paths WrittenPaths

	byModule := make(map[string][]*strex.StringEntry)
	for _, e := range entries {
		byModule[e.Module] = append(byModule[e.Module], e)
	}
	for _, module := range sortedKeys(byModule) {
		warnings, err := s.resources.WriteModule(module, byModule[module], &paths)
		report.Collisions = append(report.Collisions, warnings...)
		if err != nil {
			report.Files = paths.List()
			return report, err
		}
	}

	// Resolved resource names must survive even if every code edit below
	// turns out stale, since the resource files already use them.
	if err := s.store.Persist(); err != nil {
		report.Files = paths.List()
		return report, err
	}

	byFile := make(map[string][]*strex.StringEntry)
	for _, e := range entries {
		byFile[e.FilePath] = append(byFile[e.FilePath], e)
	}
	for _, file := range sortedKeys(byFile) {
		applied, stale, err := s.code.RewriteFile(file, byFile[file], &paths)
		report.Stale = append(report.Stale, stale...)
		if err != nil {
			report.Files = paths.List()
			return report, err
		}
		report.Saved = append(report.Saved, applied...)
	}
	report.Files = paths.List()

	if len(report.Saved) > 0 {
		sort.Strings(report.Saved)
		if err := s.store.MarkSaved(report.Saved...); err != nil {
			return report, err
		}
	}
	return report, nil
}

func lockFor(root string) *sync.Mutex {
	actual, _ := saveLocks.LoadOrStore(root, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
