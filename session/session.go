// Package session is the durable, cross-run record of every discovered
// entry and its lifecycle state.
//
// A Session maps fingerprints to entries, alongside the configuration
// snapshot that produced it. Each rescan merges into the session instead
// of replacing it, so curation decisions (Ignored, Saved) survive across
// runs. Every mutating operation persists before it is reported complete,
// through a temp-file-and-rename write so a crash can never leave a
// half-written store.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

// FormatVersion is the persisted session format version.
const FormatVersion = 1

// Snapshot is the project configuration captured alongside the entries.
type Snapshot struct {
	Preset               string `json:"preset,omitempty"`
	SourceLang           string `json:"source_lang"`
	TargetLang           string `json:"target_lang"`
	ResourcePathTemplate string `json:"resource_path_template"`
	PromptTemplate       string `json:"prompt_template,omitempty"`
	BatchSize            int    `json:"batch_size"`
}

// Session is the persisted state for one project.
type Session struct {
	Version int                           `json:"version"`
	SavedAt string                        `json:"saved_at"`
	Config  Snapshot                      `json:"config"`
	Entries map[string]*strex.StringEntry `json:"entries"`
}

// MergeReport describes what one rescan merge did.
type MergeReport struct {
	// Added are fingerprints inserted as New.
	Added []string
	// Updated are existing active entries refreshed in place.
	Updated []string
	// Removed are active entries whose literal vanished from the source.
	Removed []string
	// Reoffered are Saved entries re-offered as New because their literal
	// moved since the save.
	Reoffered []string
	// OverwrittenTranslations are entries that were Translated but unsaved
	// and were reverted to New by the rescan. Callers should warn before a
	// rescan whenever unsaved translations exist.
	OverwrittenTranslations []*strex.StringEntry
}

// Store owns one session file. All methods are safe for concurrent use and
// persist durably before returning.
type Store struct {
	mu         sync.Mutex
	path       string
	session    *Session
	prevConfig *Snapshot
}

// Open loads the session at path, creating an empty one if the file does
// not exist. cfg becomes the session's configuration snapshot; when it
// differs from the snapshot the session was last saved with, the replaced
// one stays available through PreviousConfig so callers can warn.
func Open(path string, cfg Snapshot) (*Store, error) {
	s := &Store{
		path: path,
		session: &Session{
			Version: FormatVersion,
			Config:  cfg,
			Entries: make(map[string]*strex.StringEntry),
		},
	}

	data, err := os.ReadFile(path) // #nosec G304 - session path is user-specified
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading session %s: %w", path, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}
	if sess.Version > FormatVersion {
		return nil, fmt.Errorf("session %s has format version %d, this build supports up to %d",
			path, sess.Version, FormatVersion)
	}
	if sess.Entries == nil {
		sess.Entries = make(map[string]*strex.StringEntry)
	}
	sess.Version = FormatVersion
	if sess.Config != (Snapshot{}) && sess.Config != cfg {
		prev := sess.Config
		s.prevConfig = &prev
	}
	sess.Config = cfg
	s.session = &sess
	return s, nil
}

// PreviousConfig returns the snapshot the session was last saved with, when
// Open replaced it with a different one. The second return is false for a
// fresh session or an unchanged configuration.
func (s *Store) PreviousConfig() (Snapshot, bool) {
	if s.prevConfig == nil {
		return Snapshot{}, false
	}
	return *s.prevConfig, true
}

// Path returns the session file path.
func (s *Store) Path() string { return s.path }

// Config returns the configuration snapshot.
func (s *Store) Config() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Config
}

// Merge folds a fresh scan into the session and persists the result.
//
// Per fingerprint: absent entries insert as New; Ignored and Saved entries
// keep their prior state and data (a Saved entry is re-offered only when
// its literal moved); Translated-but-unsaved entries are overwritten back
// to New, with the discarded work listed in the report; New and
// Selected entries refresh their location data in place. Active entries
// whose literal vanished are dropped.
func (s *Store) Merge(fresh []*strex.StringEntry) (*MergeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &MergeReport{}
	seen := make(map[string]bool, len(fresh))

	for _, f := range fresh {
		seen[f.Fingerprint] = true
		prior, ok := s.session.Entries[f.Fingerprint]
		if !ok {
			s.session.Entries[f.Fingerprint] = f
			report.Added = append(report.Added, f.Fingerprint)
			continue
		}

		switch prior.State {
		case strex.StateIgnored:
			// Stays excluded until explicitly revived.
		case strex.StateSaved:
			if prior.Line != f.Line || prior.Offset != f.Offset {
				s.session.Entries[f.Fingerprint] = f
				report.Reoffered = append(report.Reoffered, f.Fingerprint)
			}
		case strex.StateTranslated:
			overwritten := *prior
			s.session.Entries[f.Fingerprint] = f
			report.OverwrittenTranslations = append(report.OverwrittenTranslations, &overwritten)
		default: // New, Selected
			prior.Line = f.Line
			prior.Offset = f.Offset
			prior.Raw = f.Raw
			prior.Params = f.Params
			if prior.ResourceName == "" {
				prior.ResourceName = f.ResourceName
			}
			report.Updated = append(report.Updated, f.Fingerprint)
		}
	}

	for fp, e := range s.session.Entries {
		if seen[fp] || !e.State.Active() {
			continue
		}
		delete(s.session.Entries, fp)
		report.Removed = append(report.Removed, fp)
	}

	sort.Strings(report.Added)
	sort.Strings(report.Updated)
	sort.Strings(report.Removed)
	sort.Strings(report.Reoffered)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return report, nil
}

// Entries returns all entries ordered by file path, offset and ordinal.
func (s *Store) Entries() []*strex.StringEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(func(*strex.StringEntry) bool { return true })
}

// WorkQueue returns the active entries: everything except Ignored and
// Saved, in stable order.
func (s *Store) WorkQueue() []*strex.StringEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(func(e *strex.StringEntry) bool { return e.State.Active() })
}

// Untranslated returns the Selected entries still lacking a translation.
func (s *Store) Untranslated() []*strex.StringEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked((*strex.StringEntry).NeedsTranslation)
}

// Translated returns the entries awaiting save.
func (s *Store) Translated() []*strex.StringEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(func(e *strex.StringEntry) bool { return e.State == strex.StateTranslated })
}

// HasUnsavedTranslations reports whether a rescan would overwrite
// translated-but-unsaved work.
func (s *Store) HasUnsavedTranslations() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.session.Entries {
		if e.State == strex.StateTranslated {
			return true
		}
	}
	return false
}

// Get returns one entry by fingerprint.
func (s *Store) Get(fingerprint string) (*strex.StringEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.session.Entries[fingerprint]
	return e, ok
}

// Select marks New entries as Selected for translation.
func (s *Store) Select(fingerprints ...string) error {
	return s.transition("select", fingerprints, func(e *strex.StringEntry) bool {
		if e.State != strex.StateNew {
			return false
		}
		e.State = strex.StateSelected
		return true
	})
}

// Deselect returns Selected entries to New.
func (s *Store) Deselect(fingerprints ...string) error {
	return s.transition("deselect", fingerprints, func(e *strex.StringEntry) bool {
		if e.State != strex.StateSelected {
			return false
		}
		e.State = strex.StateNew
		e.Translation = ""
		e.BatchID = 0
		return true
	})
}

// Ignore excludes entries from the work queue across all future rescans.
func (s *Store) Ignore(fingerprints ...string) error {
	return s.transition("ignore", fingerprints, func(e *strex.StringEntry) bool {
		if e.State != strex.StateNew && e.State != strex.StateSelected {
			return false
		}
		e.State = strex.StateIgnored
		e.Translation = ""
		e.BatchID = 0
		return true
	})
}

// Unignore revives Ignored entries back to New.
func (s *Store) Unignore(fingerprints ...string) error {
	return s.transition("unignore", fingerprints, func(e *strex.StringEntry) bool {
		if e.State != strex.StateIgnored {
			return false
		}
		e.State = strex.StateNew
		return true
	})
}

// SetResourceName updates an entry's editable resource name.
func (s *Store) SetResourceName(fingerprint, name string) error {
	return s.transition("rename", []string{fingerprint}, func(e *strex.StringEntry) bool {
		e.ResourceName = name
		return true
	})
}

// MarkSaved transitions a Translated entry to Saved.
func (s *Store) MarkSaved(fingerprints ...string) error {
	return s.transition("mark saved", fingerprints, func(e *strex.StringEntry) bool {
		if e.State != strex.StateTranslated {
			return false
		}
		e.State = strex.StateSaved
		return true
	})
}

// transition applies fn to each named entry and persists once. A missing
// fingerprint or an invalid state transition fails the whole call before
// anything is persisted.
func (s *Store) transition(op string, fingerprints []string, fn func(*strex.StringEntry) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, fp := range fingerprints {
		e, ok := s.session.Entries[fp]
		if !ok {
			return fmt.Errorf("%s: unknown entry %s", op, fp)
		}
		if !fn(e) {
			return fmt.Errorf("%s: entry %s is %s", op, fp, e.State)
		}
	}
	return s.persistLocked()
}

// Persist writes the session durably. Exposed so the translator can
// checkpoint after each batch.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// persistLocked writes to a temp file in the session directory and renames
// it over the target, so the prior durable state is never corrupted by a
// failed or interrupted write.
func (s *Store) persistLocked() error {
	s.session.SavedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(s.session, "", "  ")
	if err != nil {
		return &strex.PersistenceError{Path: s.path, Cause: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &strex.PersistenceError{Path: s.path, Cause: err}
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return &strex.PersistenceError{Path: s.path, Cause: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &strex.PersistenceError{Path: s.path, Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &strex.PersistenceError{Path: s.path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &strex.PersistenceError{Path: s.path, Cause: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return &strex.PersistenceError{Path: s.path, Cause: err}
	}
	return nil
}

func (s *Store) sortedLocked(keep func(*strex.StringEntry) bool) []*strex.StringEntry {
	var out []*strex.StringEntry
	for _, e := range s.session.Entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		if out[i].Offset != out[j].Offset {
			return out[i].Offset < out[j].Offset
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out
}
