package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/config"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/session"
)

// app bundles the loaded configuration and the opened session store. Every
// subcommand starts by calling loadApp.
type app struct {
	cfg   *config.Config
	store *session.Store
}

func loadApp() (*app, error) {
	cfg, err := config.LoadOrDefault(rootDir)
	if err != nil {
		return nil, err
	}
	store, err := session.Open(sessionPath(cfg), cfg.Snapshot())
	if err != nil {
		return nil, err
	}
	if prev, changed := store.PreviousConfig(); changed {
		logWarning("configuration changed since this session was saved (was preset %s, %s -> %s)",
			prev.Preset, prev.SourceLang, prev.TargetLang)
	}
	return &app{cfg: cfg, store: store}, nil
}

func sessionPath(cfg *config.Config) string {
	if filepath.IsAbs(cfg.SessionPath) {
		return cfg.SessionPath
	}
	return filepath.Join(rootDir, cfg.SessionPath)
}

// resolveFingerprints expands user-typed fingerprint prefixes to full
// fingerprints. A prefix matching more than one entry is an error.
func (a *app) resolveFingerprints(args []string) ([]string, error) {
	entries := a.store.Entries()
	out := make([]string, 0, len(args))
	for _, arg := range args {
		var matches []string
		for _, e := range entries {
			if strings.HasPrefix(e.Fingerprint, arg) {
				matches = append(matches, e.Fingerprint)
			}
		}
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("no entry matches %q", arg)
		case 1:
			out = append(out, matches[0])
		default:
			return nil, fmt.Errorf("%q is ambiguous: matches %d entries", arg, len(matches))
		}
	}
	return out, nil
}

// stateCounts tallies session entries per lifecycle state.
func stateCounts(entries []*strex.StringEntry) map[strex.EntryState]int {
	counts := make(map[strex.EntryState]int)
	for _, e := range entries {
		counts[e.State]++
	}
	return counts
}

// printEntries lists entries one per line: short fingerprint, state,
// location, and text.
func printEntries(entries []*strex.StringEntry) {
	sorted := append([]*strex.StringEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].FilePath != sorted[j].FilePath {
			return sorted[i].FilePath < sorted[j].FilePath
		}
		return sorted[i].Offset < sorted[j].Offset
	})
	for _, e := range sorted {
		text := e.Text
		if e.Translation != "" {
			text = fmt.Sprintf("%s -> %s", e.Text, e.Translation)
		}
		fmt.Printf("%-12s %-10s %s:%d  %s\n", shortFP(e.Fingerprint), e.State, e.FilePath, e.Line, text)
	}
}

func shortFP(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
