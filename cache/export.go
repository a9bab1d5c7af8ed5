package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// exportVersion guards the export file format.
const exportVersion = 1

// ExportFile is the on-disk shape of a cache export. Exports let a team
// member seed their cache from a colleague's run without sharing a Redis
// instance.
type ExportFile struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Entries    map[string]string `json:"entries"`
}

// Export writes entries to path as versioned JSON.
func Export(path string, entries map[string]string) error {
	file := ExportFile{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Entries:    entries,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache export: %w", err)
	}
	return nil
}

// Import reads a versioned export from path and stores every entry into
// dst. It returns the number of imported entries.
func Import(path string, dst TranslationCache) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read cache export: %w", err)
	}
	var file ExportFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse cache export: %w", err)
	}
	if file.Version != exportVersion {
		return 0, fmt.Errorf("unsupported cache export version %d (want %d)", file.Version, exportVersion)
	}
	n := 0
	for k, v := range file.Entries {
		if err := dst.Set(k, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
