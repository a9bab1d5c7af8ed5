package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestExportImport_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	entries := map[string]string{
		Key("你好", "en"): "Hello",
		Key("设置", "en"): "Settings",
	}
	if err := Export(path, entries); err != nil {
		t.Fatal(err)
	}

	dst := NewMemoryCache(0)
	n, err := Import(path, dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("imported %d entries, want 2", n)
	}
	for k, want := range entries {
		if got, ok := dst.Get(k); !ok || got != want {
			t.Errorf("Get(%q) = %q, %v", k, got, ok)
		}
	}
}

func TestImport_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	data, err := json.Marshal(ExportFile{Version: 99, Entries: map[string]string{"k": "v"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Import(path, NewMemoryCache(0)); err == nil {
		t.Error("version 99 accepted")
	}
}

func TestImport_MissingFile(t *testing.T) {
	if _, err := Import(filepath.Join(t.TempDir(), "gone.json"), NewMemoryCache(0)); err == nil {
		t.Error("missing file accepted")
	}
}

func TestImport_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Import(path, NewMemoryCache(0)); err == nil {
		t.Error("garbage accepted")
	}
}
