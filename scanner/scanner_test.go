package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanner_Scan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/src/Main.kt", `package com.example.app

fun f() {
    toast("你好")
    toast("你好")
    Log.d("TAG", "跳过日志")
    Text("已知文本")
}
`)
	writeFile(t, root, "feature/src/Feature.kt", `package com.example.feature

fun g() {
    toast("再见")
}
`)
	writeFile(t, root, "app/src/commonMain/libres/strings/strings_zh.xml",
		`<resources><string name="known">已知文本</string></resources>`)
	writeFile(t, root, "build/Generated.kt", `val x = "构建产物中的文本"`)

	result, err := New(Config{Root: root}).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesScanned != 2 {
		t.Errorf("files scanned = %d, want 2 (build/ must be skipped)", result.FilesScanned)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("entries = %d, want 3: %+v", len(result.Entries), result.Entries)
	}

	// Deterministic (path, offset) ordering.
	if result.Entries[0].Text != "你好" || result.Entries[2].Text != "再见" {
		t.Errorf("unexpected ordering: %q, %q, %q",
			result.Entries[0].Text, result.Entries[1].Text, result.Entries[2].Text)
	}

	// Repeated identical literals get distinct ordinals and fingerprints.
	first, second := result.Entries[0], result.Entries[1]
	if first.Ordinal != 0 || second.Ordinal != 1 {
		t.Errorf("ordinals = %d, %d; want 0, 1", first.Ordinal, second.Ordinal)
	}
	if first.Fingerprint == second.Fingerprint {
		t.Errorf("repeated literals must not share a fingerprint")
	}

	if first.Module != "app" || result.Entries[2].Module != "feature" {
		t.Errorf("modules = %q, %q", first.Module, result.Entries[2].Module)
	}
	if first.FilePath != "app/src/Main.kt" {
		t.Errorf("file path = %q", first.FilePath)
	}
	if first.State != strex.StateNew {
		t.Errorf("state = %s, want %s", first.State, strex.StateNew)
	}

	// A literal matching an existing resource is context, not a candidate.
	if name, ok := result.AlreadyLocalized["已知文本"]; !ok || name != "known" {
		t.Errorf("AlreadyLocalized = %v", result.AlreadyLocalized)
	}
	for _, e := range result.Entries {
		if e.Text == "已知文本" {
			t.Errorf("already-localized literal must not be extracted")
		}
	}
}

func TestScanner_ScanIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/src/Main.kt", `fun f() { toast("你好") }`)

	sc := New(Config{Root: root})
	a, err := sc.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := sc.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Entries) != 1 || len(b.Entries) != 1 {
		t.Fatalf("entries = %d, %d", len(a.Entries), len(b.Entries))
	}
	if a.Entries[0].Fingerprint != b.Entries[0].Fingerprint {
		t.Errorf("rescan changed the fingerprint")
	}
}

func TestScanner_ScanCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/src/Main.kt", `fun f() { toast("你好") }`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Config{Root: root}).Scan(ctx); err == nil {
		t.Fatal("cancelled scan must return an error")
	}
}

func TestModuleOf(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"app/src/Main.kt", "app"},
		{"Main.kt", "common"},
		{"feature/deep/nested/F.kt", "feature"},
	}
	for _, tt := range tests {
		if got := moduleOf(tt.rel); got != tt.want {
			t.Errorf("moduleOf(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}

func TestIsResourceFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"app/src/commonMain/libres/strings/strings_zh.xml", true},
		{"app/src/commonMain/libres/strings/strings_en.xml", true},
		{"app/src/commonMain/libres/strings/other.xml", false},
		{"app/src/commonMain/res/values/strings_zh.xml", false},
	}
	for _, tt := range tests {
		if got := isResourceFile(tt.path, "libres/strings"); got != tt.want {
			t.Errorf("isResourceFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
