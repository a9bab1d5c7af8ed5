package rewrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/session"
)

func newTestSaver(t *testing.T, root string) (*Saver, *session.Store) {
	t.Helper()
	store, err := session.Open(filepath.Join(root, ".strex", "session.json"), session.Snapshot{
		Preset:     "libres",
		SourceLang: "zh",
		TargetLang: "en",
		BatchSize:  50,
	})
	if err != nil {
		t.Fatal(err)
	}
	hooks := libresHooks(t)
	saver := NewSaver(root, store,
		NewResourceWriter(root, testPathTemplate, hooks, "zh", "en"),
		NewCodeRewriter(root, hooks))
	return saver, store
}

// stageTranslated merges the entry and walks it to the translated state.
func stageTranslated(t *testing.T, store *session.Store, e *strex.StringEntry, translation string) {
	t.Helper()
	e.State = strex.StateNew
	if _, err := store.Merge([]*strex.StringEntry{e}); err != nil {
		t.Fatal(err)
	}
	if err := store.Select(e.Fingerprint); err != nil {
		t.Fatal(err)
	}
	stored, ok := store.Get(e.Fingerprint)
	if !ok {
		t.Fatalf("entry %s not in store", e.Fingerprint)
	}
	stored.Translation = translation
	stored.State = strex.StateTranslated
}

func TestSaver_FullSave(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "app/src/Main.kt", kotlinSource)
	saver, store := newTestSaver(t, root)

	e := sourceEntry(t, kotlinSource, "你好", "greeting")
	stageTranslated(t, store, e, "Hello")

	report, err := saver.Save()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Saved) != 1 || report.Saved[0] != e.Fingerprint {
		t.Errorf("Saved = %v", report.Saved)
	}
	if len(report.Stale) != 0 || len(report.Collisions) != 0 {
		t.Errorf("Stale = %v, Collisions = %v", report.Stale, report.Collisions)
	}
	if len(report.Files) != 3 {
		t.Errorf("Files = %v, want resource pair plus source", report.Files)
	}

	stored, _ := store.Get(e.Fingerprint)
	if stored.State != strex.StateSaved {
		t.Errorf("state = %v, want saved", stored.State)
	}
	if got := readFile(t, root, "app/strings_en.xml"); !strings.Contains(got, ">Hello<") {
		t.Errorf("target resource file = %q", got)
	}
	if got := readFile(t, root, "app/src/Main.kt"); !strings.Contains(got, "ResStrings.greeting") {
		t.Errorf("source not rewritten: %q", got)
	}

	// The saved state must survive a reload.
	reloaded, err := session.Open(store.Path(), store.Config())
	if err != nil {
		t.Fatal(err)
	}
	persisted, _ := reloaded.Get(e.Fingerprint)
	if persisted == nil || persisted.State != strex.StateSaved {
		t.Errorf("persisted state = %+v", persisted)
	}
}

func TestSaver_NothingToSave(t *testing.T) {
	saver, _ := newTestSaver(t, t.TempDir())
	report, err := saver.Save()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Saved) != 0 || len(report.Files) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}

func TestSaver_SecondSaveIsNoOp(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "app/src/Main.kt", kotlinSource)
	saver, store := newTestSaver(t, root)
	stageTranslated(t, store, sourceEntry(t, kotlinSource, "你好", "greeting"), "Hello")

	if _, err := saver.Save(); err != nil {
		t.Fatal(err)
	}
	after := readFile(t, root, "app/src/Main.kt")

	report, err := saver.Save()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Saved) != 0 {
		t.Errorf("second save touched entries: %v", report.Saved)
	}
	if got := readFile(t, root, "app/src/Main.kt"); got != after {
		t.Errorf("second save changed the source file")
	}
}

func TestSaver_StaleEntryStaysTranslated(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "app/src/Main.kt", kotlinSource)
	saver, store := newTestSaver(t, root)

	e := sourceEntry(t, kotlinSource, "你好", "greeting")
	e.Offset += 3
	stageTranslated(t, store, e, "Hello")

	report, err := saver.Save()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Saved) != 0 {
		t.Errorf("Saved = %v, want none", report.Saved)
	}
	if len(report.Stale) != 1 {
		t.Fatalf("Stale = %v", report.Stale)
	}

	// Resources are written before the source edit is attempted.
	if got := readFile(t, root, "app/strings_en.xml"); !strings.Contains(got, ">Hello<") {
		t.Errorf("resource file missing entry: %q", got)
	}
	stored, _ := store.Get(e.Fingerprint)
	if stored.State != strex.StateTranslated {
		t.Errorf("state = %v, want translated for a rescan", stored.State)
	}
}

func TestSaver_ConcurrentSaveRejected(t *testing.T) {
	root := t.TempDir()
	saver, _ := newTestSaver(t, root)

	lock := lockFor(root)
	lock.Lock()
	defer lock.Unlock()

	if _, err := saver.Save(); err != ErrSaveInProgress {
		t.Errorf("err = %v, want ErrSaveInProgress", err)
	}
}

func TestSaver_CollisionResolvedNamePersisted(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "app/src/Main.kt", kotlinSource)
	if err := os.WriteFile(filepath.Join(root, "app", "strings_zh.xml"),
		[]byte("<resources>\n    <string name=\"greeting\">早安</string>\n</resources>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	saver, store := newTestSaver(t, root)

	e := sourceEntry(t, kotlinSource, "你好", "greeting")
	stageTranslated(t, store, e, "Hello")

	report, err := saver.Save()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Collisions) != 1 {
		t.Fatalf("Collisions = %v", report.Collisions)
	}
	stored, _ := store.Get(e.Fingerprint)
	if stored.ResourceName != "greeting_2" {
		t.Errorf("resource name = %q, want greeting_2", stored.ResourceName)
	}
	if got := readFile(t, root, "app/src/Main.kt"); !strings.Contains(got, "ResStrings.greeting_2") {
		t.Errorf("source uses wrong accessor: %q", got)
	}
}
