package strex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// mockProvider is a simple identifier-addressed mock for testing.
type mockProvider struct {
	translations map[string]string
	callCount    int
	requests     [][]TranslateItem
	failTexts    map[string]bool
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		translations: map[string]string{
			"你好":   "Hello",
			"谢谢":   "Thanks",
			"再见":   "Goodbye",
			"登录成功": "Login successful",
		},
		failTexts: make(map[string]bool),
	}
}

func (m *mockProvider) Translate(ctx context.Context, req TranslateRequest) ([]TranslationResult, error) {
	m.callCount++
	m.requests = append(m.requests, req.Items)

	results := make([]TranslationResult, len(req.Items))
	for i, item := range req.Items {
		if m.failTexts[item.Text] {
			return nil, errors.New("provider unavailable")
		}
		translation, ok := m.translations[item.Text]
		if !ok {
			translation = "[" + item.Text + "]"
		}
		results[i] = TranslationResult{ID: item.ID, Translation: translation}
	}
	return results, nil
}

// mockCache is a map-backed cache for testing.
type mockCache struct {
	data map[string]string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (c *mockCache) Get(key string) (string, bool) {
	val, ok := c.data[key]
	return val, ok
}

func (c *mockCache) Set(key string, value string) error {
	c.data[key] = value
	return nil
}

func makeSelected(texts ...string) []*StringEntry {
	entries := make([]*StringEntry, len(texts))
	for i, text := range texts {
		entries[i] = &StringEntry{
			Fingerprint: Fingerprint("app/src/Main.kt", text, "", 0),
			Text:        text,
			FilePath:    "app/src/Main.kt",
			State:       StateSelected,
		}
	}
	return entries
}

func TestTranslator_AllBatchesSucceed(t *testing.T) {
	provider := newMockProvider()
	entries := makeSelected("你好", "谢谢", "再见")

	checkpoints := 0
	tr := NewTranslator("en", provider, WithBatchSize(2))
	job := tr.Start(context.Background(), entries, func() error {
		checkpoints++
		return nil
	})
	status := job.Wait()

	if status.State != JobSucceeded {
		t.Fatalf("job state = %s, want %s (errors: %v)", status.State, JobSucceeded, status.Errors)
	}
	if provider.callCount != 2 {
		t.Errorf("provider calls = %d, want 2", provider.callCount)
	}
	if checkpoints != 2 {
		t.Errorf("checkpoints = %d, want 2", checkpoints)
	}
	for _, e := range entries {
		if e.State != StateTranslated {
			t.Errorf("entry %q state = %s, want %s", e.Text, e.State, StateTranslated)
		}
		if e.Translation == "" {
			t.Errorf("entry %q has no translation", e.Text)
		}
		if e.BatchID == 0 {
			t.Errorf("entry %q has no batch id", e.Text)
		}
	}
	if entries[0].BatchID != 1 || entries[2].BatchID != 2 {
		t.Errorf("batch ids = %d, %d, %d; want 1, 1, 2",
			entries[0].BatchID, entries[1].BatchID, entries[2].BatchID)
	}
}

func TestTranslator_FailedBatchIsolation(t *testing.T) {
	provider := newMockProvider()
	provider.failTexts["谢谢"] = true
	entries := makeSelected("你好", "谢谢", "再见")

	tr := NewTranslator("en", provider, WithBatchSize(1))
	status := tr.Start(context.Background(), entries, nil).Wait()

	if status.State != JobPartiallyFailed {
		t.Fatalf("job state = %s, want %s", status.State, JobPartiallyFailed)
	}
	if status.TranslatedEntries != 2 || status.FailedEntries != 1 {
		t.Fatalf("translated = %d, failed = %d; want 2, 1",
			status.TranslatedEntries, status.FailedEntries)
	}
	if entries[0].State != StateTranslated || entries[2].State != StateTranslated {
		t.Errorf("sibling batches must keep their results")
	}
	if entries[1].State != StateSelected || entries[1].Translation != "" {
		t.Errorf("failed batch entry state = %s, translation = %q; want selected and empty",
			entries[1].State, entries[1].Translation)
	}

	var te *TranslationError
	if len(status.Errors) != 1 || !errors.As(status.Errors[0], &te) {
		t.Fatalf("errors = %v, want one TranslationError", status.Errors)
	}

	// A re-run resends only what is still untranslated.
	provider.failTexts = map[string]bool{}
	provider.requests = nil
	status = tr.Start(context.Background(), entries, nil).Wait()

	if status.State != JobSucceeded {
		t.Fatalf("retry job state = %s, want %s", status.State, JobSucceeded)
	}
	if len(provider.requests) != 1 || len(provider.requests[0]) != 1 {
		t.Fatalf("retry requests = %v, want exactly the failed entry", provider.requests)
	}
	if provider.requests[0][0].Text != "谢谢" {
		t.Errorf("retry sent %q, want %q", provider.requests[0][0].Text, "谢谢")
	}
}

func TestTranslator_CacheHits(t *testing.T) {
	provider := newMockProvider()
	cache := newMockCache()
	cache.data[CacheKey(TextHash("你好"), "en")] = "Hello (cached)"
	entries := makeSelected("你好", "谢谢")

	tr := NewTranslator("en", provider, WithCache(cache))
	status := tr.Start(context.Background(), entries, nil).Wait()

	if status.State != JobSucceeded {
		t.Fatalf("job state = %s, want %s (errors: %v)", status.State, JobSucceeded, status.Errors)
	}
	if status.CachedEntries != 1 || status.TranslatedEntries != 1 {
		t.Errorf("cached = %d, translated = %d; want 1, 1",
			status.CachedEntries, status.TranslatedEntries)
	}
	if entries[0].Translation != "Hello (cached)" {
		t.Errorf("cached translation = %q", entries[0].Translation)
	}
	if len(provider.requests) != 1 || len(provider.requests[0]) != 1 {
		t.Fatalf("provider must only see cache misses, got %v", provider.requests)
	}
	// The miss is stored for the next run.
	if v, ok := cache.Get(CacheKey(TextHash("谢谢"), "en")); !ok || v != "Thanks" {
		t.Errorf("cache entry for miss = %q, %v", v, ok)
	}
}

func TestTranslator_CheckpointFailureRollsBack(t *testing.T) {
	provider := newMockProvider()
	entries := makeSelected("你好", "谢谢")

	tr := NewTranslator("en", provider, WithBatchSize(1))
	status := tr.Start(context.Background(), entries, func() error {
		return &PersistenceError{Path: "session.json", Cause: errors.New("disk full")}
	}).Wait()

	if status.State != JobFailed && status.State != JobPartiallyFailed {
		t.Fatalf("job state = %s, want a failed state", status.State)
	}
	if entries[0].State != StateSelected || entries[0].Translation != "" {
		t.Errorf("entry must roll back to selected when the checkpoint fails")
	}
	// A persistence failure stops the sequential job before batch 2.
	if provider.callCount != 1 {
		t.Errorf("provider calls = %d, want 1", provider.callCount)
	}
}

func TestTranslator_Cancel(t *testing.T) {
	provider := newMockProvider()
	entries := makeSelected("你好", "谢谢", "再见")

	release := make(chan struct{})
	blocking := providerFunc(func(ctx context.Context, req TranslateRequest) ([]TranslationResult, error) {
		<-release
		return provider.Translate(ctx, req)
	})

	tr := NewTranslator("en", blocking, WithBatchSize(1))
	job := tr.Start(context.Background(), entries, nil)
	job.Cancel()
	close(release)
	status := job.Wait()

	if status.State != JobCancelled {
		t.Fatalf("job state = %s, want %s", status.State, JobCancelled)
	}
	// The in-flight batch finishes; no later batch starts.
	if status.CompletedBatches >= status.TotalBatches {
		t.Errorf("completed = %d of %d, want an incomplete job",
			status.CompletedBatches, status.TotalBatches)
	}
}

type providerFunc func(ctx context.Context, req TranslateRequest) ([]TranslationResult, error)

func (f providerFunc) Translate(ctx context.Context, req TranslateRequest) ([]TranslationResult, error) {
	return f(ctx, req)
}

func TestReconcile_CountMismatch(t *testing.T) {
	items := []TranslateItem{{ID: "a", Text: "你好"}, {ID: "b", Text: "谢谢"}}
	_, err := Reconcile(items, []TranslationResult{{ID: "a", Translation: "Hello"}})

	var cm *CountMismatchError
	if !errors.As(err, &cm) {
		t.Fatalf("err = %v, want CountMismatchError", err)
	}
	if cm.Expected != 2 || cm.Got != 1 {
		t.Errorf("expected = %d, got = %d", cm.Expected, cm.Got)
	}
}

func TestReconcile_IdentifierMismatch(t *testing.T) {
	items := []TranslateItem{{ID: "a", Text: "你好"}, {ID: "b", Text: "谢谢"}}
	_, err := Reconcile(items, []TranslationResult{
		{ID: "a", Translation: "Hello"},
		{ID: "c", Translation: "???"},
	})

	var im *IdentifierMismatchError
	if !errors.As(err, &im) {
		t.Fatalf("err = %v, want IdentifierMismatchError", err)
	}
	if len(im.Missing) != 1 || im.Missing[0] != "b" {
		t.Errorf("missing = %v, want [b]", im.Missing)
	}
	if len(im.Unexpected) != 1 || im.Unexpected[0] != "c" {
		t.Errorf("unexpected = %v, want [c]", im.Unexpected)
	}
}

func TestTranslator_PromptCarriesReferences(t *testing.T) {
	var prompts []string
	capturing := providerFunc(func(ctx context.Context, req TranslateRequest) ([]TranslationResult, error) {
		prompts = append(prompts, req.Prompt)
		results := make([]TranslationResult, len(req.Items))
		for i, item := range req.Items {
			results[i] = TranslationResult{ID: item.ID, Translation: "x"}
		}
		return results, nil
	})

	tr := NewTranslator("en", capturing, WithReferences([]ReferencePair{
		{Source: "设置", Target: "Settings"},
	}))
	status := tr.Start(context.Background(), makeSelected("你好"), nil).Wait()
	if status.State != JobSucceeded {
		t.Fatalf("job state = %s (errors: %v)", status.State, status.Errors)
	}
	if len(prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(prompts))
	}
	for _, want := range []string{"English", "设置", "Settings", "你好"} {
		if !strings.Contains(prompts[0], want) {
			t.Errorf("prompt does not contain %q", want)
		}
	}
}

func TestTranslator_ConcurrentBatches(t *testing.T) {
	provider := newMockProvider()
	var texts []string
	for i := 0; i < 10; i++ {
		texts = append(texts, fmt.Sprintf("第%d条", i))
	}
	entries := makeSelected(texts...)

	tr := NewTranslator("en", provider, WithBatchSize(2), WithMaxInFlight(4))
	status := tr.Start(context.Background(), entries, nil).Wait()

	if status.State != JobSucceeded {
		t.Fatalf("job state = %s (errors: %v)", status.State, status.Errors)
	}
	if status.TranslatedEntries != 10 {
		t.Errorf("translated = %d, want 10", status.TranslatedEntries)
	}
	for _, e := range entries {
		if e.State != StateTranslated {
			t.Errorf("entry %q state = %s", e.Text, e.State)
		}
	}
}
