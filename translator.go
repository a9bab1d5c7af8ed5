package strex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// TranslationCache is the interface for translation caching. Keys are built
// with CacheKey; implementations live in the cache package.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// DefaultPromptTemplate is the prompt used when the project configuration
// does not supply one. Placeholders use single braces; literal braces in a
// template are escaped as {{ and }}.
const DefaultPromptTemplate = `Translate the following UI strings to {target_language}.

Each item has a stable "id"; return one translation per id.

Reference translations from this project (match their tone and wording):
{reference_translations}

Rules:
- Keep every {{name}}-style placeholder exactly as written.
- Suggest a short snake_case "resource_name" for each string.
- Reply with a JSON object: {{"translations": [{{"id": "...", "translation": "...", "resource_name": "..."}}]}}

Strings:
{entries}`

// DefaultSystemPrompt positions the model as a software localization
// translator, mirroring the tone the resource strings need.
const DefaultSystemPrompt = "You are a professional software internationalization translator. " +
	"You translate mobile app UI strings accurately and idiomatically."

// Translator drives batch translation of selected entries. It is the
// Batcher and Translator Client of the pipeline: it partitions the queue,
// renders one prompt per batch, reconciles identifier-addressed replies,
// and isolates failures per batch.
type Translator struct {
	targetLang     string
	sourceLang     string
	provider       AIProvider
	cache          TranslationCache
	batchSize      int
	timeout        time.Duration
	maxInFlight    int
	promptTemplate string
	systemPrompt   string
	references     []ReferencePair
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language (default "zh").
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) { t.sourceLang = lang }
}

// WithCache sets the translation cache consulted before provider calls.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) { t.cache = cache }
}

// WithBatchSize sets the maximum entries per batch (default 50).
func WithBatchSize(n int) TranslatorOption {
	return func(t *Translator) { t.batchSize = n }
}

// WithTimeout sets the per-batch provider timeout (default 2 minutes).
func WithTimeout(d time.Duration) TranslatorOption {
	return func(t *Translator) { t.timeout = d }
}

// WithMaxInFlight bounds the number of concurrently executing batches.
// The default of 1 preserves strict submission order; any value keeps
// per-batch reconciliation and persistence atomic.
func WithMaxInFlight(n int) TranslatorOption {
	return func(t *Translator) { t.maxInFlight = n }
}

// WithPromptTemplate sets the user prompt template. Placeholders:
// {target_language}, {reference_translations}, {entries}.
func WithPromptTemplate(tmpl string) TranslatorOption {
	return func(t *Translator) { t.promptTemplate = tmpl }
}

// WithSystemPrompt overrides the system prompt.
func WithSystemPrompt(p string) TranslatorOption {
	return func(t *Translator) { t.systemPrompt = p }
}

// WithReferences supplies existing translation pairs quoted in the prompt.
func WithReferences(refs []ReferencePair) TranslatorOption {
	return func(t *Translator) { t.references = refs }
}

// NewTranslator creates a Translator for the given target language.
func NewTranslator(targetLang string, provider AIProvider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang:     NormalizeLocale(targetLang),
		sourceLang:     "zh",
		provider:       provider,
		batchSize:      50,
		timeout:        2 * time.Minute,
		maxInFlight:    1,
		promptTemplate: DefaultPromptTemplate,
		systemPrompt:   DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TargetLang returns the normalized target language.
func (t *Translator) TargetLang() string { return t.targetLang }

// Start partitions the untranslated selected entries into batches and runs
// them on a background goroutine, returning the observable Job immediately.
//
// checkpoint is called after every successful batch, once the batch members
// have transitioned Selected -> Translated; callers wire it to the session
// store so results are durable before the batch is reported complete. A
// checkpoint failure fails that batch and stops the job. checkpoint may be
// nil.
//
// There is no automatic retry: a failed batch stays failed until the user
// runs Start again, and SelectUntranslated guarantees that entries already
// translated by earlier batches are never resent.
func (t *Translator) Start(ctx context.Context, entries []*StringEntry, checkpoint func() error) *Job {
	queue := SelectUntranslated(entries)
	batches := PartitionBatches(queue, t.batchSize)
	job := newJob(batches)

	go t.run(ctx, job, checkpoint)
	return job
}

func (t *Translator) run(ctx context.Context, job *Job, checkpoint func() error) {
	defer job.finish()
	job.start()

	if t.maxInFlight <= 1 {
		for _, b := range job.batches {
			if job.isCancelled() || ctx.Err() != nil {
				return
			}
			t.processBatch(ctx, job, b, checkpoint, &sync.Mutex{})
			if stop, ok := b.Err.(*PersistenceError); ok && stop != nil {
				return
			}
		}
		return
	}

	sem := make(chan struct{}, t.maxInFlight)
	var wg sync.WaitGroup
	var persistMu sync.Mutex
	for _, b := range job.batches {
		if job.isCancelled() || ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(b *Batch) {
			defer wg.Done()
			defer func() { <-sem }()
			t.processBatch(ctx, job, b, checkpoint, &persistMu)
		}(b)
	}
	wg.Wait()
}

// processBatch attempts one batch atomically: either every member
// transitions to Translated or none does.
func (t *Translator) processBatch(ctx context.Context, job *Job, b *Batch, checkpoint func() error, persistMu *sync.Mutex) {
	defer job.recordBatch(b)

	hits, misses := t.lookupCache(b.Entries)

	results := make(map[string]TranslationResult, len(b.Entries))
	if len(misses) > 0 {
		items := makeItems(misses)

		prompt, err := t.renderPrompt(items)
		if err != nil {
			b.Err = &TranslationError{BatchID: b.ID, Message: "rendering prompt template", Cause: err}
			return
		}

		callCtx := ctx
		if t.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, t.timeout)
			defer cancel()
		}

		replies, err := t.provider.Translate(callCtx, TranslateRequest{
			System: t.systemPrompt,
			Prompt: prompt,
			Items:  items,
		})
		if err != nil {
			b.Err = wrapBatchErr(b.ID, err)
			return
		}

		reconciled, err := Reconcile(items, replies)
		if err != nil {
			b.Err = &TranslationError{BatchID: b.ID, Message: "reconciling reply", Cause: err}
			return
		}
		results = reconciled
	}

	// The whole batch succeeded; cache hits transition together with the
	// freshly translated members.
	persistMu.Lock()
	defer persistMu.Unlock()

	for _, e := range b.Entries {
		if cached, ok := hits[e.ID()]; ok {
			e.Translation = cached
		} else if r, ok := results[e.ID()]; ok {
			e.Translation = r.Translation
			if e.ResourceName == "" && r.ResourceName != "" {
				e.ResourceName = r.ResourceName
			}
			if t.cache != nil {
				_ = t.cache.Set(CacheKey(TextHash(e.Text), t.targetLang), r.Translation)
			}
		}
		e.State = StateTranslated
		e.BatchID = b.ID
	}
	b.Cached = len(hits)

	if checkpoint != nil {
		if err := checkpoint(); err != nil {
			// Roll the batch back: results that were never durable must not
			// be reported as translated.
			for _, e := range b.Entries {
				e.Translation = ""
				e.State = StateSelected
				e.BatchID = 0
			}
			if pe, ok := err.(*PersistenceError); ok {
				b.Err = pe
			} else {
				b.Err = &PersistenceError{Cause: err}
			}
		}
	}
}

func (t *Translator) lookupCache(entries []*StringEntry) (map[string]string, []*StringEntry) {
	hits := make(map[string]string)
	if t.cache == nil {
		return hits, entries
	}
	var misses []*StringEntry
	for _, e := range entries {
		if v, ok := t.cache.Get(CacheKey(TextHash(e.Text), t.targetLang)); ok {
			hits[e.ID()] = v
		} else {
			misses = append(misses, e)
		}
	}
	return hits, misses
}

// renderPrompt substitutes this batch's entries into the prompt template.
// Entry identifiers ride along in the JSON payload so replies can be
// matched back.
func (t *Translator) renderPrompt(items []TranslateItem) (string, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return "", err
	}

	target := LanguageName(t.targetLang)
	if hint := LocaleClarification(t.targetLang); hint != "" {
		target += " (" + hint + ")"
	}

	return RenderTemplate(t.promptTemplate, map[string]string{
		"target_language":        target,
		"source_language":        LanguageName(t.sourceLang),
		"reference_translations": formatReferences(t.references),
		"entries":                string(payload),
	})
}

func makeItems(entries []*StringEntry) []TranslateItem {
	items := make([]TranslateItem, len(entries))
	for i, e := range entries {
		hint := ""
		if names := e.ParamNames(); len(names) > 0 {
			hint = "placeholders: " + strings.Join(names, ", ")
		}
		items[i] = TranslateItem{ID: e.ID(), Text: e.Text, Hint: hint}
	}
	return items
}

func formatReferences(refs []ReferencePair) string {
	if len(refs) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, r := range refs {
		fmt.Fprintf(&b, "- %q -> %q\n", r.Source, r.Target)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Reconcile matches a provider reply against the submitted items. The reply
// must contain exactly one result per submitted identifier; anything else
// fails the whole batch.
func Reconcile(items []TranslateItem, results []TranslationResult) (map[string]TranslationResult, error) {
	if len(results) != len(items) {
		return nil, &CountMismatchError{Expected: len(items), Got: len(results)}
	}

	byID := make(map[string]TranslationResult, len(results))
	for _, r := range results {
		byID[r.ID] = r
	}

	var missing []string
	for _, it := range items {
		if _, ok := byID[it.ID]; !ok {
			missing = append(missing, it.ID)
		}
	}
	if len(missing) > 0 || len(byID) != len(items) {
		var unexpected []string
		submitted := make(map[string]bool, len(items))
		for _, it := range items {
			submitted[it.ID] = true
		}
		for id := range byID {
			if !submitted[id] {
				unexpected = append(unexpected, id)
			}
		}
		return nil, &IdentifierMismatchError{Missing: missing, Unexpected: unexpected}
	}

	return byID, nil
}

func wrapBatchErr(batchID int, err error) *TranslationError {
	if te, ok := err.(*TranslationError); ok {
		te.BatchID = batchID
		return te
	}
	return &TranslationError{
		BatchID:   batchID,
		Message:   "provider call failed",
		Cause:     err,
		Retryable: true,
	}
}
