package strex

import "context"

// EntryState is the lifecycle state of a StringEntry.
type EntryState string

const (
	// StateNew marks a freshly discovered literal awaiting curation.
	StateNew EntryState = "new"
	// StateSelected marks an entry the user picked for translation.
	StateSelected EntryState = "selected"
	// StateTranslated marks an entry with a translation not yet written back.
	StateTranslated EntryState = "translated"
	// StateSaved marks an entry whose resource and code edits are on disk.
	StateSaved EntryState = "saved"
	// StateIgnored keeps an entry off the work queue until revived.
	StateIgnored EntryState = "ignored"
)

// Active reports whether the entry still participates in the work queue.
// Saved and Ignored entries are retained for merge bookkeeping only.
func (s EntryState) Active() bool {
	return s == StateNew || s == StateSelected || s == StateTranslated
}

// Param is one named placeholder bound to the source expression that
// supplies its value, e.g. {count} bound to "messages.size".
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StringEntry is one extracted literal occurrence and its lifecycle state.
type StringEntry struct {
	// Fingerprint is the stable identity of this occurrence across rescans.
	Fingerprint string `json:"fingerprint"`
	// Text is the decoded literal content, escapes resolved.
	Text string `json:"text"`
	// FilePath is the source file, relative to the project root, slash-separated.
	FilePath string `json:"file_path"`
	// Line is the 1-based line of the opening quote.
	Line int `json:"line"`
	// Offset is the byte offset of the opening quote within the file.
	Offset int `json:"offset"`
	// Raw is the exact source slice that a rewrite replaces: the quoted
	// literal plus any trailing .format(...) call. Re-verified before edits.
	Raw string `json:"raw"`
	// Module is the top-level project module directory owning the file.
	Module string `json:"module"`
	// CallContext is the name of the enclosing call, if any ("toast", "Text").
	CallContext string `json:"call_context,omitempty"`
	// Ordinal disambiguates repeated identical literals in the same file,
	// counted in file order from zero.
	Ordinal int `json:"ordinal"`
	// Params binds each {name} placeholder to its argument expression.
	Params []Param `json:"params,omitempty"`
	// ResourceName is the key used in the generated resource file. Editable.
	ResourceName string `json:"resource_name"`
	// Translation is empty until the entry has been translated.
	Translation string `json:"translation,omitempty"`
	// State is the lifecycle state.
	State EntryState `json:"state"`
	// BatchID is the owning batch of the last translation attempt, 0 if none.
	BatchID int `json:"batch_id,omitempty"`
}

// ID returns the identifier used to address the entry in translation
// requests and replies.
func (e *StringEntry) ID() string {
	return e.Fingerprint
}

// NeedsTranslation reports whether the entry should be submitted to the
// translation service.
func (e *StringEntry) NeedsTranslation() bool {
	return e.State == StateSelected && e.Translation == ""
}

// ParamNames returns the placeholder names in declaration order.
func (e *StringEntry) ParamNames() []string {
	names := make([]string, len(e.Params))
	for i, p := range e.Params {
		names[i] = p.Name
	}
	return names
}

// ResourceRef records an already-localized resource access found during a
// scan, e.g. `ResStrings.hi`. These are context, not extraction candidates.
type ResourceRef struct {
	Name     string `json:"name"`
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
}

// ReferencePair is an existing source/target translation harvested from
// resource files and fed to the prompt as a style reference.
type ReferencePair struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	ResourceName string `json:"resource_name"`
	Module       string `json:"module"`
}

// TranslateItem is one entry as submitted to a provider.
type TranslateItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	// Hint carries parameter names or disambiguation context, if any.
	Hint string `json:"hint,omitempty"`
}

// TranslationResult is one translated entry as returned by a provider.
type TranslationResult struct {
	ID           string `json:"id"`
	Translation  string `json:"translation"`
	ResourceName string `json:"resource_name,omitempty"`
}

// TranslateRequest is a single batch submission to an AI provider.
type TranslateRequest struct {
	// System is the fixed system prompt.
	System string
	// Prompt is the rendered user prompt template for this batch.
	Prompt string
	// Items lists the submitted entries in order; replies must cover
	// exactly these IDs.
	Items []TranslateItem
}

// AIProvider is the interface for AI translation backends.
type AIProvider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]TranslationResult, error)
}
