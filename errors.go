package strex

import "fmt"

// ScanError reports a file that could not be read or decoded. The scan
// skips the file and continues.
type ScanError struct {
	Path  string
	Cause error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error: %s: %v", e.Path, e.Cause)
}

func (e *ScanError) Unwrap() error {
	return e.Cause
}

// TranslationError reports a failed translation batch. The failure is
// scoped to one batch: no entry in it transitions, and sibling batches
// are unaffected.
type TranslationError struct {
	BatchID   int
	Message   string
	Cause     error
	Retryable bool // network-level failures can be retried by the user
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translation error (batch %d): %s: %v", e.BatchID, e.Message, e.Cause)
	}
	return fmt.Sprintf("translation error (batch %d): %s", e.BatchID, e.Message)
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the provider returned a different number of
// translations than the batch submitted.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

// IdentifierMismatchError indicates the provider reply did not address the
// submitted entry identifiers exactly.
type IdentifierMismatchError struct {
	Missing    []string
	Unexpected []string
}

func (e *IdentifierMismatchError) Error() string {
	return fmt.Sprintf("translation identifier mismatch: %d missing, %d unexpected",
		len(e.Missing), len(e.Unexpected))
}

// StaleReplacementError reports that a literal no longer exists unchanged
// at its recorded location. The entry is skipped, never guessed.
type StaleReplacementError struct {
	Fingerprint string
	FilePath    string
	Line        int
}

func (e *StaleReplacementError) Error() string {
	return fmt.Sprintf("stale replacement: %s:%d changed since scan (entry %s)",
		e.FilePath, e.Line, shortFingerprint(e.Fingerprint))
}

// PersistenceError reports a failed durable write. The operation it guards
// must be treated as failed; the previous on-disk state is intact because
// all writes go through a temp file and rename.
type PersistenceError struct {
	Path  string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s: %v", e.Path, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// NameCollisionWarning records a resource name that was auto-resolved by
// numeric suffixing. Non-fatal; surfaced in save reports.
type NameCollisionWarning struct {
	Name     string
	Resolved string
}

func (e *NameCollisionWarning) Error() string {
	return fmt.Sprintf("resource name %q already taken, renamed to %q", e.Name, e.Resolved)
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
