package strex

// Batch is one ordered group of entries submitted together for translation.
// Batches are ephemeral: only their effect on entry state survives the job.
type Batch struct {
	// ID numbers batches from 1 in submission order.
	ID int
	// Entries are the batch members, in their original queue order.
	Entries []*StringEntry
	// Err records the batch-scoped failure, nil on success.
	Err error
	// Done is set once the batch has been attempted.
	Done bool
	// Cached counts entries satisfied from the translation cache without
	// a provider call.
	Cached int
}

// Size returns the number of entries in the batch.
func (b *Batch) Size() int {
	return len(b.Entries)
}

// IDs returns the entry identifiers in submission order.
func (b *Batch) IDs() []string {
	ids := make([]string, len(b.Entries))
	for i, e := range b.Entries {
		ids[i] = e.ID()
	}
	return ids
}

// PartitionBatches splits entries into consecutive batches of at most size,
// preserving the input ordering. A size <= 0 yields a single batch.
func PartitionBatches(entries []*StringEntry, size int) []*Batch {
	if len(entries) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(entries)
	}

	var batches []*Batch
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		batches = append(batches, &Batch{
			ID:      len(batches) + 1,
			Entries: entries[start:end],
		})
	}
	return batches
}

// SelectUntranslated filters the entries that still need a translation,
// preserving order. This is also the retry set: entries translated by a
// previous batch are never resent.
func SelectUntranslated(entries []*StringEntry) []*StringEntry {
	var out []*StringEntry
	for _, e := range entries {
		if e.NeedsTranslation() {
			out = append(out, e)
		}
	}
	return out
}
