package ledger

import "iter"

// Ledger is the append-only, in-memory change log of one installation run.
// Insertion order is application order. It is never persisted.
type Ledger struct {
	entries []Entry
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{}
}

// Append records applied mutations in order
func (l *Ledger) Append(entries ...Entry) {
	l.entries = append(l.entries, entries...)
}

// Len returns the number of recorded entries
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the entries in application order
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reverse yields entries newest first, with their application index
func (l *Ledger) Reverse() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i := len(l.entries) - 1; i >= 0; i-- {
			if !yield(i, l.entries[i]) {
				return
			}
		}
	}
}
