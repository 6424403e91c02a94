package domain

import (
	"strings"
	"time"

	"github.com/Vovarama1992/mediarelay/internal/models"
)

// PendingEntry is a message blocked on one or more unresolved media keys.
// The unresolved set only ever shrinks; the entry leaves the queue exactly
// when the set becomes empty.
type PendingEntry struct {
	ClientID   string
	Message    models.Message
	Text       string
	Unresolved map[string]struct{}
	EnqueuedAt time.Time
}

// PendingQueue holds messages awaiting media resolution. Insertion order is
// preserved for diagnostics only; it does not determine broadcast order.
// Not safe for concurrent use; the RelayService serializes every access.
type PendingQueue struct {
	entries []*PendingEntry
}

func NewPendingQueue() *PendingQueue {
	return &PendingQueue{}
}

func (q *PendingQueue) Add(e *PendingEntry) {
	q.entries = append(q.entries, e)
}

func (q *PendingQueue) Len() int {
	return len(q.entries)
}

// Resolve substitutes url for every literal occurrence of key in each entry
// referencing key, shrinks that entry's unresolved set, and returns the
// entries whose set became empty, removed from the queue. The pass collects
// survivors into a fresh prefix of the slice, so no entry is skipped or
// visited twice while the queue shrinks.
func (q *PendingQueue) Resolve(key, url string) []*PendingEntry {
	var ready []*PendingEntry
	keep := q.entries[:0]
	for _, e := range q.entries {
		if _, ok := e.Unresolved[key]; !ok {
			keep = append(keep, e)
			continue
		}
		e.Text = strings.ReplaceAll(e.Text, key, url)
		delete(e.Unresolved, key)
		if len(e.Unresolved) == 0 {
			ready = append(ready, e)
		} else {
			keep = append(keep, e)
		}
	}
	q.entries = keep
	return ready
}

// EvictBefore removes and returns every entry enqueued before cutoff.
func (q *PendingQueue) EvictBefore(cutoff time.Time) []*PendingEntry {
	var evicted []*PendingEntry
	keep := q.entries[:0]
	for _, e := range q.entries {
		if e.EnqueuedAt.Before(cutoff) {
			evicted = append(evicted, e)
		} else {
			keep = append(keep, e)
		}
	}
	q.entries = keep
	return evicted
}
