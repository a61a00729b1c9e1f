// Package pinned keeps the user's short list of pinned stocks.
package pinned

import (
	"sync"

	"github.com/google/uuid"
)

// MaxPinned is the most stocks that can be pinned at once.
const MaxPinned = 3

// Stock identifies a listing. Symbol alone is ambiguous across share
// classes and exchanges, so the name is part of the identity.
type Stock struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
}

// Key is the composite symbol-key "symbol~name".
func (s Stock) Key() string { return s.Symbol + "~" + s.Name }

// Entry is one pinned instance. ID distinguishes instances even when their
// symbol and name are equal.
type Entry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Key    string `json:"key"`
}

func (e Entry) Stock() Stock { return Stock{Symbol: e.Symbol, Name: e.Name} }

// List is an ordered, deduplicated, capacity-bounded set of entries.
// It is safe for concurrent use.
type List struct {
	max int

	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty list holding at most max entries; max <= 0 means MaxPinned.
func New(max int) *List {
	if max <= 0 {
		max = MaxPinned
	}
	return &List{max: max}
}

// CanPin reports whether Pin(s) would add an entry.
func (l *List) CanPin(s Stock) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.canPin(s.Key())
}

func (l *List) canPin(key string) bool {
	if len(l.entries) >= l.max {
		return false
	}
	for _, e := range l.entries {
		if e.Key == key {
			return false
		}
	}
	return true
}

// Pin appends s when the list has room and no entry shares its key.
// Otherwise the list is unchanged and ok is false.
func (l *List) Pin(s Stock) (e Entry, ok bool) {
	key := s.Key()
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.canPin(key) {
		return Entry{}, false
	}
	e = Entry{ID: uuid.NewString(), Symbol: s.Symbol, Name: s.Name, Key: key}
	l.entries = append(l.entries, e)
	return e, true
}

// Unpin removes the entry with the given ID, keeping the order of the rest.
func (l *List) Unpin(id string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return e, true
		}
	}
	return Entry{}, false
}

func (l *List) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the entries in pin order.
func (l *List) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *List) Cap() int { return l.max }
