package agent

import "sync"

// Flags holds the per-turn action bias. Each Set pushes a fresh snapshot in
// which exactly the named flag is true (or none, if the name is not
// configured). Only the latest snapshot matters to the prompt; the history
// stays queryable.
type Flags struct {
	mu      sync.Mutex
	names   []string
	history []map[string]bool
}

func NewFlags(names []string) *Flags {
	return &Flags{names: names}
}

func (f *Flags) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

func (f *Flags) Set(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := make(map[string]bool, len(f.names))
	for _, n := range f.names {
		snapshot[n] = n == name
	}
	f.history = append(f.history, snapshot)
}

// Latest returns a copy of the most recent snapshot, or nil if none exists.
func (f *Flags) Latest() map[string]bool {
	return f.At(1)
}

// At returns the snapshot prevIndex entries from the end (1 = latest).
func (f *Flags) At(prevIndex int) map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := len(f.history) - prevIndex
	if idx < 0 || idx >= len(f.history) {
		return nil
	}
	out := make(map[string]bool, len(f.history[idx]))
	for k, v := range f.history[idx] {
		out[k] = v
	}
	return out
}

func (f *Flags) HistoryLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history)
}
