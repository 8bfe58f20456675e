// Package history keeps undo/redo snapshots of the timeline. Every committed
// edit replaces the present snapshot; the playhead is not part of history.
package history

import (
	"sync"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/user/reelcut/timeline"
)

// State is one undoable snapshot.
type State struct {
	Clips          []timeline.Clip `json:"clips"`
	SelectedClipID string          `json:"selectedClipId,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{Clips: timeline.Clone(s.Clips), SelectedClipID: s.SelectedClipID}
}

// Manager holds the past, present and future snapshots. It is safe for
// concurrent use; every write reads the latest present under the lock.
type Manager struct {
	mu      sync.Mutex
	past    []State
	present State
	future  []State
	limit   int
	sum     uint64
}

// New creates a Manager with initial as the present. limit caps the number of
// undo steps kept; 0 keeps everything.
func New(initial State, limit int) *Manager {
	m := &Manager{limit: limit}
	m.setPresent(initial.Clone())
	return m
}

// Push commits next as the present. It reports false and leaves history
// untouched when next is structurally identical to the present.
func (m *Manager) Push(next State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pushLocked(next)
}

// Update computes the next state from the current present and commits it in
// one step, so concurrent writers never build on a stale snapshot. An error
// from fn aborts without touching history.
func (m *Manager) Update(fn func(State) (State, error)) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(m.present.Clone())
	if err != nil {
		return m.present.Clone(), false, err
	}
	changed := m.pushLocked(next)
	return m.present.Clone(), changed, nil
}

// Undo moves back one step. It is a no-op when there is nothing to undo.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.past) == 0 {
		return false
	}
	prev := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = append([]State{m.present}, m.future...)
	m.setPresent(prev)
	return true
}

// Redo moves forward one step. It is a no-op when there is nothing to redo.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.future) == 0 {
		return false
	}
	next := m.future[0]
	m.future = m.future[1:]
	m.past = append(m.past, m.present)
	m.setPresent(next)
	return true
}

// Reset replaces the present and drops all history, e.g. after loading a project.
func (m *Manager) Reset(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.past = nil
	m.future = nil
	m.setPresent(s.Clone())
}

// Present returns a copy of the current snapshot.
func (m *Manager) Present() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present.Clone()
}

// CanUndo reports whether Undo would change the present.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

// CanRedo reports whether Redo would change the present.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// UndoSize returns the number of undo steps available.
func (m *Manager) UndoSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past)
}

// RedoSize returns the number of redo steps available.
func (m *Manager) RedoSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future)
}

func (m *Manager) pushLocked(next State) bool {
	sum, ok := fingerprint(next)
	if ok && sum == m.sum {
		return false
	}

	m.past = append(m.past, m.present)
	if m.limit > 0 && len(m.past) > m.limit {
		m.past = m.past[len(m.past)-m.limit:]
	}
	m.future = nil
	m.present = next.Clone()
	m.sum = sum
	return true
}

func (m *Manager) setPresent(s State) {
	m.present = s
	m.sum, _ = fingerprint(s)
}

// Equal reports whether two states are structurally identical.
func Equal(a, b State) bool {
	sa, okA := fingerprint(a)
	sb, okB := fingerprint(b)
	return okA && okB && sa == sb
}

// fingerprint hashes a state. A nil and an empty clip list hash the same.
func fingerprint(s State) (uint64, bool) {
	sum, err := hashstructure.Hash(s, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, false
	}
	return sum, true
}
