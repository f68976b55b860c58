// refstore.go — resolve/clearTarget over per-target ref entries (spec §4.B).
package refstore

import (
	"sync"

	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// Entry is what a ref resolves to: a selector plus the driver's backend
// node id, per spec §3 "Ref entry."
type Entry struct {
	Selector      string
	BackendNodeID int64
}

// Store holds ref entries for every target in one session.
type Store struct {
	mu      sync.RWMutex
	byTarget map[string]map[string]Entry
}

func New() *Store {
	return &Store{byTarget: make(map[string]map[string]Entry)}
}

// Put records a ref produced by a snapshot of targetID.
func (s *Store) Put(targetID, ref string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byTarget[targetID]
	if !ok {
		m = make(map[string]Entry)
		s.byTarget[targetID] = m
	}
	m[ref] = entry
}

// Resolve looks up ref within targetID's namespace only — refs from one
// target are never valid in another (spec §3).
func (s *Store) Resolve(targetID, ref string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byTarget[targetID]
	if ok {
		if e, ok := m[ref]; ok {
			return e, nil
		}
	}
	return Entry{}, gaserr.New(gaserr.KindUnknownRef,
		"ref not found for this target; take a new snapshot before retrying")
}

// ClearTarget drops every ref recorded for targetID. Called on page close
// or top-frame navigation (spec §4.B: "parent frame == null"); child-frame
// navigations must NOT call this.
func (s *Store) ClearTarget(targetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byTarget, targetID)
}

// OnFrameNavigated is the single entry point both the driver's frame
// events and explicit close handling should call, so the "top frame only"
// rule lives in one place.
func (s *Store) OnFrameNavigated(targetID, parentFrameID string) {
	if parentFrameID == "" {
		s.ClearTarget(targetID)
	}
}

// Count returns how many refs are currently stored for targetID, for tests
// and debug-trace artifact sizing.
func (s *Store) Count(targetID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byTarget[targetID])
}
