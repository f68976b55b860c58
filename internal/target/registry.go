package target

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gasoline-dev/gasoline-broker/internal/driver"
	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// readTimeout bounds Title/URL reads per spec §4.A ("Reading title/url
// MUST be time-bounded (<=2s); on timeout, the field is omitted, not
// failed").
const readTimeout = 2 * time.Second

// entry is one registered target's state.
type entry struct {
	page driver.Page
	name string
}

// Info is a point-in-time snapshot of one target, returned by List/
// ListNamed (spec §4.A "list(includeUrls?) -> snapshot of {targetId,
// title?, url?, type}").
type Info struct {
	TargetID string  `json:"targetId"`
	Name     string  `json:"name,omitempty"`
	Title    *string `json:"title,omitempty"`
	URL      *string `json:"url,omitempty"`
	Type     string  `json:"type"`
	Active   bool    `json:"active"`
}

// Registry maps opaque target ids to driver pages, tracks the session's
// single active target, and enforces unique human names (spec §3 Target
// invariants: "names are unique per session", "a target always has a
// page", "the active-target pointer is either null or references an
// existing target").
type Registry struct {
	mu     sync.Mutex
	drv    driver.Driver
	byID   map[string]*entry
	order  []string // insertion order, for a stable reassignment on close
	names  map[string]string // name -> targetID
	active string
}

// New builds an empty Registry bound to drv (used by Close to tear down
// the underlying page and by Sync to read the driver's authoritative
// page list).
func New(drv driver.Driver) *Registry {
	return &Registry{
		drv:   drv,
		byID:  make(map[string]*entry),
		names: make(map[string]string),
	}
}

// Register assigns a fresh opaque id to page (spec §3 Target identity:
// "independent of any driver-level target id") and records it, optionally
// under a unique human name. The first registered target becomes active
// automatically.
func (r *Registry) Register(page driver.Page, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name != "" {
		if _, exists := r.names[name]; exists {
			return "", gaserr.New(gaserr.KindInvalidInput, "target name already in use for this session")
		}
	}

	id := uuid.NewString()
	r.byID[id] = &entry{page: page, name: name}
	r.order = append(r.order, id)
	if name != "" {
		r.names[name] = id
	}
	if r.active == "" {
		r.active = id
	}
	return id, nil
}

// SetName assigns name to targetID, failing if name is already taken by
// a different target or targetID does not exist.
func (r *Registry) SetName(targetID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[targetID]
	if !ok {
		return gaserr.New(gaserr.KindInvalidInput, "unknown target id")
	}
	if owner, exists := r.names[name]; exists && owner != targetID {
		return gaserr.New(gaserr.KindInvalidInput, "target name already in use for this session")
	}
	if e.name != "" {
		delete(r.names, e.name)
	}
	e.name = name
	r.names[name] = targetID
	return nil
}

// RemoveName clears targetID's human name, if any.
func (r *Registry) RemoveName(targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[targetID]
	if !ok {
		return gaserr.New(gaserr.KindInvalidInput, "unknown target id")
	}
	if e.name != "" {
		delete(r.names, e.name)
		e.name = ""
	}
	return nil
}

// ListNamed returns every target that currently carries a human name
// (spec §4.A "listNamed").
func (r *Registry) ListNamed() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Info
	for _, id := range r.order {
		e := r.byID[id]
		if e.name == "" {
			continue
		}
		out = append(out, Info{TargetID: id, Name: e.name, Type: "page", Active: id == r.active})
	}
	return out
}

// SetActive makes targetID the session's active target.
func (r *Registry) SetActive(targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[targetID]; !ok {
		return gaserr.New(gaserr.KindInvalidInput, "unknown target id")
	}
	r.active = targetID
	return nil
}

// GetActive returns the active target id, or "" if the registry is
// empty (spec §3 Session invariant: "exactly one active target unless
// registry is empty").
func (r *Registry) GetActive() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// GetPage resolves targetID to its page and canonical id. An empty
// targetID resolves to the current active target, failing with
// KindNoActiveTarget if the registry is empty.
func (r *Registry) GetPage(targetID string) (driver.Page, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if targetID == "" {
		targetID = r.active
	}
	if targetID == "" {
		return driver.Page{}, "", gaserr.New(gaserr.KindNoActiveTarget, "no active target for this session")
	}
	e, ok := r.byID[targetID]
	if !ok {
		return driver.Page{}, "", gaserr.New(gaserr.KindInvalidInput, "unknown target id")
	}
	return e.page, targetID, nil
}

// List returns a snapshot of every registered target (spec §4.A
// "list(includeUrls?)"). Title is always read (bounded); URL is only
// read when includeURLs is set, since a full URL read is more expensive
// and not every caller needs it.
func (r *Registry) List(ctx context.Context, includeURLs bool) []Info {
	type target struct {
		id   string
		page driver.Page
		name string
	}

	r.mu.Lock()
	targets := make([]target, 0, len(r.order))
	for _, id := range r.order {
		e := r.byID[id]
		targets = append(targets, target{id: id, page: e.page, name: e.name})
	}
	active := r.active
	r.mu.Unlock()

	out := make([]Info, 0, len(targets))
	for _, t := range targets {
		info := Info{TargetID: t.id, Name: t.name, Type: "page", Active: t.id == active}
		if title, ok := boundedRead(ctx, func(c context.Context) (string, error) {
			return r.drv.Title(c, t.page)
		}); ok {
			info.Title = &title
		}
		if includeURLs {
			if url, ok := boundedRead(ctx, func(c context.Context) (string, error) {
				return r.drv.URL(c, t.page)
			}); ok {
				info.URL = &url
			}
		}
		out = append(out, info)
	}
	return out
}

// boundedRead runs fn under a readTimeout deadline, reporting ok=false
// (rather than propagating an error) on timeout or driver failure, per
// spec §4.A's "on timeout, the field is omitted, not failed".
func boundedRead(ctx context.Context, fn func(context.Context) (string, error)) (string, bool) {
	c, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	v, err := fn(c)
	if err != nil {
		return "", false
	}
	return v, true
}

// Close closes targetID's page via the driver and removes it from the
// registry. Closing the active target reassigns active to the first
// remaining target in registration order, or "" if none remain (spec
// §4.A "Closing the active target reassigns active to the first
// remaining, or null").
func (r *Registry) Close(ctx context.Context, targetID string) error {
	r.mu.Lock()
	e, ok := r.byID[targetID]
	if !ok {
		r.mu.Unlock()
		return gaserr.New(gaserr.KindInvalidInput, "unknown target id")
	}
	r.mu.Unlock()

	if err := r.drv.ClosePage(ctx, e.page); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(targetID)
	return nil
}

// remove drops targetID from every internal index. Callers must hold mu.
func (r *Registry) remove(targetID string) {
	e, ok := r.byID[targetID]
	if !ok {
		return
	}
	if e.name != "" {
		delete(r.names, e.name)
	}
	delete(r.byID, targetID)
	for i, id := range r.order {
		if id == targetID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.active == targetID {
		if len(r.order) > 0 {
			r.active = r.order[0]
		} else {
			r.active = ""
		}
	}
}

// Sync reconciles the registry against driverPages, the authoritative
// page list (spec §4.A "sync(driverPages) -- reconciles registry with an
// authoritative page list by dropping closed/unknown and adding
// newly-appeared pages"). Matching is by the driver's own page identity
// (driver.Page is a plain comparable struct), not the registry's opaque
// ids.
func (r *Registry) Sync(driverPages []driver.Page) {
	r.mu.Lock()
	defer r.mu.Unlock()

	known := make(map[driver.Page]bool, len(driverPages))
	for _, p := range driverPages {
		known[p] = true
	}

	for _, id := range append([]string(nil), r.order...) {
		if !known[r.byID[id].page] {
			r.remove(id)
		}
	}

	registered := make(map[driver.Page]bool, len(r.byID))
	for _, e := range r.byID {
		registered[e.page] = true
	}
	for _, p := range driverPages {
		if registered[p] {
			continue
		}
		id := uuid.NewString()
		r.byID[id] = &entry{page: p}
		r.order = append(r.order, id)
		if r.active == "" {
			r.active = id
		}
	}
}
