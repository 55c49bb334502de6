package storefront

import (
	"context"
	"sync"
	"time"

	dom "example.com/catalog-shop/app/internal/domain/storefront"
)

type fetchKind int

const (
	fetchProducts fetchKind = iota
	fetchCategories
	fetchKinds
)

func (k fetchKind) String() string {
	if k == fetchCategories {
		return "categories"
	}
	return "products"
}

type fetchScope struct {
	gen    uint64
	cancel context.CancelFunc
}

// Session holds the state of one mounted storefront view. Every change goes
// through dom.Reduce under mu, one event at a time.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	state  dom.State
	scopes [fetchKinds]fetchScope
	closed bool
}

func newSession(parent context.Context, id string) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		state:  dom.Initial(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() dom.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) apply(e dom.Event) dom.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = dom.Reduce(s.state, e)
	return s.state
}

// beginFetch opens a new scope for kind, cancelling the one it supersedes,
// and applies start (if any) in the same critical section.
func (s *Session) beginFetch(kind fetchKind, timeout time.Duration, start dom.Event) (context.Context, context.CancelFunc, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil, 0, false
	}

	if prev := s.scopes[kind].cancel; prev != nil {
		prev()
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(s.ctx)
	}
	gen := s.scopes[kind].gen + 1
	s.scopes[kind] = fetchScope{gen: gen, cancel: cancel}

	if start != nil {
		s.state = dom.Reduce(s.state, start)
	}
	return ctx, cancel, gen, true
}

// completeFetch applies e only if gen is still the current scope for kind.
func (s *Session) completeFetch(kind fetchKind, gen uint64, e dom.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.scopes[kind].gen != gen {
		return false
	}
	if cancel := s.scopes[kind].cancel; cancel != nil {
		cancel()
	}
	s.scopes[kind].cancel = nil
	s.state = dom.Reduce(s.state, e)
	return true
}

// Close aborts in-flight fetches. Results that arrive afterwards are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	for i := range s.scopes {
		s.scopes[i].cancel = nil
	}
	s.mu.Unlock()
	s.cancel()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
