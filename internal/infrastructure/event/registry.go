package event

import (
	"strings"
	"sync"

	"github.com/storefront/backend/internal/domain/shared"
)

// Route patterns accepted by HandlerRegistry.Register
//
//	"OrderPaid"  one event type
//	"Order.*"    every event of the Order aggregate
//	"*"          every event; also what an empty pattern list means
const (
	routeAll             = "*"
	aggregateRouteSuffix = ".*"
)

// AggregateRoute returns the pattern matching every event of aggregateType
func AggregateRoute(aggregateType string) string {
	return aggregateType + aggregateRouteSuffix
}

type subscription struct {
	handler    shared.EventHandler
	all        bool
	types      map[string]struct{}
	aggregates map[string]struct{}
}

func (s *subscription) matches(event shared.DomainEvent) bool {
	if s.all {
		return true
	}
	if _, ok := s.types[event.EventType()]; ok {
		return true
	}
	_, ok := s.aggregates[event.AggregateType()]
	return ok
}

// HandlerRegistry routes events to handlers in subscription order. A handler
// registered twice, or matched by several patterns, still runs once per event.
type HandlerRegistry struct {
	mu   sync.RWMutex
	subs []*subscription
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register adds patterns for handler, merging them into an existing registration
func (r *HandlerRegistry) Register(handler shared.EventHandler, patterns ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := r.find(handler)
	if sub == nil {
		sub = &subscription{
			handler:    handler,
			types:      make(map[string]struct{}),
			aggregates: make(map[string]struct{}),
		}
		r.subs = append(r.subs, sub)
	}
	if len(patterns) == 0 {
		sub.all = true
	}
	for _, p := range patterns {
		switch {
		case p == routeAll:
			sub.all = true
		case strings.HasSuffix(p, aggregateRouteSuffix):
			sub.aggregates[strings.TrimSuffix(p, aggregateRouteSuffix)] = struct{}{}
		case p != "":
			sub.types[p] = struct{}{}
		}
	}
}

// Unregister drops every route of handler
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, sub := range r.subs {
		if sub.handler == handler {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return
		}
	}
}

// HandlersFor returns the handlers that receive event
func (r *HandlerRegistry) HandlersFor(event shared.DomainEvent) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []shared.EventHandler
	for _, sub := range r.subs {
		if sub.matches(event) {
			out = append(out, sub.handler)
		}
	}
	return out
}

// Len returns the number of registered handlers
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

func (r *HandlerRegistry) find(handler shared.EventHandler) *subscription {
	for _, sub := range r.subs {
		if sub.handler == handler {
			return sub
		}
	}
	return nil
}
