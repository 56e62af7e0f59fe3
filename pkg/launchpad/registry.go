package launchpad

import (
	"sync"

	"launchcontrol/pkg/curve"
	"launchcontrol/pkg/venue"
)

type pairKey struct {
	curveID    string
	strategyID string
}

// Registry whitelists pricing curves and migration strategies. Issuance only
// accepts (curve, strategy) pairs explicitly allowed here.
type Registry struct {
	mu         sync.RWMutex
	curves     map[string]curve.Curve
	strategies map[string]venue.Strategy
	pairs      map[pairKey]bool
}

func NewRegistry() *Registry {
	return &Registry{
		curves:     make(map[string]curve.Curve),
		strategies: make(map[string]venue.Strategy),
		pairs:      make(map[pairKey]bool),
	}
}

func (r *Registry) RegisterCurve(id string, c curve.Curve) error {
	if id == "" || c == nil {
		return ErrInvalidConfig
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.curves[id]; ok {
		return ErrAlreadyRegistered
	}
	r.curves[id] = c
	return nil
}

func (r *Registry) RegisterStrategy(id string, s venue.Strategy) error {
	if id == "" || s == nil {
		return ErrInvalidConfig
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strategies[id]; ok {
		return ErrAlreadyRegistered
	}
	r.strategies[id] = s
	return nil
}

// AllowPair whitelists a curve/strategy combination. Both sides must already
// be registered; re-allowing an existing pair is rejected.
func (r *Registry) AllowPair(curveID, strategyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.curves[curveID]; !ok {
		return ErrUnknownCurve
	}
	if _, ok := r.strategies[strategyID]; !ok {
		return ErrUnknownStrategy
	}
	key := pairKey{curveID, strategyID}
	if r.pairs[key] {
		return ErrAlreadyRegistered
	}
	r.pairs[key] = true
	return nil
}

func (r *Registry) Curve(id string) (curve.Curve, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.curves[id]
	return c, ok
}

func (r *Registry) Strategy(id string) (venue.Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[id]
	return s, ok
}

func (r *Registry) PairAllowed(curveID, strategyID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pairs[pairKey{curveID, strategyID}]
}
