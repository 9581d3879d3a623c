package optimizer

import "sync"

// Gate allows at most one in-flight optimization per itinerary id.
type Gate struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{inFlight: make(map[string]struct{})}
}

// Acquire marks id as in flight. The returned release func must be called
// when the optimization finishes; it is safe to call more than once.
func (g *Gate) Acquire(id string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[id]; busy {
		return nil, ErrOptimizationInProgress
	}
	g.inFlight[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, id)
			g.mu.Unlock()
		})
	}, nil
}

// InFlight reports whether an optimization for id is running.
func (g *Gate) InFlight(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, busy := g.inFlight[id]
	return busy
}
