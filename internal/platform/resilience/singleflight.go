package resilience

import "sync"

// SingleFlight collapses concurrent calls for the same key into one
// execution. Followers block until the leader finishes and receive its
// result; the shared flag tells a caller it got someone else's answer.
type SingleFlight struct {
	mu       sync.Mutex
	inFlight map[string]*flight
}

type flight struct {
	done   chan struct{}
	result any
	err    error
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (result any, err error, shared bool) {
	g.mu.Lock()
	if g.inFlight == nil {
		g.inFlight = make(map[string]*flight)
	}

	if f, ok := g.inFlight[key]; ok {
		g.mu.Unlock()
		<-f.done
		return f.result, f.err, true
	}

	f := &flight{done: make(chan struct{})}
	g.inFlight[key] = f
	g.mu.Unlock()

	f.result, f.err = fn()
	close(f.done)

	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()

	return f.result, f.err, false
}
