package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err, _ := g.Do("boxscore-key", func() (any, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	var g SingleFlight

	a, err, shared := g.Do("key-a", func() (any, error) { return 1, nil })
	if err != nil || shared {
		t.Fatalf("unexpected result for key-a: err=%v shared=%v", err, shared)
	}
	b, err, shared := g.Do("key-b", func() (any, error) { return 2, nil })
	if err != nil || shared {
		t.Fatalf("unexpected result for key-b: err=%v shared=%v", err, shared)
	}

	if a.(int) != 1 || b.(int) != 2 {
		t.Fatalf("expected independent results, got %v and %v", a, b)
	}
}
