package safego

import (
	"sync"
	"testing"
	"time"
)

// waitDone fails the test unless wg is released within two seconds.
func waitDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("background goroutine never finished")
	}
}

func TestGo_ExecutesBackgroundWork(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	ran := false
	Go(func() {
		defer wg.Done()
		ran = true
	})

	waitDone(t, &wg)
	if !ran {
		t.Error("background work did not run")
	}
}

func TestGo_SurvivesPanickingCollector(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	// A panicking stats collector must be recovered, not take the
	// process down with it.
	Go(func() {
		defer wg.Done()
		panic("collector blew up")
	})

	waitDone(t, &wg)
}
