package chat

import (
	"sync"
	"testing"
)

func TestSessionLockSerializesSameSession(t *testing.T) {
	var locks sessionLocks
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("sess-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50; increments raced", counter)
	}
}

func TestSessionLockIndependentSessions(t *testing.T) {
	var locks sessionLocks

	unlockA := locks.lock("sess-a")
	defer unlockA()

	// A held lock on one session must not block another session.
	done := make(chan struct{})
	go func() {
		unlockB := locks.lock("sess-b")
		unlockB()
		close(done)
	}()
	<-done
}
