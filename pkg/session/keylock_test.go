package session

import (
	"sync"
	"testing"
	"time"
)

func TestKeyLockSerializesSameKey(t *testing.T) {
	locks := NewKeyLock()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("session-a")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50 (lost update)", counter)
	}
}

func TestKeyLockIndependentKeys(t *testing.T) {
	locks := NewKeyLock()

	unlockA := locks.Lock("a")
	defer unlockA()

	// A different key must not block.
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("locking key b blocked behind key a")
	}
}

func TestKeyLockReleaseAllowsNextHolder(t *testing.T) {
	locks := NewKeyLock()

	unlock := locks.Lock("k")
	acquired := make(chan struct{})
	go func() {
		u := locks.Lock("k")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired while first held the lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never acquired after release")
	}
}
