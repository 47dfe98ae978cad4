package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerialisesPerKey(t *testing.T) {
	km := newKeyedMutex()
	var counterA, counterB int

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := km.Lock("a")
			defer unlock()
			counterA++
		}()
		go func() {
			defer wg.Done()
			unlock := km.Lock("b")
			defer unlock()
			counterB++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counterA)
	assert.Equal(t, 50, counterB)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := newKeyedMutex()
	unlock := km.Lock("a")
	unlock()

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks, "released keys must not accumulate")
}

func TestKeyedMutexLockAllAvoidsDeadlock(t *testing.T) {
	km := newKeyedMutex()

	var wg sync.WaitGroup
	total := 0
	for i := 0; i < 50; i++ {
		wg.Add(2)
		// Opposite acquisition orders would deadlock without sorted locking.
		go func() {
			defer wg.Done()
			unlock := km.LockAll("teacher:t1", "class:c1")
			defer unlock()
			total++
		}()
		go func() {
			defer wg.Done()
			unlock := km.LockAll("class:c1", "teacher:t1")
			defer unlock()
			total++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, total)
}

func TestKeyedMutexLockAllDeduplicatesKeys(t *testing.T) {
	km := newKeyedMutex()
	unlock := km.LockAll("a", "a")
	unlock()

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}
