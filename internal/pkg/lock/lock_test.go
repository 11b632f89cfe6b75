package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestKeyLockSerializesSameKey(t *testing.T) {
	l := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock("p1")
			defer l.Unlock("p1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, l.Size(), "released keys should be forgotten")
}

func TestKeyLockIndependentKeys(t *testing.T) {
	l := New()
	l.Lock("a")
	defer l.Unlock("a")

	done := make(chan struct{})
	go func() {
		l.Lock("b")
		l.Unlock("b")
		close(done)
	}()
	<-done

	assert.Equal(t, 1, l.Size())
}

func TestKeyLockUnlockUnknownKey(t *testing.T) {
	l := New()
	require.NotPanics(t, func() { l.Unlock("missing") })
}

// Any sequence of balanced lock/unlock pairs leaves no key behind.
func TestKeyLockCleanupProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := New()
		keys := rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "c", "d"}), 1, 20).Draw(rt, "keys")

		var wg sync.WaitGroup
		for _, k := range keys {
			wg.Add(1)
			go func(k string) {
				defer wg.Done()
				l.Lock(k)
				l.Unlock(k)
			}(k)
		}
		wg.Wait()

		if l.Size() != 0 {
			rt.Fatalf("expected no keys left, got %d", l.Size())
		}
	})
}
