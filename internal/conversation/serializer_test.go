package conversation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializerKeepsPerUserOrder(t *testing.T) {
	var (
		mu     sync.Mutex
		seen   = map[int64][]int64{}
		active = map[int64]int{}
		clash  atomic.Bool
	)
	s := NewSerializer(func(ctx context.Context, ev Event) error {
		mu.Lock()
		active[ev.UserID]++
		if active[ev.UserID] > 1 {
			clash.Store(true)
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		active[ev.UserID]--
		seen[ev.UserID] = append(seen[ev.UserID], ev.MessageID)
		mu.Unlock()
		return nil
	}, 4, nil)

	for i := int64(1); i <= 20; i++ {
		for uid := int64(1); uid <= 3; uid++ {
			require.True(t, s.Submit(Event{UserID: uid, MessageID: i}))
		}
	}
	s.Close()
	assert.False(t, s.Submit(Event{UserID: 1, MessageID: 99}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))

	assert.False(t, clash.Load(), "events of one user overlapped")
	for uid := int64(1); uid <= 3; uid++ {
		require.Len(t, seen[uid], 20)
		for i, id := range seen[uid] {
			assert.Equal(t, int64(i+1), id)
		}
	}
}

func TestSerializerCapsConcurrency(t *testing.T) {
	var current, peak atomic.Int32
	s := NewSerializer(func(ctx context.Context, ev Event) error {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		current.Add(-1)
		return nil
	}, 2, nil)

	for uid := int64(1); uid <= 10; uid++ {
		s.Submit(Event{UserID: uid})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestSerializerSurvivesPanics(t *testing.T) {
	var handled atomic.Int32
	s := NewSerializer(func(ctx context.Context, ev Event) error {
		if ev.MessageID == 1 {
			panic("boom")
		}
		handled.Add(1)
		return nil
	}, 1, nil)

	s.Submit(Event{UserID: 1, MessageID: 1})
	s.Submit(Event{UserID: 1, MessageID: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	assert.Equal(t, int32(1), handled.Load())
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	var k keyedMutex
	unlock := k.Lock(5)
	done := make(chan struct{})
	go func() {
		release := k.Lock(5)
		release()
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("second lock acquired while first was held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-done

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}
