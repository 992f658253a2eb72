package conversation

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"resume-bot/internal/shared/telemetry"
)

// HandlerFunc processes one event.
type HandlerFunc func(ctx context.Context, ev Event) error

// Serializer runs events of the same user one at a time in arrival order and caps
// how many users are served concurrently. Each user with pending events gets one
// goroutine that drains its queue and exits when the queue is empty.
type Serializer struct {
	handle HandlerFunc
	sem    *semaphore.Weighted
	log    *zap.Logger

	mu     sync.Mutex
	queues map[int64][]Event
	closed bool
	wg     sync.WaitGroup
}

// NewSerializer constructs a Serializer. limit < 1 means one worker at a time.
func NewSerializer(handle HandlerFunc, limit int, log *zap.Logger) *Serializer {
	if limit < 1 {
		limit = 1
	}
	return &Serializer{
		handle: handle,
		sem:    semaphore.NewWeighted(int64(limit)),
		log:    telemetry.OrNop(log),
		queues: make(map[int64][]Event),
	}
}

// Submit enqueues the event. It returns false once the serializer is closed.
func (s *Serializer) Submit(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	pending, running := s.queues[ev.UserID]
	s.queues[ev.UserID] = append(pending, ev)
	if !running {
		s.wg.Add(1)
		go s.drain(ev.UserID)
	}
	return true
}

func (s *Serializer) drain(userID int64) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		pending := s.queues[userID]
		if len(pending) == 0 {
			delete(s.queues, userID)
			s.mu.Unlock()
			return
		}
		ev := pending[0]
		s.queues[userID] = pending[1:]
		s.mu.Unlock()

		s.run(ev)
	}
}

// run handles a single event on a context detached from any shutdown signal, so an
// accepted event is always processed to completion.
func (s *Serializer) run(ev Event) {
	ctx := context.Background()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.log.Error("conversation.serializer.acquire_failed", zap.Error(err))
		return
	}
	defer s.sem.Release(1)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("conversation.serializer.panic",
				zap.Int64("user_id", ev.UserID),
				zap.String("kind", string(ev.Kind)),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	if err := s.handle(ctx, ev); err != nil {
		s.log.Error("conversation.event.failed",
			zap.Int64("user_id", ev.UserID),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err),
		)
	}
}

// Close stops accepting events. Queued events are still processed.
func (s *Serializer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Wait blocks until every queued event has been handled or ctx is done.
func (s *Serializer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
