package services

import (
	"context"
	"sync"
	"time"

	"github.com/bingo-live/backend/utils/logger"
)

// serverAuthority is the caller identity of the server-owned draw loop,
// which bypasses the host check. It can never collide with a user id.
const serverAuthority = "\x00server"

// tickTimeout bounds the persistence work of a single draw tick so the loop
// can never block indefinitely.
const tickTimeout = 10 * time.Second

// drawScheduler runs one ticker goroutine per active round so game progress
// never depends on a specific client's liveness. A loop stops itself on
// exhaustion or round completion and can be cancelled when a claim settles.
type drawScheduler struct {
	coord    *RoundCoordinator
	interval time.Duration

	mu      sync.Mutex
	cancels map[string]chan struct{}
}

func newDrawScheduler(coord *RoundCoordinator, interval time.Duration) *drawScheduler {
	return &drawScheduler{
		coord:    coord,
		interval: interval,
		cancels:  make(map[string]chan struct{}),
	}
}

func (s *drawScheduler) start(roundID, roomID string) {
	s.mu.Lock()
	if _, running := s.cancels[roundID]; running {
		s.mu.Unlock()
		return
	}
	cancel := make(chan struct{})
	s.cancels[roundID] = cancel
	s.mu.Unlock()

	go s.run(roundID, roomID, cancel)
}

func (s *drawScheduler) run(roundID, roomID string, cancel chan struct{}) {
	defer s.stop(roundID)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Debugf("[DrawLoop] round %s started (every %s)", roundID, s.interval)
	for {
		select {
		case <-cancel:
			logger.Debugf("[DrawLoop] round %s cancelled", roundID)
			return
		case <-ticker.C:
			ctx, done := context.WithTimeout(context.Background(), tickTimeout)
			stop := s.coord.serverDraw(ctx, roundID, roomID)
			done()
			if stop {
				return
			}
		}
	}
}

func (s *drawScheduler) stop(roundID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.cancels[roundID]; ok {
		close(cancel)
		delete(s.cancels, roundID)
	}
}

func (s *drawScheduler) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, cancel := range s.cancels {
		close(cancel)
		delete(s.cancels, id)
	}
}
