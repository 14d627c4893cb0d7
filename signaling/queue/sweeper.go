package queue

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/streamcam/backend/internal/log"
)

// Sweeper periodically evicts expired relay state. It owns the timer; the
// relay exposes EvictExpired so a sweep can also be triggered directly.
type Sweeper struct {
	relay  *Relay
	clock  clockwork.Clock
	config *Config
	logger *log.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewSweeper(relay *Relay, clock clockwork.Clock, config *Config, logger *log.Logger) *Sweeper {
	return &Sweeper{
		relay:  relay,
		clock:  clock,
		config: config,
		logger: logger.Module("sweeper"),
		stopCh: make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting eviction sweeper",
		log.Duration("ttl", s.config.TTL),
		log.Duration("interval", s.config.SweepInterval),
	)

	s.wg.Add(1)
	go s.loop(ctx)
}

func (s *Sweeper) Stop() {
	s.logger.Info("Stopping eviction sweeper")
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.Chan():
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepRuns.Add(ctx, 1)
	s.relay.EvictExpired(s.clock.Now().Add(-s.config.TTL))
}
