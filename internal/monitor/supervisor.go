package monitor

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Supervisor runs one monitor goroutine per account and waits for all of
// them to stop.
type Supervisor struct {
	monitors []*Monitor
}

// NewSupervisor creates a supervisor over the given monitors.
func NewSupervisor(monitors ...*Monitor) *Supervisor {
	return &Supervisor{monitors: monitors}
}

// Monitors returns the supervised monitors.
func (s *Supervisor) Monitors() []*Monitor {
	return s.monitors
}

// Run starts every monitor and blocks until all loops have exited, which
// happens only after ctx is canceled.
func (s *Supervisor) Run(ctx context.Context) error {
	log.Info().Int("accounts", len(s.monitors)).Msg("Monitoring started")

	var wg sync.WaitGroup
	for _, m := range s.monitors {
		wg.Add(1)
		go func(m *Monitor) {
			defer wg.Done()
			m.Run(ctx)
		}(m)
	}
	wg.Wait()

	log.Info().Msg("Monitoring stopped")
	return nil
}

// RunOnce executes a single cycle for every account sequentially and
// returns the first error encountered, after attempting all accounts.
func (s *Supervisor) RunOnce(ctx context.Context) error {
	var firstErr error
	for _, m := range s.monitors {
		if err := m.RunOnce(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
