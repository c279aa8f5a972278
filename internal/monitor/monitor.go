package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/layerwatch/internal/snapshot"
)

const (
	DefaultInterval = 300 * time.Second
	DefaultCooldown = 60 * time.Second
)

// SnapshotSource produces one snapshot of the watched account.
type SnapshotSource interface {
	Build(ctx context.Context) (snapshot.Snapshot, error)
}

// RowWriter persists one snapshot row to the account's log file.
type RowWriter interface {
	Append(path string, header, row []string) error
}

// CycleObserver is notified after every cycle, successful or not.
type CycleObserver interface {
	CycleDone(account string, start time.Time, err error)
}

// Config holds per-account monitor settings. Zero durations fall back to
// the defaults.
type Config struct {
	Name     string
	LogPath  string
	Interval time.Duration
	Cooldown time.Duration
}

// Monitor runs the poll-snapshot-append loop for a single account.
type Monitor struct {
	name      string
	logPath   string
	interval  time.Duration
	cooldown  time.Duration
	source    SnapshotSource
	writer    RowWriter
	observers []CycleObserver
}

// New creates a monitor for one account.
func New(cfg Config, source SnapshotSource, writer RowWriter) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Monitor{
		name:     cfg.Name,
		logPath:  cfg.LogPath,
		interval: cfg.Interval,
		cooldown: cfg.Cooldown,
		source:   source,
		writer:   writer,
	}
}

// AddObserver registers an observer for cycle completions.
func (m *Monitor) AddObserver(obs CycleObserver) {
	m.observers = append(m.observers, obs)
}

// Name returns the account name this monitor watches.
func (m *Monitor) Name() string {
	return m.name
}

// LogPath returns the CSV file this monitor appends to.
func (m *Monitor) LogPath() string {
	return m.logPath
}

// Run polls the account until ctx is canceled. The first cycle starts
// immediately; later cycles follow after the interval, or after the
// shorter cooldown when a cycle failed.
func (m *Monitor) Run(ctx context.Context) {
	log.Info().
		Str("account", m.name).
		Str("file", m.logPath).
		Dur("interval", m.interval).
		Msg("Watching account")

	for {
		if ctx.Err() != nil {
			return
		}

		delay := m.interval
		if err := m.cycle(ctx); err != nil {
			log.Error().Err(err).
				Str("account", m.name).
				Dur("cooldown", m.cooldown).
				Msg("Cycle failed, cooling down")
			delay = m.cooldown
		}

		if !sleepCtx(ctx, delay) {
			return
		}
	}
}

// RunOnce executes a single cycle and returns its error.
func (m *Monitor) RunOnce(ctx context.Context) error {
	return m.cycle(ctx)
}

// cycle builds one snapshot and appends it to the log file. Individual
// field failures are already folded into the snapshot as empty values, so
// the only cycle errors are snapshot or write failures.
func (m *Monitor) cycle(ctx context.Context) error {
	start := time.Now()

	snap, err := m.source.Build(ctx)
	if err == nil {
		err = m.writer.Append(m.logPath, snap.Header(), snap.Row())
	}

	for _, obs := range m.observers {
		obs.CycleDone(m.name, start, err)
	}

	if err != nil {
		return err
	}

	log.Info().
		Str("account", m.name).
		Str("file", m.logPath).
		Str("timestamp", snap.Timestamp).
		Msg("Data saved")
	return nil
}

// sleepCtx waits for d and reports true, or false when ctx was canceled
// first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
