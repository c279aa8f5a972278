package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/layerwatch/internal/csvlog"
	"github.com/sawpanic/layerwatch/internal/snapshot"
)

type fakeSource struct {
	mu     sync.Mutex
	builds int
	snap   snapshot.Snapshot
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		snap: snapshot.Snapshot{
			Timestamp: "2026-08-21 10:30:00",
			Columns:   []string{"account_balance"},
			Values:    map[string]string{"account_balance": "100"},
		},
	}
}

func (s *fakeSource) Build(ctx context.Context) (snapshot.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds++
	return s.snap, nil
}

func (s *fakeSource) buildCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builds
}

type fakeWriter struct {
	mu      sync.Mutex
	fail    error
	paths   []string
	headers [][]string
	rows    [][]string
	wrote   chan struct{}
}

func newFakeWriter(fail error) *fakeWriter {
	return &fakeWriter{fail: fail, wrote: make(chan struct{}, 64)}
}

func (w *fakeWriter) Append(path string, header, row []string) error {
	w.mu.Lock()
	w.paths = append(w.paths, path)
	w.headers = append(w.headers, header)
	w.rows = append(w.rows, row)
	w.mu.Unlock()

	select {
	case w.wrote <- struct{}{}:
	default:
	}
	return w.fail
}

func (w *fakeWriter) appendCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.paths)
}

type recordingObserver struct {
	mu     sync.Mutex
	cycles []string
	errs   []error
}

func (o *recordingObserver) CycleDone(account string, start time.Time, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cycles = append(o.cycles, account)
	o.errs = append(o.errs, err)
}

// waitSignals blocks until ch has delivered n signals or fails the test.
func waitSignals(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for write %d of %d", i+1, n)
		}
	}
}

// waitStopped blocks until done is closed or fails the test.
func waitStopped(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}

func TestNew_Defaults(t *testing.T) {
	m := New(Config{Name: "main", LogPath: "main.csv"}, newFakeSource(), newFakeWriter(nil))

	assert.Equal(t, DefaultInterval, m.interval)
	assert.Equal(t, DefaultCooldown, m.cooldown)
	assert.Equal(t, "main", m.Name())
	assert.Equal(t, "main.csv", m.LogPath())
}

func TestMonitor_RunExitsBeforeFirstCycleWhenCanceled(t *testing.T) {
	source := newFakeSource()
	writer := newFakeWriter(nil)
	m := New(Config{Name: "main", LogPath: "main.csv"}, source, writer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Run(ctx)

	assert.Equal(t, 0, source.buildCount())
	assert.Equal(t, 0, writer.appendCount())
}

func TestMonitor_RunOnceWritesHeaderAndRow(t *testing.T) {
	source := newFakeSource()
	writer := newFakeWriter(nil)
	m := New(Config{Name: "main", LogPath: "out/main.csv"}, source, writer)

	require.NoError(t, m.RunOnce(context.Background()))

	require.Equal(t, 1, writer.appendCount())
	assert.Equal(t, "out/main.csv", writer.paths[0])
	assert.Equal(t, []string{"timestamp", "account_balance"}, writer.headers[0])
	assert.Equal(t, []string{"2026-08-21 10:30:00", "100"}, writer.rows[0])
}

func TestMonitor_RunOncePropagatesWriteError(t *testing.T) {
	wantErr := errors.New("disk full")
	m := New(Config{Name: "main", LogPath: "main.csv"}, newFakeSource(), newFakeWriter(wantErr))

	err := m.RunOnce(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestMonitor_RetriesAfterCooldownOnWriteFailure(t *testing.T) {
	source := newFakeSource()
	writer := newFakeWriter(errors.New("disk full"))

	// The interval is far too long to fire inside this test, so a second
	// write can only mean the cooldown path was taken.
	m := New(Config{
		Name:     "main",
		LogPath:  "main.csv",
		Interval: time.Hour,
		Cooldown: time.Millisecond,
	}, source, writer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	waitSignals(t, writer.wrote, 3)
	cancel()
	waitStopped(t, done)

	assert.GreaterOrEqual(t, source.buildCount(), 3)
}

func TestMonitor_ContinuesAtIntervalOnSuccess(t *testing.T) {
	source := newFakeSource()
	writer := newFakeWriter(nil)

	m := New(Config{
		Name:     "main",
		LogPath:  "main.csv",
		Interval: time.Millisecond,
		Cooldown: time.Hour,
	}, source, writer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	waitSignals(t, writer.wrote, 3)
	cancel()
	waitStopped(t, done)
}

func TestMonitor_ObserversSeeSuccessAndFailure(t *testing.T) {
	obs := &recordingObserver{}

	ok := New(Config{Name: "main", LogPath: "main.csv"}, newFakeSource(), newFakeWriter(nil))
	ok.AddObserver(obs)
	require.NoError(t, ok.RunOnce(context.Background()))

	bad := New(Config{Name: "backup", LogPath: "backup.csv"}, newFakeSource(), newFakeWriter(errors.New("disk full")))
	bad.AddObserver(obs)
	require.Error(t, bad.RunOnce(context.Background()))

	obs.mu.Lock()
	defer obs.mu.Unlock()
	require.Equal(t, []string{"main", "backup"}, obs.cycles)
	assert.NoError(t, obs.errs[0])
	assert.Error(t, obs.errs[1])
}

func TestSupervisor_RunStopsAllMonitorsOnCancel(t *testing.T) {
	okWriter := newFakeWriter(nil)
	okMonitor := New(Config{
		Name:     "main",
		LogPath:  "main.csv",
		Interval: time.Millisecond,
		Cooldown: time.Hour,
	}, newFakeSource(), okWriter)

	badWriter := newFakeWriter(errors.New("disk full"))
	badMonitor := New(Config{
		Name:     "backup",
		LogPath:  "backup.csv",
		Interval: time.Hour,
		Cooldown: time.Millisecond,
	}, newFakeSource(), badWriter)

	sup := NewSupervisor(okMonitor, badMonitor)
	require.Len(t, sup.Monitors(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sup.Run(ctx)
		close(done)
	}()

	// One account failing persistently must not stall the other.
	waitSignals(t, okWriter.wrote, 2)
	waitSignals(t, badWriter.wrote, 2)
	cancel()
	waitStopped(t, done)
}

func TestSupervisor_OneUnwritableLogDoesNotStopTheOther(t *testing.T) {
	dir := t.TempDir()
	appender := csvlog.NewAppender()

	okPath := filepath.Join(dir, "main.csv")
	okMonitor := New(Config{
		Name:     "main",
		LogPath:  okPath,
		Interval: time.Millisecond,
		Cooldown: time.Hour,
	}, newFakeSource(), appender)
	okObserver := &recordingObserver{}
	okMonitor.AddObserver(okObserver)

	// backup's log path is an existing directory, so every append fails
	badPath := filepath.Join(dir, "backup.csv")
	require.NoError(t, os.MkdirAll(badPath, 0o755))
	badMonitor := New(Config{
		Name:     "backup",
		LogPath:  badPath,
		Interval: time.Hour,
		Cooldown: time.Millisecond,
	}, newFakeSource(), appender)
	badObserver := &recordingObserver{}
	badMonitor.AddObserver(badObserver)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = NewSupervisor(okMonitor, badMonitor).Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		okObserver.mu.Lock()
		okCycles := len(okObserver.cycles)
		okObserver.mu.Unlock()
		badObserver.mu.Lock()
		badCycles := len(badObserver.cycles)
		badObserver.mu.Unlock()
		if okCycles >= 2 && badCycles >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("cycles did not accumulate: ok=%d bad=%d", okCycles, badCycles)
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	waitStopped(t, done)

	// main's log grew: header plus at least two rows
	data, err := os.ReadFile(okPath)
	require.NoError(t, err)
	lines := strings.Count(string(data), "\n")
	assert.GreaterOrEqual(t, lines, 3)

	// backup never produced a file, only errors
	badObserver.mu.Lock()
	defer badObserver.mu.Unlock()
	for _, cycleErr := range badObserver.errs {
		assert.Error(t, cycleErr)
	}
}

func TestSupervisor_RunOnceReturnsFirstErrorButTriesAll(t *testing.T) {
	wantErr := errors.New("disk full")
	badWriter := newFakeWriter(wantErr)
	okWriter := newFakeWriter(nil)

	sup := NewSupervisor(
		New(Config{Name: "main", LogPath: "main.csv"}, newFakeSource(), badWriter),
		New(Config{Name: "backup", LogPath: "backup.csv"}, newFakeSource(), okWriter),
	)

	err := sup.RunOnce(context.Background())
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, okWriter.appendCount())
}
