// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/bandassist/internal/engine"
)

// MockEngine is a passive test double for [engine.Engine]. It records every
// call and exposes the subscribed handlers so tests can fire events at will.
type MockEngine struct {
	mu       sync.Mutex
	handlers engine.Handlers

	LoadErr    error
	SeekErr    error
	DestroyErr error

	// ScoreV is what Score returns; tests mutate its tracks directly the
	// way the real engine-owned score is mutated.
	ScoreV *engine.Score

	Loads          [][]byte
	PlayPauseCalls int
	StopCalls      int
	Seeks          []float64
	Speeds         []float64
	LoopEnables    []bool
	LoopRanges     []*engine.LoopRange
	Rendered       [][]int
	MuteCalls      []MixerCall
	SoloCalls      []MixerCall
	DestroyCalls   int

	playing bool
}

// MixerCall records one ChangeTrackMute or ChangeTrackSolo invocation.
type MixerCall struct {
	Indices []int
	Value   bool
}

func (m *MockEngine) Load(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads = append(m.Loads, data)
	return m.LoadErr
}

func (m *MockEngine) Subscribe(h engine.Handlers) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = h
}

// Handlers returns the most recently subscribed handlers.
func (m *MockEngine) Handlers() engine.Handlers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handlers
}

func (m *MockEngine) PlayPause() {
	m.mu.Lock()
	m.PlayPauseCalls++
	m.playing = !m.playing
	playing := m.playing
	h := m.handlers
	m.mu.Unlock()

	if h.PlayerStateChanged == nil {
		return
	}
	if playing {
		h.PlayerStateChanged(engine.PlayerPlaying)
	} else {
		h.PlayerStateChanged(engine.PlayerPaused)
	}
}

func (m *MockEngine) Stop() {
	m.mu.Lock()
	m.StopCalls++
	m.playing = false
	h := m.handlers
	m.mu.Unlock()

	if h.PlayerStateChanged != nil {
		h.PlayerStateChanged(engine.PlayerStopped)
	}
}

func (m *MockEngine) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *MockEngine) Seek(ms float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Seeks = append(m.Seeks, ms)
	return m.SeekErr
}

func (m *MockEngine) SetSpeed(multiplier float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Speeds = append(m.Speeds, multiplier)
}

func (m *MockEngine) SetLoopEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoopEnables = append(m.LoopEnables, enabled)
}

func (m *MockEngine) SetLoopRange(r *engine.LoopRange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoopRanges = append(m.LoopRanges, r)
}

func (m *MockEngine) Score() *engine.Score {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ScoreV
}

func (m *MockEngine) RenderTracks(indices ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rendered = append(m.Rendered, indices)
}

func (m *MockEngine) ChangeTrackMute(indices []int, mute bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MuteCalls = append(m.MuteCalls, MixerCall{Indices: indices, Value: mute})
}

func (m *MockEngine) ChangeTrackSolo(indices []int, solo bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SoloCalls = append(m.SoloCalls, MixerCall{Indices: indices, Value: solo})
}

func (m *MockEngine) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DestroyCalls++
	return m.DestroyErr
}

// FireScoreLoaded publishes sc through the subscribed handlers and makes it
// the engine-owned score.
func (m *MockEngine) FireScoreLoaded(sc *engine.Score) {
	m.mu.Lock()
	m.ScoreV = sc
	h := m.handlers
	m.mu.Unlock()

	if h.ScoreLoaded != nil {
		h.ScoreLoaded(sc)
	}
}

// MockFactory is a test double for [engine.Factory] handing out a fixed
// engine, or an error when Err is set.
type MockFactory struct {
	Engine *MockEngine
	Err    error

	NewCalls int
	Settings []engine.Settings
}

func (f *MockFactory) New(settings engine.Settings) (engine.Engine, error) {
	f.NewCalls++
	f.Settings = append(f.Settings, settings)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Engine, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
