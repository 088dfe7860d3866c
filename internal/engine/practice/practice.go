// Package practice provides the built-in playback engine used when no
// external notation engine is linked into the binary.
//
// It renders nothing and synthesizes nothing: it loads a JSON tab manifest,
// runs a clock over the declared duration, and feeds the same event surface a
// real engine would (position ticks, metronome beats, transport state). That
// is enough to drive the whole player during rehearsal without sheet music
// assets or a sound bank.
package practice

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/desertthunder/bandassist/internal/engine"
)

// Name is the registry name the factory registers under.
const Name = "practice"

const tickInterval = 50 * time.Millisecond

func init() {
	engine.Register(Name, factory{})
}

type factory struct{}

func (factory) New(settings engine.Settings) (engine.Engine, error) {
	e := &Engine{
		settings: settings,
		speed:    1.0,
		events:   make(chan func(), 64),
		quit:     make(chan struct{}),
	}
	go e.dispatch()
	return e, nil
}

// Manifest is the JSON tab manifest the practice engine understands.
type Manifest struct {
	Title       string          `json:"title"`
	Artist      string          `json:"artist"`
	Tempo       float64         `json:"tempo"`
	DurationMS  float64         `json:"duration_ms"`
	BeatsPerBar int             `json:"beats_per_bar"`
	Tracks      []ManifestTrack `json:"tracks"`
}

// ManifestTrack names one instrument voice in a manifest.
type ManifestTrack struct {
	Name string `json:"name"`
}

// ParseManifest decodes and validates a tab manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse tab manifest: %w", err)
	}
	if len(m.Tracks) == 0 {
		return nil, fmt.Errorf("tab manifest declares no tracks")
	}
	if m.DurationMS <= 0 {
		return nil, fmt.Errorf("tab manifest declares no duration")
	}
	if m.BeatsPerBar <= 0 {
		m.BeatsPerBar = 4
	}
	return &m, nil
}

// Engine is a clock-driven implementation of [engine.Engine].
type Engine struct {
	mu       sync.Mutex
	settings engine.Settings
	handlers engine.Handlers

	score       *engine.Score
	beatsPerBar int

	playing   bool
	destroyed bool
	posMS     float64
	endMS     float64
	speed     float64
	loop      bool
	loopRange *engine.LoopRange

	// beat accumulator for metronome events, in score milliseconds
	nextBeatMS float64
	beatInBar  int

	ticker *time.Ticker
	stopCh chan struct{}

	events chan func()
	quit   chan struct{}
}

var _ engine.Engine = (*Engine)(nil)

// dispatch runs queued event callbacks off the caller's stack, so handlers
// can call back into the engine without deadlocking.
func (e *Engine) dispatch() {
	for {
		select {
		case fn := <-e.events:
			fn()
		case <-e.quit:
			return
		}
	}
}

func (e *Engine) emit(fn func()) {
	if fn == nil {
		return
	}
	select {
	case e.events <- fn:
	default:
		// Event queue full; drop rather than block the clock
	}
}

// Subscribe installs the event handlers, replacing any prior set.
func (e *Engine) Subscribe(h engine.Handlers) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = h
}

// Load parses the manifest and publishes the resulting score.
func (e *Engine) Load(data []byte) error {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return fmt.Errorf("engine destroyed")
	}
	h := e.handlers
	e.mu.Unlock()

	m, err := ParseManifest(data)
	if err != nil {
		e.emit(func() {
			if h.Error != nil {
				h.Error(&engine.LoadError{Message: "failed to load score", Inner: err.Error()})
			}
		})
		return err
	}

	tracks := make([]*engine.Track, len(m.Tracks))
	for i, t := range m.Tracks {
		tracks[i] = &engine.Track{Name: t.Name}
	}
	score := &engine.Score{Title: m.Title, Tracks: tracks, Tempo: m.Tempo}

	e.mu.Lock()
	e.stopClockLocked()
	e.score = score
	e.beatsPerBar = m.BeatsPerBar
	e.posMS = 0
	e.endMS = m.DurationMS
	e.speed = 1.0
	e.playing = false
	e.resetBeatClockLocked()
	e.mu.Unlock()

	e.emit(func() {
		if h.RenderStarted != nil {
			h.RenderStarted()
		}
		if h.ScoreLoaded != nil {
			h.ScoreLoaded(score)
		}
		if h.RenderFinished != nil {
			h.RenderFinished()
		}
		if h.PlayerReady != nil {
			h.PlayerReady()
		}
	})

	return nil
}

// PlayPause toggles the transport clock.
func (e *Engine) PlayPause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed || e.score == nil {
		return
	}

	if e.playing {
		e.pauseLocked()
	} else {
		e.playLocked()
	}
}

// Stop halts the clock and rewinds to the start.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return
	}

	e.pauseLocked()
	e.posMS = 0
	e.resetBeatClockLocked()
	e.emitStateLocked(engine.PlayerStopped)
	e.emitPositionLocked()
}

// Playing reports whether the clock is running.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Seek moves the clock to an absolute position.
func (e *Engine) Seek(ms float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return fmt.Errorf("engine destroyed")
	}
	if e.score == nil {
		return fmt.Errorf("no score loaded")
	}
	if math.IsNaN(ms) || ms < 0 || ms > e.endMS {
		return fmt.Errorf("seek target %v out of range", ms)
	}

	e.posMS = ms
	e.resetBeatClockLocked()
	e.emitPositionLocked()
	return nil
}

// SetSpeed scales the clock rate.
func (e *Engine) SetSpeed(multiplier float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if multiplier > 0 {
		e.speed = multiplier
	}
}

// SetLoopEnabled flips the loop flag.
func (e *Engine) SetLoopEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loop = enabled
}

// SetLoopRange pushes the loop window; nil clears it.
func (e *Engine) SetLoopRange(r *engine.LoopRange) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loopRange = r
}

// Score returns the engine-owned score.
func (e *Engine) Score() *engine.Score {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// RenderTracks acknowledges a render request. The practice engine draws
// nothing, but it still reports the render cycle so callers see the same
// event order a real engine produces.
func (e *Engine) RenderTracks(indices ...int) {
	e.mu.Lock()
	h := e.handlers
	destroyed := e.destroyed
	e.mu.Unlock()

	if destroyed {
		return
	}
	e.emit(func() {
		if h.RenderStarted != nil {
			h.RenderStarted()
		}
		if h.RenderFinished != nil {
			h.RenderFinished()
		}
	})
}

// ChangeTrackMute sets the mute flag on the engine-owned tracks.
func (e *Engine) ChangeTrackMute(indices []int, mute bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, i := range indices {
		if t := e.trackLocked(i); t != nil {
			t.Playback.Mute = mute
		}
	}
}

// ChangeTrackSolo sets the solo flag on the engine-owned tracks.
func (e *Engine) ChangeTrackSolo(indices []int, solo bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, i := range indices {
		if t := e.trackLocked(i); t != nil {
			t.Playback.Solo = solo
		}
	}
}

// Destroy halts the clock and the dispatch loop. Safe to call repeatedly.
func (e *Engine) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return nil
	}
	e.destroyed = true
	e.stopClockLocked()
	e.score = nil
	close(e.quit)
	return nil
}

func (e *Engine) trackLocked(i int) *engine.Track {
	if e.score == nil || i < 0 || i >= len(e.score.Tracks) {
		return nil
	}
	return e.score.Tracks[i]
}

func (e *Engine) playLocked() {
	if e.playing {
		return
	}
	e.playing = true
	e.stopCh = make(chan struct{})
	e.ticker = time.NewTicker(tickInterval)
	go e.run(e.ticker, e.stopCh)
	e.emitStateLocked(engine.PlayerPlaying)
}

func (e *Engine) pauseLocked() {
	if !e.playing {
		return
	}
	e.playing = false
	e.stopClockLocked()
	e.emitStateLocked(engine.PlayerPaused)
}

func (e *Engine) stopClockLocked() {
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
	e.playing = false
}

func (e *Engine) emitStateLocked(s engine.PlayerState) {
	h := e.handlers
	e.emit(func() {
		if h.PlayerStateChanged != nil {
			h.PlayerStateChanged(s)
		}
	})
}

func (e *Engine) emitPositionLocked() {
	h := e.handlers
	pos := engine.Position{CurrentMS: e.posMS, EndMS: e.endMS}
	e.emit(func() {
		if h.PositionChanged != nil {
			h.PositionChanged(pos)
		}
	})
}

// resetBeatClockLocked realigns the metronome accumulator to the current
// position so seeks and rewinds don't fire a burst of stale beats.
func (e *Engine) resetBeatClockLocked() {
	beat := e.beatDurationLocked()
	if beat <= 0 {
		e.nextBeatMS = math.Inf(1)
		return
	}
	beats := math.Ceil(e.posMS / beat)
	e.nextBeatMS = beats * beat
	if e.beatsPerBar > 0 {
		e.beatInBar = int(beats)%e.beatsPerBar + 1
	}
}

func (e *Engine) beatDurationLocked() float64 {
	tempo := 120.0
	if e.score != nil && e.score.Tempo > 0 {
		tempo = e.score.Tempo
	}
	return 60000.0 / tempo
}

// run is the transport clock goroutine. One runs per play; pause/stop/destroy
// close stopCh to end it.
func (e *Engine) run(ticker *time.Ticker, stop chan struct{}) {
	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			e.advance(float64(elapsed.Milliseconds()))
		}
	}
}

func (e *Engine) advance(elapsedMS float64) {
	e.mu.Lock()

	if !e.playing || e.destroyed {
		e.mu.Unlock()
		return
	}

	e.posMS += elapsedMS * e.speed

	// Loop jump happens before the end check so a loop range touching the
	// end of the score keeps looping instead of finishing.
	if e.loop && e.loopRange != nil && e.posMS >= e.loopRange.EndTick {
		e.posMS = e.loopRange.StartTick
		e.resetBeatClockLocked()
	}

	finished := e.posMS >= e.endMS
	if finished {
		if e.loop && e.loopRange == nil {
			e.posMS = 0
			e.resetBeatClockLocked()
			finished = false
		} else {
			e.posMS = e.endMS
		}
	}

	h := e.handlers
	e.emitPositionLocked()

	beat := e.beatDurationLocked()
	for !finished && e.posMS >= e.nextBeatMS {
		ev := engine.MetronomeEvent{Beat: e.beatInBar, DurationMS: beat / e.speed}
		e.emit(func() {
			if h.Metronome != nil {
				h.Metronome(ev)
			}
		})
		e.nextBeatMS += beat
		e.beatInBar++
		if e.beatsPerBar > 0 && e.beatInBar > e.beatsPerBar {
			e.beatInBar = 1
		}
	}

	if finished {
		e.pauseLocked()
		e.posMS = 0
		e.emitStateLocked(engine.PlayerStopped)
		e.emit(func() {
			if h.PlayerFinished != nil {
				h.PlayerFinished()
			}
		})
	}

	e.mu.Unlock()
}
