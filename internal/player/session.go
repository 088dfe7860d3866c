// Package player owns the lifecycle of an embedded tablature engine instance
// for one loaded song: availability probing, construction, event wiring,
// transport and mixer control, tempo scaling, loop selection, the visual
// metronome, and teardown.
//
// A [Session] is an explicit state machine. Everything the engine reports
// arrives through event callbacks; everything the user does arrives through
// method calls. Both are serialized behind one mutex, and every callback is
// guarded by a generation counter so events from a torn-down engine instance
// can never touch a newer session state.
package player

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/bandassist/internal/derived"
	"github.com/desertthunder/bandassist/internal/engine"
	"github.com/desertthunder/bandassist/internal/shared"
	"github.com/desertthunder/bandassist/internal/trackmatch"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateProbing             // waiting for the engine factory to become available
	StateInitializing        // engine constructed, score loading
	StateReady               // score loaded, transport available
	StateError               // recoverable failure; Retry restarts from scratch
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateProbing:
		return "probing"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	defaultWatchdog = 15 * time.Second
	defaultTempo    = 120.0

	// MinSpeed and MaxSpeed bound the tempo multiplier.
	MinSpeed = 0.25
	MaxSpeed = 2.0

	// positionInterval bounds how often engine position reports reach the UI.
	positionInterval = 100 * time.Millisecond

	// pulseFraction of a beat's duration that the metronome pulse stays lit.
	pulseFraction = 0.3

	troubleshooting = "Check that the tab file is valid and try reloading the song."
)

// Config configures a Session.
type Config struct {
	// EngineName selects the registered engine factory.
	EngineName string
	// DataURI is the tab file content as a Base64 data URI.
	DataURI string
	// Settings is passed through verbatim to the engine.
	Settings engine.Settings
	// PreferredInstrument picks the initially rendered track.
	PreferredInstrument string
	// Probe overrides availability polling; zero value polls 200ms x 50.
	Probe engine.Probe
	// Watchdog bounds score loading; defaults to 15s.
	Watchdog time.Duration
	Logger   *log.Logger

	// activate is swapped in tests; defaults to audioctx activation.
	activate func()
}

// TrackStatus is a display copy of one engine track's mixer state.
type TrackStatus struct {
	Name string
	Mute bool
	Solo bool
}

// Snapshot is a copy of the session's display state, safe to render from.
type Snapshot struct {
	State         State
	Err           string
	Loading       bool
	Rendering     bool
	Playing       bool
	PositionMS    float64
	EndMS         float64
	OriginalTempo float64
	Speed         float64
	BPM           int
	LoopEnabled   bool
	LoopRange     *engine.LoopRange
	PendingLoop   bool
	Pulse         int
	Tracks        []TrackStatus
	RenderedTrack int
	Title         string
}

// Session drives one engine instance for one song.
type Session struct {
	mu  sync.Mutex
	cfg Config
	log *log.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	closed     bool
	generation int

	state     State
	stateTr   derived.Tracker[State]
	errMsg    string
	loading   bool
	rendering bool

	eng engine.Engine

	playing  bool
	position engine.Position

	originalTempo float64
	speed         float64
	bpm           int

	loopEnabled bool
	loopRange   *engine.LoopRange
	pendingLoop *engine.Beat

	soloSnapshot []engine.PlaybackState

	pulse       int
	pulseTimers map[*time.Timer]struct{}

	watchdog   *time.Timer
	posLimiter *rate.Limiter

	renderedTrack int

	updates chan struct{}
}

// NewSession creates a Session; call [Session.Start] to begin initialization.
func NewSession(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}
	if cfg.Watchdog <= 0 {
		cfg.Watchdog = defaultWatchdog
	}

	return &Session{
		cfg:           cfg,
		log:           shared.WithLogger(cfg.Logger, "engine", cfg.EngineName),
		state:         StateUninitialized,
		speed:         1.0,
		renderedTrack: -1,
		pulseTimers:   make(map[*time.Timer]struct{}),
		posLimiter:    rate.NewLimiter(rate.Every(positionInterval), 1),
		updates:       make(chan struct{}, 16),
	}
}

// Start launches initialization: probe for the engine factory, construct an
// instance, wire events, decode the data URI, and load the score.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.ctx != nil {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	gen := s.generation
	s.mu.Unlock()

	go s.run(gen)
}

// Retry restarts initialization from scratch after an error. The generation
// bump orphans every callback wired to the previous engine instance.
func (s *Session) Retry() {
	s.mu.Lock()
	if s.closed || s.ctx == nil {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	s.errMsg = ""
	s.clearWatchdogLocked()
	old := s.eng
	s.eng = nil
	s.setStateLocked(StateUninitialized)
	s.mu.Unlock()

	s.destroyEngine(old)
	go s.run(gen)
}

// Updates returns a channel that receives a signal whenever display state
// changes. The channel is buffered; excess signals are dropped, so receivers
// should re-read [Session.Snapshot] rather than count signals.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Snapshot copies the current display state. Track state is re-read from the
// engine-owned score on every call so the UI can never drift from the engine.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:         s.state,
		Err:           s.errMsg,
		Loading:       s.loading,
		Rendering:     s.rendering,
		Playing:       s.playing,
		PositionMS:    s.position.CurrentMS,
		EndMS:         s.position.EndMS,
		OriginalTempo: s.originalTempo,
		Speed:         s.speed,
		BPM:           s.bpm,
		LoopEnabled:   s.loopEnabled,
		LoopRange:     s.loopRange,
		PendingLoop:   s.pendingLoop != nil,
		Pulse:         s.pulse,
		RenderedTrack: s.renderedTrack,
	}

	if s.eng != nil {
		if score := s.eng.Score(); score != nil {
			snap.Title = score.Title
			snap.Tracks = make([]TrackStatus, len(score.Tracks))
			for i, t := range score.Tracks {
				snap.Tracks[i] = TrackStatus{Name: t.Name, Mute: t.Playback.Mute, Solo: t.Playback.Solo}
			}
		}
	}

	return snap
}

// Close tears the session down: probe, watchdog, pulse timers, engine. Each
// step runs regardless of earlier failures, and Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++

	if s.cancel != nil {
		s.cancel()
	}

	s.clearWatchdogLocked()

	for t := range s.pulseTimers {
		t.Stop()
		delete(s.pulseTimers, t)
	}
	s.pulse = 0

	old := s.eng
	s.eng = nil

	// No notify can follow: every send is preceded by a closed check under
	// the same mutex, so closing the channel here is safe and lets readers
	// distinguish shutdown from a quiet session.
	close(s.updates)
	s.mu.Unlock()

	s.destroyEngine(old)
}

// run is the initialization goroutine for one generation.
func (s *Session) run(gen int) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.setStateLocked(StateProbing)
	ctx := s.ctx
	s.notifyLocked()
	s.mu.Unlock()

	factory, err := s.cfg.Probe.Wait(ctx, s.cfg.EngineName)
	if err != nil {
		s.fail(gen, fmt.Sprintf("playback engine failed to load: %v", err))
		return
	}

	s.initialize(gen, factory)
}

func (s *Session) initialize(gen int, factory engine.Factory) {
	// Tear down any previous instance first; two live engines must never
	// coexist. Destruction failures are logged, not fatal.
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	old := s.eng
	s.eng = nil
	s.mu.Unlock()
	s.destroyEngine(old)

	eng, err := factory.New(s.cfg.Settings)
	if err != nil {
		s.fail(gen, fmt.Sprintf("failed to initialize playback engine: %v", err))
		return
	}

	eng.Subscribe(s.handlers(gen))

	data, err := DecodeDataURI(s.cfg.DataURI)
	if err != nil {
		s.destroyEngine(eng)
		s.fail(gen, fmt.Sprintf("failed to decode tab data: %v", err))
		return
	}

	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		s.destroyEngine(eng)
		return
	}
	s.eng = eng
	s.setStateLocked(StateInitializing)
	s.armWatchdogLocked(gen)
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.safeCall("load score", func() error { return eng.Load(data) }); err != nil {
		s.fail(gen, fmt.Sprintf("failed to load score: %v", err))
	}
}

// handlers wires every engine event to the session, guarded by generation.
func (s *Session) handlers(gen int) engine.Handlers {
	return engine.Handlers{
		ScoreLoaded: func(score *engine.Score) { s.onScoreLoaded(gen, score) },
		Error: func(le *engine.LoadError) {
			msg := le.Message
			if le.Inner != "" {
				msg = msg + ": " + le.Inner
			}
			s.fail(gen, msg)
		},
		PlayerStateChanged: func(ps engine.PlayerState) { s.onPlayerState(gen, ps) },
		PlayerReady:        func() { s.onPlayerReady(gen) },
		RenderStarted:      func() { s.onRender(gen, true) },
		RenderFinished:     func() { s.onRender(gen, false) },
		PositionChanged:    func(p engine.Position) { s.onPosition(gen, p) },
		PlayerFinished:     func() { s.onFinished(gen) },
		BeatClicked:        func(b engine.Beat, modified bool) { s.handleBeatClick(gen, b, modified) },
		Metronome:          func(ev engine.MetronomeEvent) { s.onMetronome(gen, ev) },
	}
}

func (s *Session) onScoreLoaded(gen int, score *engine.Score) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}

	s.clearWatchdogLocked()
	s.loading = false
	s.errMsg = ""

	tempo := score.Tempo
	if tempo <= 0 {
		tempo = defaultTempo
	}
	s.originalTempo = tempo
	s.speed = 1.0
	s.bpm = int(math.Round(tempo))

	s.loopEnabled = false
	s.loopRange = nil
	s.pendingLoop = nil
	s.soloSnapshot = nil

	names := make([]string, len(score.Tracks))
	for i, t := range score.Tracks {
		names[i] = t.Name
	}
	s.renderedTrack = trackmatch.Find(names, s.cfg.PreferredInstrument)
	if s.renderedTrack < 0 {
		s.renderedTrack = 0
	}

	s.setStateLocked(StateReady)

	eng := s.eng
	idx := s.renderedTrack
	s.notifyLocked()
	s.mu.Unlock()

	if eng != nil {
		s.safeCall("render track", func() error { eng.RenderTracks(idx); return nil })
	}
}

func (s *Session) onPlayerState(gen int, ps engine.PlayerState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}
	s.playing = ps == engine.PlayerPlaying
	s.notifyLocked()
}

func (s *Session) onPlayerReady(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}
	s.log.Debug("player ready")
	s.notifyLocked()
}

func (s *Session) onRender(gen int, started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}
	s.rendering = started
	s.notifyLocked()
}

// onPosition mirrors engine position reports into display state, at most one
// per throttle window. Excess reports are dropped, not queued.
func (s *Session) onPosition(gen int, p engine.Position) {
	if !s.posLimiter.Allow() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}
	s.position = p
	s.notifyLocked()
}

func (s *Session) onFinished(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}
	s.playing = false
	s.position.CurrentMS = 0
	s.notifyLocked()
}

// onMetronome lights the beat pulse and arms a self-clearing timer. Every
// timer lives in a registry so teardown can mass-cancel the stragglers.
func (s *Session) onMetronome(gen int, ev engine.MetronomeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}

	s.pulse = ev.Beat
	s.notifyLocked()

	delay := time.Duration(pulseFraction*ev.DurationMS) * time.Millisecond
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.pulseTimers, t)
		if s.closed || gen != s.generation {
			return
		}
		s.pulse = 0
		s.notifyLocked()
	})
	s.pulseTimers[t] = struct{}{}
}

// fail transitions to StateError with a user-facing message. Idempotent per
// generation; always clears the watchdog and the loading flag.
func (s *Session) fail(gen int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation || s.state == StateError {
		return
	}

	s.clearWatchdogLocked()
	s.loading = false
	s.errMsg = msg + ". " + troubleshooting
	s.setStateLocked(StateError)
	s.notifyLocked()
}

func (s *Session) armWatchdogLocked(gen int) {
	s.clearWatchdogLocked()
	s.watchdog = time.AfterFunc(s.cfg.Watchdog, func() {
		s.fail(gen, fmt.Sprintf("score loading timed out after %s", s.cfg.Watchdog))
	})
}

func (s *Session) clearWatchdogLocked() {
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
}

func (s *Session) setStateLocked(next State) {
	prev, ok := s.stateTr.Observe(next)
	if ok && prev != next {
		s.log.Debug("session state changed", "from", prev, "to", next)
	}
	s.state = next
}

func (s *Session) notifyLocked() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// destroyEngine tears down an engine instance defensively: failures and
// panics are logged and swallowed so teardown always completes.
func (s *Session) destroyEngine(eng engine.Engine) {
	if eng == nil {
		return
	}
	if err := s.safeCall("destroy engine", eng.Destroy); err != nil {
		s.log.Warn("engine destroy failed", "err", err)
	}
}

// safeCall shields the session from engine calls that error or panic.
func (s *Session) safeCall(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", op, r)
			s.log.Error("engine call panicked", "op", op, "panic", r)
		}
	}()
	if err = fn(); err != nil {
		s.log.Warn("engine call failed", "op", op, "err", err)
	}
	return err
}

// activate unlocks audio output; swapped in tests.
func (s *Session) activate() {
	if s.cfg.activate != nil {
		s.cfg.activate()
		return
	}
	activateAudio()
}

// DecodeDataURI extracts the raw bytes from a Base64 data URI. A missing
// base64 marker or an undecodable payload is a load error, not a crash.
func DecodeDataURI(uri string) ([]byte, error) {
	const marker = "base64,"

	i := strings.Index(uri, marker)
	if i < 0 {
		return nil, fmt.Errorf("%w: missing base64 marker", shared.ErrInvalidDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(uri[i+len(marker):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidDataURI, err)
	}

	return data, nil
}

// EncodeDataURI renders raw tab bytes as the Base64 data URI the session
// consumes. The catalog side uses it when handing files to the player.
func EncodeDataURI(data []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
}
