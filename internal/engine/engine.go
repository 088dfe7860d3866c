// Package engine defines the port through which the player drives an embedded
// tablature playback engine.
//
// The engine is an external collaborator: it owns score parsing, notation
// rendering and audio synthesis. The player only constructs instances through
// a registered [Factory], calls the narrow [Engine] surface, and reacts to the
// callbacks in [Handlers]. Engine-owned [Score] and [Track] objects are the
// single source of truth for mute/solo state; callers mutate and re-read them
// rather than keeping copies that could drift.
package engine

// PlayerState mirrors the engine's reported transport state.
type PlayerState int

const (
	PlayerStopped PlayerState = iota
	PlayerPlaying
	PlayerPaused
)

func (s PlayerState) String() string {
	switch s {
	case PlayerStopped:
		return "stopped"
	case PlayerPlaying:
		return "playing"
	case PlayerPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackState carries a track's mixer flags.
type PlaybackState struct {
	Mute bool
	Solo bool
}

// Track is one instrument voice within a Score. Identity is positional: the
// player refers to tracks by their index in [Score.Tracks] and never invents
// its own IDs.
type Track struct {
	Name     string
	Playback PlaybackState
}

// Score is the engine-owned parsed representation of a tab file.
// Tempo is the declared beats per minute; 0 means the file declared none.
type Score struct {
	Title  string
	Tracks []*Track
	Tempo  float64
}

// Position is the engine-reported playback time, in milliseconds.
type Position struct {
	CurrentMS float64
	EndMS     float64
}

// Beat is one rendered beat a user can click to define a loop boundary.
type Beat struct {
	StartMS    float64
	DurationMS float64
}

// LoopRange is a playback-time window the engine repeats while looping is
// enabled. The engine enforces the looping; the player only pushes the range.
type LoopRange struct {
	StartTick float64
	EndTick   float64
}

// MetronomeEvent is a metronome tick from the engine's synthesis event
// stream. Beat is the 1-based beat within the bar.
type MetronomeEvent struct {
	Beat       int
	DurationMS float64
}

// LoadError is an engine-reported score loading failure, with optional
// inner detail from the underlying parser.
type LoadError struct {
	Message string
	Inner   string
}

func (e *LoadError) Error() string {
	if e.Inner != "" {
		return e.Message + ": " + e.Inner
	}
	return e.Message
}

// Handlers is the event-subscription surface. Subscribing replaces any prior
// handlers wholesale; nil fields are simply not invoked. The engine filters
// its synthesis event stream down to metronome events once at subscription
// time, not per event.
type Handlers struct {
	ScoreLoaded        func(*Score)
	Error              func(*LoadError)
	PlayerStateChanged func(PlayerState)
	PlayerReady        func()
	RenderStarted      func()
	RenderFinished     func()
	PositionChanged    func(Position)
	PlayerFinished     func()
	BeatClicked        func(beat Beat, modified bool)
	Metronome          func(MetronomeEvent)
}

// Settings is the construction-time configuration surface, passed through
// verbatim to the engine; the player does not interpret or validate it.
type Settings struct {
	FontDirectory string
	UseWorkers    bool
	SoundBankURL  string
	ScrollElement string
	LayoutMode    string
}

// Engine is the narrow control surface of an embedded playback engine
// instance. Implementations must tolerate calls after Destroy by returning
// errors rather than panicking where a return value exists.
type Engine interface {
	// Load decodes raw tab file bytes into a Score, replacing any prior one.
	// Completion is reported through Handlers.ScoreLoaded or Handlers.Error.
	Load(data []byte) error

	// Subscribe installs the event handlers. Call before Load.
	Subscribe(h Handlers)

	PlayPause()
	Stop()
	Playing() bool

	// Seek moves the playback position to the given absolute time.
	Seek(ms float64) error

	// SetSpeed scales playback speed; 1.0 is the score's native tempo.
	SetSpeed(multiplier float64)

	SetLoopEnabled(enabled bool)
	// SetLoopRange pushes the loop window; nil clears it.
	SetLoopRange(r *LoopRange)

	// Score returns the engine-owned score, or nil before a load completes.
	Score() *Score

	// RenderTracks re-renders only the tracks at the given indices.
	RenderTracks(indices ...int)

	// ChangeTrackMute and ChangeTrackSolo are the engine's dedicated mixer
	// routines; they update internal bookkeeping beyond the track flags.
	ChangeTrackMute(indices []int, mute bool)
	ChangeTrackSolo(indices []int, solo bool)

	// Destroy tears the instance down. Safe to call more than once.
	Destroy() error
}

// Factory constructs engine instances. Implementations register themselves
// with [Register], typically from an init function.
type Factory interface {
	New(settings Settings) (Engine, error)
}
