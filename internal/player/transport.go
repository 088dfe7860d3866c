package player

import (
	"math"
	"strconv"
	"strings"

	"github.com/desertthunder/bandassist/internal/audioctx"
	"github.com/desertthunder/bandassist/internal/engine"
)

// activateAudio opens the shared audio output on first use and resumes it.
// Best effort: playback control must not depend on the audio backend being
// present, so a headless host just plays silently.
func activateAudio() {
	if _, err := audioctx.Get(); err != nil {
		return
	}
	audioctx.Activate()
}

// TogglePlayPause flips playback. The audio output is activated first so the
// toggle doubles as the user gesture that unlocks sound.
func (s *Session) TogglePlayPause() {
	s.mu.Lock()
	eng := s.readyEngineLocked()
	s.mu.Unlock()
	if eng == nil {
		return
	}

	s.activate()
	s.safeCall("play/pause", func() error { eng.PlayPause(); return nil })
}

// Stop halts playback and rewinds. Display state is forced immediately
// rather than waiting for the engine's stop events to arrive.
func (s *Session) Stop() {
	s.mu.Lock()
	eng := s.readyEngineLocked()
	if eng == nil {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.position.CurrentMS = 0
	s.notifyLocked()
	s.mu.Unlock()

	s.safeCall("stop", func() error { eng.Stop(); return nil })
}

// SetDesiredPlaying reconciles actual playback toward want. It only ever
// issues a toggle when the two disagree, so repeated calls are safe.
func (s *Session) SetDesiredPlaying(want bool) {
	s.mu.Lock()
	eng := s.readyEngineLocked()
	current := s.playing
	s.mu.Unlock()
	if eng == nil || current == want {
		return
	}

	if want {
		s.activate()
	}
	s.safeCall("play/pause", func() error { eng.PlayPause(); return nil })
}

// SeekFraction seeks to a fraction of the score's duration. Fractions
// outside [0,1] and seeks while the duration is unknown or non-finite are
// ignored.
func (s *Session) SeekFraction(f float64) {
	s.mu.Lock()
	eng := s.readyEngineLocked()
	end := s.position.EndMS
	s.mu.Unlock()
	if eng == nil || end <= 0 || math.IsNaN(end) || math.IsInf(end, 0) || math.IsNaN(f) || f < 0 || f > 1 {
		return
	}

	s.safeCall("seek", func() error { return eng.Seek(f * end) })
}

// SetSpeed pushes a playback speed multiplier, clamped to the supported
// range, and rederives the displayed BPM from it.
func (s *Session) SetSpeed(multiplier float64) {
	s.mu.Lock()
	eng := s.readyEngineLocked()
	if eng == nil {
		s.mu.Unlock()
		return
	}
	m := clampSpeed(multiplier)
	s.speed = m
	s.bpm = int(math.Round(s.originalTempo * m))
	s.notifyLocked()
	s.mu.Unlock()

	s.safeCall("set speed", func() error { eng.SetSpeed(m); return nil })
}

// SetBPM sets the tempo as absolute beats per minute, converted to a speed
// multiplier against the score's original tempo.
func (s *Session) SetBPM(bpm int) {
	s.mu.Lock()
	orig := s.originalTempo
	s.mu.Unlock()
	if orig <= 0 {
		return
	}
	s.SetSpeed(float64(bpm) / orig)
}

// ResetTempo restores the score's native tempo.
func (s *Session) ResetTempo() {
	s.SetSpeed(1.0)
}

// CommitBPMEntry applies a typed-in BPM value. Unparsable input is silently
// discarded; parsable input is clamped to the supported range around the
// original tempo. Reports whether a value was applied.
func (s *Session) CommitBPMEntry(text string) bool {
	text = strings.TrimSpace(text)
	bpm, err := strconv.Atoi(text)
	if err != nil {
		return false
	}

	s.mu.Lock()
	orig := s.originalTempo
	s.mu.Unlock()
	if orig <= 0 {
		return false
	}

	lo := int(math.Round(orig * MinSpeed))
	hi := int(math.Round(orig * MaxSpeed))
	if bpm < lo {
		bpm = lo
	}
	if bpm > hi {
		bpm = hi
	}

	s.SetBPM(bpm)
	return true
}

// ToggleLoop flips loop mode. The loop range, if any, survives toggling so
// re-enabling resumes the same section.
func (s *Session) ToggleLoop() {
	s.mu.Lock()
	eng := s.readyEngineLocked()
	if eng == nil {
		s.mu.Unlock()
		return
	}
	s.loopEnabled = !s.loopEnabled
	enabled := s.loopEnabled
	s.notifyLocked()
	s.mu.Unlock()

	s.safeCall("set loop enabled", func() error { eng.SetLoopEnabled(enabled); return nil })
}

// HandleBeatClick is the public entry for beat selection; the engine's own
// beat-click events route through the same logic.
func (s *Session) HandleBeatClick(beat engine.Beat, modified bool) {
	s.handleBeatClick(s.currentGeneration(), beat, modified)
}

// handleBeatClick implements two-click loop selection: a modified click arms
// a pending boundary, a second one closes the range. The range spans from
// the earlier beat's start to the later beat's end regardless of click
// order. An unmodified click changes nothing, and selection never touches
// loop mode; that stays with [Session.ToggleLoop].
func (s *Session) handleBeatClick(gen int, beat engine.Beat, modified bool) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	eng := s.readyEngineLocked()
	if eng == nil || !modified {
		s.mu.Unlock()
		return
	}

	if s.pendingLoop == nil {
		pending := beat
		s.pendingLoop = &pending
		s.notifyLocked()
		s.mu.Unlock()
		return
	}

	first, second := *s.pendingLoop, beat
	r := &engine.LoopRange{
		StartTick: math.Min(first.StartMS, second.StartMS),
		EndTick:   math.Max(first.StartMS+first.DurationMS, second.StartMS+second.DurationMS),
	}
	s.pendingLoop = nil
	s.loopRange = r
	s.notifyLocked()
	s.mu.Unlock()

	s.safeCall("set loop range", func() error { eng.SetLoopRange(r); return nil })
}

// ClearLoopRange drops the selected section and any pending boundary. Loop
// mode itself stays as the user set it.
func (s *Session) ClearLoopRange() {
	s.mu.Lock()
	eng := s.readyEngineLocked()
	if eng == nil {
		s.mu.Unlock()
		return
	}
	s.loopRange = nil
	s.pendingLoop = nil
	s.notifyLocked()
	s.mu.Unlock()

	s.safeCall("clear loop range", func() error { eng.SetLoopRange(nil); return nil })
}

// readyEngineLocked returns the engine when the session can accept transport
// commands, else nil. Callers must hold s.mu.
func (s *Session) readyEngineLocked() engine.Engine {
	if s.closed || s.state != StateReady {
		return nil
	}
	return s.eng
}

func (s *Session) currentGeneration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func clampSpeed(m float64) float64 {
	if math.IsNaN(m) || m < MinSpeed {
		return MinSpeed
	}
	if m > MaxSpeed {
		return MaxSpeed
	}
	return m
}
