package practice

import (
	"testing"
	"time"

	"github.com/desertthunder/bandassist/internal/engine"
)

const testManifest = `{
	"title": "Soundcheck",
	"tempo": 120,
	"duration_ms": 4000,
	"beats_per_bar": 4,
	"tracks": [{"name": "Lead Guitar"}, {"name": "Bass"}, {"name": "Drums"}]
}`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	e, err := factory{}.New(engine.Settings{})
	if err != nil {
		t.Fatalf("failed to construct engine: %v", err)
	}
	t.Cleanup(func() { e.Destroy() })
	return e.(*Engine)
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

func TestParseManifest(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		m, err := ParseManifest([]byte(testManifest))
		if err != nil {
			t.Fatalf("failed to parse manifest: %v", err)
		}
		if m.Title != "Soundcheck" {
			t.Errorf("expected title Soundcheck, got %s", m.Title)
		}
		if len(m.Tracks) != 3 {
			t.Errorf("expected 3 tracks, got %d", len(m.Tracks))
		}
	})

	t.Run("Defaults Beats Per Bar", func(t *testing.T) {
		m, err := ParseManifest([]byte(`{"tempo": 100, "duration_ms": 1000, "tracks": [{"name": "Bass"}]}`))
		if err != nil {
			t.Fatalf("failed to parse manifest: %v", err)
		}
		if m.BeatsPerBar != 4 {
			t.Errorf("expected default 4 beats per bar, got %d", m.BeatsPerBar)
		}
	})

	t.Run("Rejects Garbage", func(t *testing.T) {
		if _, err := ParseManifest([]byte("not json")); err == nil {
			t.Error("expected error for malformed manifest")
		}
	})

	t.Run("Rejects No Tracks", func(t *testing.T) {
		if _, err := ParseManifest([]byte(`{"tempo": 100, "duration_ms": 1000, "tracks": []}`)); err == nil {
			t.Error("expected error for trackless manifest")
		}
	})

	t.Run("Rejects No Duration", func(t *testing.T) {
		if _, err := ParseManifest([]byte(`{"tempo": 100, "tracks": [{"name": "Bass"}]}`)); err == nil {
			t.Error("expected error for durationless manifest")
		}
	})
}

func TestEngine(t *testing.T) {
	t.Run("Load Publishes Score", func(t *testing.T) {
		e := newTestEngine(t)

		loaded := make(chan *engine.Score, 1)
		ready := make(chan struct{}, 1)
		e.Subscribe(engine.Handlers{
			ScoreLoaded: func(s *engine.Score) { loaded <- s },
			PlayerReady: func() { ready <- struct{}{} },
		})

		if err := e.Load([]byte(testManifest)); err != nil {
			t.Fatalf("failed to load: %v", err)
		}

		score := waitFor(t, loaded, "score loaded event")
		if score.Tempo != 120 {
			t.Errorf("expected tempo 120, got %v", score.Tempo)
		}
		if len(score.Tracks) != 3 {
			t.Errorf("expected 3 tracks, got %d", len(score.Tracks))
		}
		waitFor(t, ready, "player ready event")

		if e.Score() != score {
			t.Error("Score() should return the engine-owned score")
		}
	})

	t.Run("Load Failure Reports Error Event", func(t *testing.T) {
		e := newTestEngine(t)

		errs := make(chan *engine.LoadError, 1)
		e.Subscribe(engine.Handlers{
			Error: func(le *engine.LoadError) { errs <- le },
		})

		if err := e.Load([]byte("garbage")); err == nil {
			t.Fatal("expected load error")
		}

		le := waitFor(t, errs, "load error event")
		if le.Inner == "" {
			t.Error("expected inner detail on load error")
		}
	})

	t.Run("PlayPause Reports State", func(t *testing.T) {
		e := newTestEngine(t)

		states := make(chan engine.PlayerState, 8)
		e.Subscribe(engine.Handlers{
			PlayerStateChanged: func(s engine.PlayerState) { states <- s },
		})

		if err := e.Load([]byte(testManifest)); err != nil {
			t.Fatalf("failed to load: %v", err)
		}

		e.PlayPause()
		if s := waitFor(t, states, "playing state"); s != engine.PlayerPlaying {
			t.Errorf("expected playing, got %v", s)
		}
		if !e.Playing() {
			t.Error("engine should report playing")
		}

		e.PlayPause()
		if s := waitFor(t, states, "paused state"); s != engine.PlayerPaused {
			t.Errorf("expected paused, got %v", s)
		}
	})

	t.Run("Position And Metronome While Playing", func(t *testing.T) {
		e := newTestEngine(t)

		positions := make(chan engine.Position, 64)
		beats := make(chan engine.MetronomeEvent, 64)
		e.Subscribe(engine.Handlers{
			PositionChanged: func(p engine.Position) { positions <- p },
			Metronome:       func(m engine.MetronomeEvent) { beats <- m },
		})

		if err := e.Load([]byte(testManifest)); err != nil {
			t.Fatalf("failed to load: %v", err)
		}

		e.PlayPause()

		pos := waitFor(t, positions, "position update")
		if pos.EndMS != 4000 {
			t.Errorf("expected end 4000ms, got %v", pos.EndMS)
		}

		// 120 BPM means a beat every 500ms
		beat := waitFor(t, beats, "metronome event")
		if beat.Beat < 1 || beat.Beat > 4 {
			t.Errorf("expected beat in 1..4, got %d", beat.Beat)
		}
		if beat.DurationMS != 500 {
			t.Errorf("expected beat duration 500ms, got %v", beat.DurationMS)
		}

		e.Stop()
	})

	t.Run("Seek Bounds", func(t *testing.T) {
		e := newTestEngine(t)
		if err := e.Load([]byte(testManifest)); err != nil {
			t.Fatalf("failed to load: %v", err)
		}

		if err := e.Seek(2000); err != nil {
			t.Errorf("in-range seek should succeed: %v", err)
		}
		if err := e.Seek(-1); err == nil {
			t.Error("negative seek should fail")
		}
		if err := e.Seek(5000); err == nil {
			t.Error("past-end seek should fail")
		}
	})

	t.Run("Mixer Flags Mutate Engine Tracks", func(t *testing.T) {
		e := newTestEngine(t)
		if err := e.Load([]byte(testManifest)); err != nil {
			t.Fatalf("failed to load: %v", err)
		}

		e.ChangeTrackMute([]int{0, 2}, true)
		e.ChangeTrackSolo([]int{1}, true)

		score := e.Score()
		if !score.Tracks[0].Playback.Mute || !score.Tracks[2].Playback.Mute {
			t.Error("expected tracks 0 and 2 muted")
		}
		if !score.Tracks[1].Playback.Solo {
			t.Error("expected track 1 soloed")
		}

		// Out-of-range indices are ignored
		e.ChangeTrackMute([]int{99}, true)
	})

	t.Run("Destroy Idempotent", func(t *testing.T) {
		e := newTestEngine(t)
		if err := e.Load([]byte(testManifest)); err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		e.PlayPause()

		if err := e.Destroy(); err != nil {
			t.Fatalf("destroy failed: %v", err)
		}
		if err := e.Destroy(); err != nil {
			t.Fatalf("second destroy should be a no-op: %v", err)
		}

		if err := e.Load([]byte(testManifest)); err == nil {
			t.Error("load after destroy should fail")
		}
	})
}
