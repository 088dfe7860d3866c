package player

import (
	"testing"
)

func TestMixer(t *testing.T) {
	t.Run("Render Track", func(t *testing.T) {
		s, mock := newReadySession(t)

		s.RenderTrack(2)
		if snap := s.Snapshot(); snap.RenderedTrack != 2 {
			t.Errorf("expected rendered track 2, got %d", snap.RenderedTrack)
		}
		if last := mock.Rendered[len(mock.Rendered)-1]; len(last) != 1 || last[0] != 2 {
			t.Errorf("expected render request for track 2, got %v", last)
		}

		s.RenderTrack(99)
		if snap := s.Snapshot(); snap.RenderedTrack != 2 {
			t.Errorf("expected out-of-range index ignored, got %d", snap.RenderedTrack)
		}
	})

	t.Run("Toggle Mute", func(t *testing.T) {
		s, mock := newReadySession(t)

		s.ToggleMute(0)
		if !mock.ScoreV.Tracks[0].Playback.Mute {
			t.Error("expected engine-owned track 0 muted")
		}
		if snap := s.Snapshot(); !snap.Tracks[0].Mute {
			t.Error("expected snapshot to reflect mute")
		}
		if len(mock.MuteCalls) != 1 || !mock.MuteCalls[0].Value || mock.MuteCalls[0].Indices[0] != 0 {
			t.Errorf("expected mute routine call for track 0, got %v", mock.MuteCalls)
		}

		s.ToggleMute(0)
		if mock.ScoreV.Tracks[0].Playback.Mute {
			t.Error("expected track 0 unmuted on second toggle")
		}
	})

	t.Run("Toggle Mute Out Of Range", func(t *testing.T) {
		s, mock := newReadySession(t)
		s.ToggleMute(99)
		if len(mock.MuteCalls) != 0 {
			t.Errorf("expected no mixer calls, got %v", mock.MuteCalls)
		}
	})

	t.Run("Solo Snapshot And Restore", func(t *testing.T) {
		s, mock := newReadySession(t)

		// track 2 muted by hand before any solo
		s.ToggleMute(2)

		s.ToggleSolo(0)
		if !mock.ScoreV.Tracks[0].Playback.Solo {
			t.Error("expected track 0 soloed")
		}
		if len(mock.SoloCalls) != 1 || !mock.SoloCalls[0].Value {
			t.Errorf("expected solo routine call, got %v", mock.SoloCalls)
		}

		// mute track 1 while the solo is engaged
		s.ToggleMute(1)

		s.ToggleSolo(0)
		if mock.ScoreV.Tracks[0].Playback.Solo {
			t.Error("expected solo released")
		}

		// restore only touches track 1, whose mute changed during the solo;
		// track 2's pre-solo mute is untouched
		var restores []MixerCallView
		for _, c := range mock.MuteCalls {
			restores = append(restores, MixerCallView{c.Indices[0], c.Value})
		}
		want := []MixerCallView{{2, true}, {1, true}, {1, false}}
		if len(restores) != len(want) {
			t.Fatalf("expected mute calls %v, got %v", want, restores)
		}
		for i := range want {
			if restores[i] != want[i] {
				t.Errorf("mute call %d: expected %v, got %v", i, want[i], restores[i])
			}
		}
		if mock.ScoreV.Tracks[1].Playback.Mute {
			t.Error("expected track 1 mute restored to pre-solo state")
		}
		if !mock.ScoreV.Tracks[2].Playback.Mute {
			t.Error("expected track 2 to stay muted through the solo cycle")
		}
	})

	t.Run("Releasing One Of Two Solos Keeps Snapshot", func(t *testing.T) {
		s, mock := newReadySession(t)

		s.ToggleSolo(0)
		s.ToggleSolo(1)
		s.ToggleSolo(0)

		if len(mock.MuteCalls) != 0 {
			t.Errorf("expected no restore while a solo remains, got %v", mock.MuteCalls)
		}
		if !mock.ScoreV.Tracks[1].Playback.Solo {
			t.Error("expected track 1 still soloed")
		}

		s.ToggleSolo(1)
		if mock.ScoreV.Tracks[0].Playback.Solo || mock.ScoreV.Tracks[1].Playback.Solo {
			t.Error("expected all solos released")
		}
	})
}

// MixerCallView flattens a recorded single-index mixer call for comparison.
type MixerCallView struct {
	Index int
	Value bool
}
