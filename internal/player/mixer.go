package player

import "github.com/desertthunder/bandassist/internal/engine"

// RenderTrack switches notation rendering to the track at idx. Out-of-range
// indices are ignored.
func (s *Session) RenderTrack(idx int) {
	s.mu.Lock()
	eng := s.readyEngineLocked()
	if eng == nil {
		s.mu.Unlock()
		return
	}
	score := eng.Score()
	if score == nil || idx < 0 || idx >= len(score.Tracks) {
		s.mu.Unlock()
		return
	}
	s.renderedTrack = idx
	s.notifyLocked()
	s.mu.Unlock()

	s.safeCall("render track", func() error { eng.RenderTracks(idx); return nil })
}

// ToggleMute flips one track's mute flag. The flag is re-read from the
// engine-owned track and written back there, then the engine's mute routine
// runs for its side effects; the session never caches mixer flags.
func (s *Session) ToggleMute(idx int) {
	s.mu.Lock()
	eng := s.readyEngineLocked()
	track := s.trackAtLocked(eng, idx)
	if track == nil {
		s.mu.Unlock()
		return
	}

	next := !track.Playback.Mute
	track.Playback.Mute = next
	s.notifyLocked()
	s.mu.Unlock()

	s.safeCall("change mute", func() error { eng.ChangeTrackMute([]int{idx}, next); return nil })
}

// ToggleSolo flips one track's solo flag. Engaging the first solo snapshots
// every track's mixer state; releasing the last solo restores that snapshot,
// issuing engine mute calls only for tracks whose mute actually differs.
func (s *Session) ToggleSolo(idx int) {
	s.mu.Lock()
	eng := s.readyEngineLocked()
	track := s.trackAtLocked(eng, idx)
	if track == nil {
		s.mu.Unlock()
		return
	}
	score := eng.Score()

	wasAnySolo := anySolo(score)
	next := !track.Playback.Solo

	if next && !wasAnySolo {
		s.soloSnapshot = make([]engine.PlaybackState, len(score.Tracks))
		for i, t := range score.Tracks {
			s.soloSnapshot[i] = t.Playback
		}
	}

	track.Playback.Solo = next
	s.notifyLocked()

	restore := s.soloSnapshot
	if !next && !anySolo(score) {
		s.soloSnapshot = nil
	} else {
		restore = nil
	}
	s.mu.Unlock()

	s.safeCall("change solo", func() error { eng.ChangeTrackSolo([]int{idx}, next); return nil })

	if restore == nil {
		return
	}
	for i, prev := range restore {
		if i >= len(score.Tracks) {
			break
		}
		cur := score.Tracks[i]
		if cur.Playback.Mute != prev.Mute {
			cur.Playback.Mute = prev.Mute
			idx, mute := i, prev.Mute
			s.safeCall("restore mute", func() error { eng.ChangeTrackMute([]int{idx}, mute); return nil })
		}
	}

	s.mu.Lock()
	s.notifyLocked()
	s.mu.Unlock()
}

// trackAtLocked resolves a track index against the engine-owned score.
// Callers must hold s.mu.
func (s *Session) trackAtLocked(eng engine.Engine, idx int) *engine.Track {
	if eng == nil {
		return nil
	}
	score := eng.Score()
	if score == nil || idx < 0 || idx >= len(score.Tracks) {
		return nil
	}
	return score.Tracks[idx]
}

func anySolo(score *engine.Score) bool {
	for _, t := range score.Tracks {
		if t.Playback.Solo {
			return true
		}
	}
	return false
}
