package models

import (
	"fmt"
	"strings"
	"time"
)

// Song is a catalog entry pointing at a tab manifest on disk.
//
// Instrument is the track the band member usually plays on this song; the
// player uses it to auto-select a track when the score loads.
type Song struct {
	id         string
	sequence   int
	title      string
	artist     string
	tabPath    string
	instrument string
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewSong creates a Song with the given metadata. The ID is assigned by the
// repository on Create.
func NewSong(sequence int, title, artist, tabPath, instrument string) *Song {
	now := time.Now().UTC()
	return &Song{
		sequence:   sequence,
		title:      strings.TrimSpace(title),
		artist:     strings.TrimSpace(artist),
		tabPath:    strings.TrimSpace(tabPath),
		instrument: strings.TrimSpace(instrument),
		createdAt:  now,
		updatedAt:  now,
	}
}

// RestoreSong reconstructs a Song from persisted columns. Used by repositories when scanning rows.
func RestoreSong(id string, sequence int, title, artist, tabPath, instrument string, createdAt, updatedAt time.Time, deletedAt *time.Time) *Song {
	return &Song{
		id:         id,
		sequence:   sequence,
		title:      title,
		artist:     artist,
		tabPath:    tabPath,
		instrument: instrument,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
		deletedAt:  deletedAt,
	}
}

func (s *Song) ID() string           { return s.id }
func (s *Song) Sequence() int        { return s.sequence }
func (s *Song) Title() string        { return s.title }
func (s *Song) Artist() string       { return s.artist }
func (s *Song) TabPath() string      { return s.tabPath }
func (s *Song) Instrument() string   { return s.instrument }
func (s *Song) CreatedAt() time.Time { return s.createdAt }
func (s *Song) UpdatedAt() time.Time { return s.updatedAt }
func (s *Song) DeletedAt() *time.Time { return s.deletedAt }

// SetID assigns the unique identifier. Called once by the repository on Create.
func (s *Song) SetID(id string) { s.id = id }

// SetInstrument updates the preferred instrument and bumps the updated timestamp.
func (s *Song) SetInstrument(instrument string) {
	s.instrument = strings.TrimSpace(instrument)
	s.updatedAt = time.Now().UTC()
}

// SetTabPath updates the tab manifest path and bumps the updated timestamp.
func (s *Song) SetTabPath(path string) {
	s.tabPath = strings.TrimSpace(path)
	s.updatedAt = time.Now().UTC()
}

// Touch bumps the updated timestamp.
func (s *Song) Touch() { s.updatedAt = time.Now().UTC() }

// Validate checks that required fields are present.
func (s *Song) Validate() error {
	if s.title == "" {
		return fmt.Errorf("song title is required")
	}
	if s.tabPath == "" {
		return fmt.Errorf("song tab path is required")
	}
	return nil
}

var _ Model = (*Song)(nil)
