package ui

import (
	"github.com/desertthunder/bandassist/internal/models"
	"github.com/desertthunder/bandassist/internal/player"
)

// songsLoadedMsg delivers the catalog listing.
type songsLoadedMsg struct {
	songs []*models.Song
	err   error
}

// sessionStartedMsg delivers a freshly started player session.
type sessionStartedMsg struct {
	session *player.Session
	err     error
}

// sessionUpdateMsg signals that the session's display state changed.
type sessionUpdateMsg struct{}

// sessionClosedMsg signals that the session's update channel drained shut.
type sessionClosedMsg struct{}
