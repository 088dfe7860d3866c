package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/bandassist/internal/models"
)

var _ list.Item = songItem{}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song *models.Song
}

func (i songItem) FilterValue() string { return i.song.Title() }
func (i songItem) Title() string       { return i.song.Title() }
func (i songItem) Description() string {
	desc := i.song.Artist()
	if desc == "" {
		desc = "unknown artist"
	}
	if i.song.Instrument() != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Instrument())
	}
	return desc
}
