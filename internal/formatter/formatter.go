// package formatter renders song catalog listings to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/desertthunder/bandassist/internal/models"
	"github.com/desertthunder/bandassist/internal/shared"
)

// SongView is the serializable projection of a catalog song.
type SongView struct {
	ID         string `json:"id"`
	Sequence   int    `json:"sequence"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	TabPath    string `json:"tab_path"`
	Instrument string `json:"instrument,omitempty"`
}

// ViewOf projects a song into its serializable form.
func ViewOf(s *models.Song) SongView {
	return SongView{
		ID:         s.ID(),
		Sequence:   s.Sequence(),
		Title:      s.Title(),
		Artist:     s.Artist(),
		TabPath:    s.TabPath(),
		Instrument: s.Instrument(),
	}
}

// SongsToJSON renders songs as an indented JSON array.
func SongsToJSON(songs []*models.Song) ([]byte, error) {
	views := make([]SongView, len(songs))
	for i, s := range songs {
		views[i] = ViewOf(s)
	}
	return shared.MarshalJSON(views, true)
}

// SongsToCSV renders songs as CSV with columns: ID, Sequence, Title, Artist, Instrument, TabPath
func SongsToCSV(songs []*models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Sequence", "Title", "Artist", "Instrument", "TabPath"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{
			song.ID(),
			strconv.Itoa(song.Sequence()),
			song.Title(),
			song.Artist(),
			song.Instrument(),
			song.TabPath(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SongsToMarkdown renders songs as a Markdown setlist.
func SongsToMarkdown(title string, songs []*models.Song) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Song Catalog"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(songs)))

	for i, song := range songs {
		artistPart := ""
		if song.Artist() != "" {
			artistPart = fmt.Sprintf("%s - ", song.Artist())
		}
		instrumentPart := ""
		if song.Instrument() != "" {
			instrumentPart = fmt.Sprintf(" [%s]", song.Instrument())
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s%s\n", i+1, artistPart, song.Title(), instrumentPart))
	}

	return buf.Bytes(), nil
}

// SongsToText renders songs as a plain text listing.
func SongsToText(songs []*models.Song) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(songs)))
	for i, song := range songs {
		if song.Artist() != "" {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Artist(), song.Title()))
		} else {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, song.Title()))
		}
	}

	return buf.Bytes(), nil
}

// Render dispatches on format name; unknown formats fall back to JSON.
func Render(format string, songs []*models.Song) ([]byte, error) {
	switch format {
	case "csv":
		return SongsToCSV(songs)
	case "markdown", "md":
		return SongsToMarkdown("", songs)
	case "txt", "text":
		return SongsToText(songs)
	case "json":
		fallthrough
	default:
		return SongsToJSON(songs)
	}
}
