package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/desertthunder/bandassist/internal/models"
)

func catalogFixture() []*models.Song {
	one := models.NewSong(1, "Everlong", "Foo Fighters", "./tabs/everlong.json", "Lead Guitar")
	one.SetID("song1")
	two := models.NewSong(2, "Interlude", "", "./tabs/interlude.json", "")
	two.SetID("song2")
	return []*models.Song{one, two}
}

func TestFormatter(t *testing.T) {
	t.Run("SongsToCSV", func(t *testing.T) {
		data, err := SongsToCSV(catalogFixture())
		if err != nil {
			t.Fatalf("SongsToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Sequence,Title,Artist,Instrument,TabPath") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "song1,1,Everlong,Foo Fighters,Lead Guitar,./tabs/everlong.json") {
			t.Errorf("CSV missing song row, got: %s", output)
		}
	})

	t.Run("SongsToJSON", func(t *testing.T) {
		data, err := SongsToJSON(catalogFixture())
		if err != nil {
			t.Fatalf("SongsToJSON failed: %v", err)
		}

		var views []SongView
		if err := json.Unmarshal(data, &views); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(views) != 2 || views[0].Title != "Everlong" {
			t.Errorf("unexpected JSON content: %+v", views)
		}
	})

	t.Run("SongsToMarkdown", func(t *testing.T) {
		data, err := SongsToMarkdown("Practice Set", catalogFixture())
		if err != nil {
			t.Fatalf("SongsToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Practice Set") {
			t.Errorf("markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "1. Foo Fighters - Everlong [Lead Guitar]") {
			t.Errorf("markdown missing numbered entry, got: %s", output)
		}
		if !strings.Contains(output, "2. Interlude\n") {
			t.Errorf("artistless song should render bare title, got: %s", output)
		}
	})

	t.Run("SongsToText", func(t *testing.T) {
		data, err := SongsToText(catalogFixture())
		if err != nil {
			t.Fatalf("SongsToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Songs: 2") {
			t.Errorf("text missing count, got: %s", output)
		}
		if !strings.Contains(output, "1. Foo Fighters - Everlong") {
			t.Errorf("text missing entry, got: %s", output)
		}
	})

	t.Run("Render Dispatch", func(t *testing.T) {
		songs := catalogFixture()

		for _, tc := range []struct {
			format string
			want   string
		}{
			{"csv", "ID,Sequence"},
			{"markdown", "# Song Catalog"},
			{"txt", "Songs: 2"},
			{"json", "\"title\""},
			{"bogus", "\"title\""},
		} {
			data, err := Render(tc.format, songs)
			if err != nil {
				t.Fatalf("Render(%s) failed: %v", tc.format, err)
			}
			if !strings.Contains(string(data), tc.want) {
				t.Errorf("Render(%s) missing %q, got: %s", tc.format, tc.want, data)
			}
		}
	})

	t.Run("Empty Catalog", func(t *testing.T) {
		data, err := SongsToJSON(nil)
		if err != nil {
			t.Fatalf("SongsToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected empty array, got: %s", data)
		}
	})
}
