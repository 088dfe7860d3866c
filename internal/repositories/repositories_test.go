package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/bandassist/internal/models"
	"github.com/desertthunder/bandassist/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestSongRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong(0, "Everlong", "Foo Fighters", "./tabs/everlong.json", "Lead Guitar")

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		if song.ID() == "" {
			t.Error("song ID should be set after creation")
		}
	})

	t.Run("Create Invalid", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong(0, "", "", "", "")

		if err := repo.Create(song); err == nil {
			t.Error("expected validation error for empty song")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong(0, "Everlong", "Foo Fighters", "./tabs/everlong.json", "Lead Guitar")

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		got, err := repo.Get(song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		if got.Title() != "Everlong" {
			t.Errorf("expected title Everlong, got %s", got.Title())
		}
		if got.Instrument() != "Lead Guitar" {
			t.Errorf("expected instrument Lead Guitar, got %s", got.Instrument())
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("GetByTitle", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong(0, "Everlong", "Foo Fighters", "./tabs/everlong.json", "")

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		got, err := repo.GetByTitle("everlong")
		if err != nil {
			t.Fatalf("failed to get song by title: %v", err)
		}
		if got.ID() != song.ID() {
			t.Errorf("expected song %s, got %s", song.ID(), got.ID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong(0, "Everlong", "Foo Fighters", "./tabs/everlong.json", "Lead Guitar")

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		song.SetInstrument("Bass")
		if err := repo.Update(song); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		got, err := repo.Get(song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if got.Instrument() != "Bass" {
			t.Errorf("expected updated instrument Bass, got %s", got.Instrument())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong(0, "Everlong", "Foo Fighters", "./tabs/everlong.json", "")

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		if err := repo.Delete(song.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		if _, err := repo.Get(song.ID()); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound after delete, got %v", err)
		}

		if err := repo.Delete(song.ID()); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound on double delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		for _, spec := range []struct{ title, artist, instrument string }{
			{"Everlong", "Foo Fighters", "Lead Guitar"},
			{"Times Like These", "Foo Fighters", "Rhythm Guitar"},
			{"Hysteria", "Muse", "Bass"},
		} {
			song := models.NewSong(0, spec.title, spec.artist, "./tabs/x.json", spec.instrument)
			if err := repo.Create(song); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(all))
		}

		// Sequence ordering
		if all[0].Title() != "Everlong" || all[2].Title() != "Hysteria" {
			t.Error("songs should be ordered by sequence")
		}

		byArtist, err := repo.List(map[string]any{"artist": "foo fighters"})
		if err != nil {
			t.Fatalf("failed to list by artist: %v", err)
		}
		if len(byArtist) != 2 {
			t.Errorf("expected 2 Foo Fighters songs, got %d", len(byArtist))
		}
	})

	t.Run("Sequence Increments", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		first, err := NextSequence(db, "songs")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		second, err := NextSequence(db, "songs")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}

		if second != first+1 {
			t.Errorf("expected sequence to increment, got %d then %d", first, second)
		}
	})
}
