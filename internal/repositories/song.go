package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/bandassist/internal/models"
	"github.com/desertthunder/bandassist/internal/shared"
)

// SongRepository implements models.Repository[*models.Song] for the local song catalog.
//
// Songs are soft deleted so a removed song's sequence number is never reused.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new [models.Song] into the database with generated ID and sequence
func (r *SongRepository) Create(song *models.Song) error {
	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	song.SetID(id)

	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO songs (id, sequence, title, artist, tab_path, instrument, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		song.Title(),
		song.Artist(),
		song.TabPath(),
		song.Instrument(),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := `
		SELECT id, sequence, title, artist, tab_path, instrument, created_at, updated_at, deleted_at
		FROM songs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByTitle retrieves the first song whose title matches (case-insensitive)
func (r *SongRepository) GetByTitle(title string) (*models.Song, error) {
	query := `
		SELECT id, sequence, title, artist, tab_path, instrument, created_at, updated_at, deleted_at
		FROM songs
		WHERE LOWER(title) = LOWER(?) AND deleted_at IS NULL
		ORDER BY sequence
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(query, title))
}

// Update modifies an existing song in the database
func (r *SongRepository) Update(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	song.Touch()

	query := `
		UPDATE songs
		SET title = ?, artist = ?, tab_path = ?, instrument = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		song.Title(),
		song.Artist(),
		song.TabPath(),
		song.Instrument(),
		song.UpdatedAt(),
		song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return shared.ErrSongNotFound
	}

	return nil
}

// Delete soft-deletes a song by setting deleted_at
func (r *SongRepository) Delete(id string) error {
	query := `UPDATE songs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return shared.ErrSongNotFound
	}

	return nil
}

// List retrieves all songs matching the given criteria, ordered by sequence.
//
// Supported criteria keys: "artist", "instrument".
func (r *SongRepository) List(criteria map[string]any) ([]*models.Song, error) {
	query := `
		SELECT id, sequence, title, artist, tab_path, instrument, created_at, updated_at, deleted_at
		FROM songs
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if artist, ok := criteria["artist"]; ok {
		query += " AND LOWER(artist) = LOWER(?)"
		args = append(args, artist)
	}
	if instrument, ok := criteria["instrument"]; ok {
		query += " AND LOWER(instrument) = LOWER(?)"
		args = append(args, instrument)
	}

	query += " ORDER BY sequence"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}

	return songs, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *SongRepository) scanOne(row *sql.Row) (*models.Song, error) {
	song, err := scanSong(row)
	if err == sql.ErrNoRows {
		return nil, shared.ErrSongNotFound
	}
	return song, err
}

func (r *SongRepository) scanRow(rows *sql.Rows) (*models.Song, error) {
	return scanSong(rows)
}

func scanSong(s scannable) (*models.Song, error) {
	var (
		id, title           string
		artist, instrument  sql.NullString
		tabPath             string
		sequence            int
		createdAt, updated  time.Time
		deletedAt           sql.NullTime
	)

	err := s.Scan(&id, &sequence, &title, &artist, &tabPath, &instrument, &createdAt, &updated, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	var deleted *time.Time
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}

	return models.RestoreSong(id, sequence, title, artist.String, tabPath, instrument.String, createdAt, updated, deleted), nil
}

var _ models.Repository[*models.Song] = (*SongRepository)(nil)
