// package tasks implements long-running catalog operations.
//
// The core abstraction is CatalogEngine, which imports tab files into the song
// catalog. Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/bandassist/internal/engine/practice"
	"github.com/desertthunder/bandassist/internal/models"
	"github.com/desertthunder/bandassist/internal/shared"
)

// ImportOpts contains configuration for bulk tab imports.
type ImportOpts struct {
	Instrument string  // Default instrument for imported songs
	NumWorkers int     // Concurrent parse workers (default: 5)
	RateLimit  float64 // Files dispatched per second (default: 20)
}

// SongImportJob is one tab file queued for validation.
type SongImportJob struct {
	Path string
}

// SongImportResult is the outcome of importing a single tab file.
type SongImportResult struct {
	Path    string
	Title   string
	Artist  string
	Success bool
	Error   error
}

// ImportResult summarizes a full directory import.
type ImportResult struct {
	TotalFiles int
	Imported   int
	Skipped    int
	Failed     int
	Results    []SongImportResult
}

// CatalogEngine imports tab files into the song catalog.
type CatalogEngine struct {
	songs models.Repository[*models.Song]
}

// NewCatalogEngine creates a CatalogEngine backed by the given repository.
func NewCatalogEngine(songs models.Repository[*models.Song]) *CatalogEngine {
	return &CatalogEngine{songs: songs}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Import scans dir for tab manifests, validates them concurrently through a
// worker pool, and catalogs each valid one as a song. Files that fail to
// parse are counted and reported, never fatal; songs whose title already
// exists in the catalog are skipped.
func (e *CatalogEngine) Import(ctx context.Context, progress chan<- ProgressUpdate, dir string, opts ImportOpts) (*ImportResult, error) {
	if e.songs == nil {
		return nil, fmt.Errorf("%w: song repository not initialized", shared.ErrInvalidConfig)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20.0
	}
	if opts.Instrument == "" {
		opts.Instrument = "Lead Guitar"
	}

	e.sendProgress(progress, scanningUpdate(dir))

	paths, err := scanTabFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		TotalFiles: len(paths),
		Results:    make([]SongImportResult, 0, len(paths)),
	}
	if len(paths) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan SongImportJob, len(paths))
	parsed := make(chan SongImportResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.parseWorker(ctx, &wg, jobs, parsed)
	}

	go func() {
		defer close(jobs)
		for i, path := range paths {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(progress, validatingUpdate(i+1, len(paths), filepath.Base(path)))
			jobs <- SongImportJob{Path: path}
		}
	}()

	go func() {
		wg.Wait()
		close(parsed)
	}()

	// Catalog writes stay on this goroutine; the pool only parses.
	completed := 0
	for res := range parsed {
		completed++

		if res.Success {
			res = e.catalog(res, opts.Instrument)
		}

		result.Results = append(result.Results, res)
		switch {
		case res.Success:
			result.Imported++
			e.sendProgress(progress, importedUpdate(completed, len(paths), res.Title))
		case errors.Is(res.Error, shared.ErrDuplicateSong):
			result.Skipped++
			e.sendProgress(progress, skippedUpdate(completed, len(paths), res.Title))
		default:
			result.Failed++
			e.sendProgress(progress, importFailedUpdate(completed, len(paths), filepath.Base(res.Path), res.Error))
		}
	}

	return result, ctx.Err()
}

// parseWorker validates tab manifests from the jobs channel.
func (e *CatalogEngine) parseWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan SongImportJob, out chan<- SongImportResult) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		out <- parseTabFile(job)
	}
}

func parseTabFile(job SongImportJob) SongImportResult {
	result := SongImportResult{Path: job.Path}

	data, err := os.ReadFile(job.Path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read tab file: %w", err)
		return result
	}

	manifest, err := practice.ParseManifest(data)
	if err != nil {
		result.Error = fmt.Errorf("%w: %v", shared.ErrInvalidTab, err)
		return result
	}

	result.Title = manifest.Title
	if result.Title == "" {
		result.Title = strings.TrimSuffix(filepath.Base(job.Path), filepath.Ext(job.Path))
	}
	result.Artist = manifest.Artist
	result.Success = true
	return result
}

// catalog inserts a parsed tab as a song, skipping titles already present.
func (e *CatalogEngine) catalog(res SongImportResult, instrument string) SongImportResult {
	if lookup, ok := e.songs.(titleLookup); ok {
		if existing, err := lookup.GetByTitle(res.Title); err == nil && existing != nil {
			res.Success = false
			res.Error = fmt.Errorf("%w: %s", shared.ErrDuplicateSong, res.Title)
			return res
		}
	}

	song := models.NewSong(0, res.Title, res.Artist, res.Path, instrument)
	if err := e.songs.Create(song); err != nil {
		res.Success = false
		res.Error = fmt.Errorf("failed to catalog song: %w", err)
	}
	return res
}

// titleLookup is the duplicate-detection surface of the song repository.
type titleLookup interface {
	GetByTitle(title string) (*models.Song, error)
}

// scanTabFiles returns the JSON tab manifests directly inside dir, sorted by
// the filesystem's listing order. Subdirectories are not descended into.
func scanTabFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tab directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}
