package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/bandassist/internal/engine/practice"
	"github.com/desertthunder/bandassist/internal/formatter"
	"github.com/desertthunder/bandassist/internal/models"
	"github.com/desertthunder/bandassist/internal/repositories"
	"github.com/desertthunder/bandassist/internal/shared"
	"github.com/desertthunder/bandassist/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, songsCommand, importCommand, playCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openDB opens the configured database and brings the schema up to date.
// Migrations are versioned, so repeated calls are no-ops.
func (r *Runner) openDB() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Setup initializes the configuration file and database schema.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		if config, err := shared.LoadConfig(configPath); err == nil {
			r.config = config
		} else {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else if config, err := shared.LoadConfig(configPath); err == nil {
			r.config = config
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// SongsAdd catalogs a single song after validating its tab manifest.
func (r *Runner) SongsAdd(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: song title", shared.ErrMissingArgument)
	}

	tabPath := cmd.String("tab")
	data, err := os.ReadFile(tabPath)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMissingTab, err)
	}
	if _, err := practice.ParseManifest(data); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidTab, err)
	}

	instrument := cmd.String("instrument")
	if instrument == "" {
		instrument = r.config.Member.Instrument
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSongRepository(db)
	if existing, err := repo.GetByTitle(title); err == nil && existing != nil {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateSong, title)
	}

	song := models.NewSong(0, title, cmd.String("artist"), tabPath, instrument)
	if err := repo.Create(song); err != nil {
		return fmt.Errorf("failed to add song: %w", err)
	}

	r.logger.Info("song added", "title", song.Title(), "id", song.ID())
	return r.writeJSON(formatter.ViewOf(song), true)
}

// SongsList prints the catalog in the requested format.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if artist := cmd.String("artist"); artist != "" {
		criteria["artist"] = artist
	}
	if instrument := cmd.String("instrument"); instrument != "" {
		criteria["instrument"] = instrument
	}

	songs, err := repositories.NewSongRepository(db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}

	output, err := formatter.Render(cmd.String("format"), songs)
	if err != nil {
		return fmt.Errorf("failed to render songs: %w", err)
	}
	return r.writePlain("%s", output)
}

// SongsRemove soft-deletes a song resolved by title.
func (r *Runner) SongsRemove(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: song title", shared.ErrMissingArgument)
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSongRepository(db)
	song, err := repo.GetByTitle(title)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, title)
	}

	if err := repo.Delete(song.ID()); err != nil {
		return fmt.Errorf("failed to remove song: %w", err)
	}

	r.logger.Info("song removed", "title", song.Title(), "id", song.ID())
	return r.writePlainln("Removed: %s", song.Title())
}

// Import catalogs every tab manifest in a directory.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		return fmt.Errorf("%w: tab directory", shared.ErrMissingArgument)
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := tasks.NewCatalogEngine(repositories.NewSongRepository(db))

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlainln("%s", update.Message)
		}
	}()

	result, err := engine.Import(ctx, progress, dir, tasks.ImportOpts{
		Instrument: cmd.String("instrument"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	return r.writePlainln("Imported %d of %d tabs (%d skipped, %d failed)",
		result.Imported, result.TotalFiles, result.Skipped, result.Failed)
}
