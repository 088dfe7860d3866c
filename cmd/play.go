package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/bandassist/internal/engine"
	"github.com/desertthunder/bandassist/internal/models"
	"github.com/desertthunder/bandassist/internal/player"
	"github.com/desertthunder/bandassist/internal/repositories"
	"github.com/desertthunder/bandassist/internal/shared"
	"github.com/desertthunder/bandassist/internal/ui"
)

// Play launches the interactive practice player.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/bandassist-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.logger = fileLogger

	repo := repositories.NewSongRepository(db)
	model := ui.NewModel(ctx, repo, r.sessionStarter())

	if query := cmd.StringArg("song"); query != "" {
		song, err := resolveSong(repo, query)
		if err != nil {
			return err
		}
		model.OpenOnStart(song)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// resolveSong finds a catalog song by title first, then by id.
func resolveSong(repo *repositories.SongRepository, query string) (*models.Song, error) {
	if song, err := repo.GetByTitle(query); err == nil && song != nil {
		return song, nil
	}
	if song, err := repo.Get(query); err == nil && song != nil {
		return song, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, query)
}

// sessionStarter builds the closure the TUI uses to spin up a playback
// session for a catalog song: read the tab, wrap it as a data URI, and start
// the session against the configured engine.
func (r *Runner) sessionStarter() ui.SessionStarter {
	cfg := r.config.Player

	return func(ctx context.Context, song *models.Song) (*player.Session, error) {
		data, err := os.ReadFile(song.TabPath())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMissingTab, err)
		}

		instrument := song.Instrument()
		if instrument == "" {
			instrument = r.config.Member.Instrument
		}

		session := player.NewSession(player.Config{
			EngineName:          cfg.Engine,
			DataURI:             player.EncodeDataURI(data),
			PreferredInstrument: instrument,
			Settings: engine.Settings{
				FontDirectory: cfg.FontDirectory,
				UseWorkers:    cfg.UseWorkers,
				SoundBankURL:  cfg.SoundBankURL,
				LayoutMode:    cfg.LayoutMode,
			},
			Probe: engine.Probe{
				Interval: time.Duration(cfg.ProbeIntervalMS) * time.Millisecond,
				Attempts: cfg.ProbeAttempts,
			},
			Watchdog: time.Duration(cfg.WatchdogSeconds) * time.Second,
			Logger:   r.logger,
		})
		session.Start(ctx)
		return session, nil
	}
}
