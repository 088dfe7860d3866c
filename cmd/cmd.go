// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database and configuration initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// songsCommand handles song catalog operations.
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "songs",
		Aliases: []string{"song"},
		Usage:   "Manage the song catalog",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a song to the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "title",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tab",
						Usage:    "Path to the tab manifest file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Recording artist",
					},
					&cli.StringFlag{
						Name:  "instrument",
						Usage: "Track to auto-select when the score loads",
					},
				},
				Action: r.SongsAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List songs in the catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Filter by artist",
					},
					&cli.StringFlag{
						Name:  "instrument",
						Usage: "Filter by instrument",
					},
				},
				Action: r.SongsList,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a song from the catalog by title",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "title",
					},
				},
				Action: r.SongsRemove,
			},
		},
	}
}

// importCommand handles bulk tab imports.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import every tab manifest in a directory into the catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "dir",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent validation workers",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Files dispatched per second",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "instrument",
				Usage: "Default instrument for imported songs",
			},
		},
		Action: r.Import,
	}
}

// playCommand launches the interactive practice player.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "play",
		Aliases: []string{"practice", "tui"},
		Usage:   "Launch the interactive practice player",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "song",
				UsageText: "song title or id to open directly",
			},
		},
		Action: r.Play,
	}
}
