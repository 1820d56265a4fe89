// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: table, csv, markdown, json",
		Value:   "table",
	}
}

// serveCommand runs the HTTP API server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the StreamTunes API server",
		Flags: []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}

// setupCommand initializes the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "init-config",
				Usage: "Write an example config.toml next to the binary",
			},
		},
		Action: r.Setup,
	}
}

// catalogCommand exposes catalog queries from the terminal
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Query the upstream catalog",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Full-text track search",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					configFlag(),
					formatFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to return",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Result offset for pagination",
					},
				},
				Action: r.CatalogSearch,
			},
			{
				Name:  "trending",
				Usage: "Trending tracks",
				Flags: []cli.Flag{
					configFlag(),
					formatFlag(),
					&cli.StringFlag{
						Name:  "time",
						Usage: "Time range: day, week, month, allTime",
						Value: "week",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to return",
						Value: 10,
					},
				},
				Action: r.CatalogTrending,
			},
			{
				Name:  "popular",
				Usage: "All-time trending sorted by play count",
				Flags: []cli.Flag{
					configFlag(),
					formatFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to return",
						Value: 10,
					},
				},
				Action: r.CatalogPopular,
			},
		},
	}
}

// browseCommand opens the interactive catalog browser
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the catalog in an interactive TUI",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Tracks per feed",
				Value: 25,
			},
		},
		Action: r.Browse,
	}
}
