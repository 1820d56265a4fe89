package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamtunes/internal/catalog"
	"github.com/desertthunder/streamtunes/internal/formatter"
	"github.com/desertthunder/streamtunes/internal/models"
	"github.com/desertthunder/streamtunes/internal/repositories"
	"github.com/desertthunder/streamtunes/internal/server"
	"github.com/desertthunder/streamtunes/internal/shared"
	"github.com/desertthunder/streamtunes/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds shared state for CLI command actions.
type Runner struct {
	config *shared.Config
	logger *log.Logger
}

// NewRunner creates a Runner with the given configuration and logger.
func NewRunner(config *shared.Config, logger *log.Logger) *Runner {
	return &Runner{config: config, logger: logger}
}

// register returns the full command tree.
func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		serveCommand(r),
		setupCommand(r),
		catalogCommand(r),
		browseCommand(r),
	}
}

// configFrom reloads configuration when the command's --config flag points
// at an existing file, otherwise keeps the runner's config.
func (r *Runner) configFrom(cmd *cli.Command) *shared.Config {
	path := cmd.String("config")
	if path == "" {
		return r.config
	}
	if _, err := os.Stat(path); err != nil {
		return r.config
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", path, "err", err)
		return r.config
	}
	return config
}

// catalogClient builds a catalog client from configuration.
func (r *Runner) catalogClient(config *shared.Config) *catalog.Client {
	return catalog.New(catalog.Options{
		DirectoryURL:      config.Catalog.DirectoryURL,
		AppName:           config.Catalog.AppName,
		Timeout:           time.Duration(config.Catalog.TimeoutSeconds) * time.Second,
		RequestsPerSecond: config.Catalog.RequestsPerSecond,
		Logger:            r.logger,
	})
}

// openDatabase opens and configures the SQLite account store.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	return db, nil
}

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.configFrom(cmd)

	db, err := r.openDatabase(config)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	client := r.catalogClient(config)

	// Resolve eagerly so a dead catalog directory fails at startup instead
	// of on the first request.
	if _, err := client.Resolver().Resolve(ctx); err != nil {
		return fmt.Errorf("failed to resolve catalog host: %w", err)
	}

	app := server.NewApp(config, server.Deps{
		Catalog:   client,
		Users:     repositories.NewUserRepository(db),
		Playlists: repositories.NewPlaylistRepository(db),
		Library:   repositories.NewLibraryRepository(db),
	}, r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}

// Setup initializes the database and optionally writes an example config.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("init-config") {
		path := cmd.String("config")
		if err := shared.CreateConfigFile(path); err != nil {
			return err
		}
		r.logger.Info("wrote config file", "path", path)
	}

	config := r.configFrom(cmd)

	db, err := r.openDatabase(config)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Info("database ready", "path", config.Database.Path)
	return nil
}

// CatalogSearch performs a track search and prints the results.
func (r *Runner) CatalogSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	client := r.catalogClient(r.configFrom(cmd))
	result := client.Search(ctx, query, "tracks", int(cmd.Int("limit")), int(cmd.Int("offset")))

	return r.printTracks(cmd, fmt.Sprintf("Search: %s", query), result.Data)
}

// CatalogTrending prints trending tracks.
func (r *Runner) CatalogTrending(ctx context.Context, cmd *cli.Command) error {
	client := r.catalogClient(r.configFrom(cmd))
	timeRange := catalog.NormalizeTimeRange(cmd.String("time"))
	result := client.Trending(ctx, timeRange, int(cmd.Int("limit")))

	return r.printTracks(cmd, fmt.Sprintf("Trending (%s)", timeRange), result.Data)
}

// CatalogPopular prints all-time popular tracks.
func (r *Runner) CatalogPopular(ctx context.Context, cmd *cli.Command) error {
	client := r.catalogClient(r.configFrom(cmd))
	result := client.Popular(ctx, int(cmd.Int("limit")))

	return r.printTracks(cmd, "Popular", result.Data)
}

// Browse opens the interactive catalog browser.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	client := r.catalogClient(r.configFrom(cmd))
	return ui.Run(ctx, client, int(cmd.Int("limit")))
}

// printTracks renders a track list in the requested output format.
func (r *Runner) printTracks(cmd *cli.Command, title string, tracks []models.Track) error {
	switch cmd.String("format") {
	case "csv":
		out, err := formatter.TracksToCSV(tracks)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	case "markdown", "md":
		_, err := os.Stdout.Write(formatter.TracksToMarkdown(title, tracks))
		return err
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(catalog.TrackList{Data: tracks})
	default:
		_, err := os.Stdout.Write(formatter.TracksToTable(tracks))
		return err
	}
}
