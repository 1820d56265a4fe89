package main

import (
	"path/filepath"
	"testing"

	"github.com/desertthunder/streamtunes/internal/shared"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		config := shared.DefaultConfig()
		logger := shared.NewLogger(nil)

		runner := NewRunner(config, logger)

		if runner.config != config {
			t.Error("expected config to be set")
		}
		if runner.logger != logger {
			t.Error("expected logger to be set")
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(shared.DefaultConfig(), shared.NewLogger(nil))
		commands := runner.register()

		if len(commands) != 4 {
			t.Fatalf("expected 4 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, name := range []string{"serve", "setup", "catalog", "browse"} {
			if !names[name] {
				t.Errorf("expected %s command to be registered", name)
			}
		}
	})

	t.Run("catalogClient", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Catalog.DirectoryURL = "https://directory.example.com"

		runner := NewRunner(config, shared.NewLogger(nil))
		client := runner.catalogClient(config)

		if client == nil {
			t.Fatal("expected client to be created")
		}
		if client.Resolver() == nil {
			t.Error("expected client to carry a resolver")
		}
	})

	t.Run("openDatabase", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Database.Path = filepath.Join(t.TempDir(), "test.db")

		runner := NewRunner(config, shared.NewLogger(nil))

		db, err := runner.openDatabase(config)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM users LIMIT 1"); err != nil {
			t.Errorf("users table should exist: %v", err)
		}
	})
}
