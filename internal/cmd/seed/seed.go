// Package seed parses seed command flags and writes the objective
// catalog into the game store.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	entrypoint "github.com/ElderEvil/vaultkeeper/internal/platform/cmd"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/objective"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/seed"
	gamesqlite "github.com/ElderEvil/vaultkeeper/internal/services/game/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	GameDBPath string `env:"VAULTKEEPER_GAME_DB" envDefault:"game.db"`
	// CatalogPath points to a YAML catalog file. Empty means the embedded
	// stock catalog.
	CatalogPath string `env:"VAULTKEEPER_CATALOG_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.GameDBPath, "game-db", cfg.GameDBPath, "The objective catalog database path")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "The catalog YAML path (default: embedded catalog)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads and validates the catalog, then writes it to the store.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	var (
		objectives []objective.Objective
		err        error
	)
	if cfg.CatalogPath != "" {
		objectives, err = seed.LoadFile(cfg.CatalogPath)
	} else {
		objectives, err = seed.LoadFS(seed.DefaultCatalog, seed.DefaultCatalogPath)
	}
	if err != nil {
		return err
	}

	store, err := gamesqlite.Open(cfg.GameDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := seed.Apply(ctx, store, objectives); err != nil {
		return err
	}
	fmt.Fprintf(out, "seeded %d objectives into %s\n", len(objectives), cfg.GameDBPath)
	return nil
}
