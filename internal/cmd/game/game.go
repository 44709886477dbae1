// Package game parses game command flags and starts the objective
// tracking runtime.
package game

import (
	"context"
	"flag"

	entrypoint "github.com/ElderEvil/vaultkeeper/internal/platform/cmd"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/app"
)

// Config holds game command configuration.
type Config struct {
	GameDBPath          string `env:"VAULTKEEPER_GAME_DB" envDefault:"game.db"`
	VaultDBPath         string `env:"VAULTKEEPER_VAULT_DB" envDefault:"vault.db"`
	NotificationsDBPath string `env:"VAULTKEEPER_NOTIFICATIONS_DB" envDefault:"notifications.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.GameDBPath, "game-db", cfg.GameDBPath, "The objective catalog database path")
	fs.StringVar(&cfg.VaultDBPath, "vault-db", cfg.VaultDBPath, "The vault state database path")
	fs.StringVar(&cfg.NotificationsDBPath, "notifications-db", cfg.NotificationsDBPath, "The notification inbox database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the objective tracking runtime and blocks until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(ctx context.Context) error {
		return app.Run(ctx, app.Config{
			GameDBPath:          cfg.GameDBPath,
			VaultDBPath:         cfg.VaultDBPath,
			NotificationsDBPath: cfg.NotificationsDBPath,
		})
	})
}
