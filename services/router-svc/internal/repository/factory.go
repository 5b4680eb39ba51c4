package repository

import (
	"context"
	"fmt"

	"routeguide/migrations"
	"routeguide/pkg/config"
	"routeguide/pkg/database"
	"routeguide/pkg/logger"
)

// NewNetworkRepository выбирает реализацию по драйверу конфигурации.
// Возвращает репозиторий и функцию освобождения ресурсов.
func NewNetworkRepository(ctx context.Context, cfg *config.DatabaseConfig) (NetworkRepository, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		logger.Log.Info("Using in-memory network repository")
		return NewMemoryNetworkRepository(), func() {}, nil

	case "postgres":
		db, err := database.NewPostgresDB(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := database.RunMigrations(ctx, db.Pool(), cfg, migrations.PostgresMigrations, migrations.PostgresDir); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return NewPostgresNetworkRepository(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
