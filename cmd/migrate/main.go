package main

import (
	"context"
	"log/slog"

	"folio/config"
	"folio/internal/domain/lifecycle"
	logs "folio/internal/infra/log"
	"folio/internal/infra/persistence/postgres"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
			postgres.New,
		),
		fx.Invoke(migrate),
	).Run()
}

// migrate runs once the database ping in postgres.New has succeeded, then stops the app.
func migrate(lc fx.Lifecycle, shutdowner fx.Shutdowner, db *gorm.DB, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 6*lifecycle.DefaultTimeout)
				defer cancel()

				exitCode := 0
				if err := postgres.Migrate(ctx, db); err != nil {
					logger.Error("Migration failed", slog.Any("error", err))
					exitCode = 1
				} else {
					logger.Info("Migration completed")
				}

				if err := shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
					logger.Error("Failed to shutdown", slog.Any("error", err))
				}
			}()

			return nil
		},
	})
}
