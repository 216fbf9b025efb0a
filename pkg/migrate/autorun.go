package migrate

import (
	"context"
	"fmt"

	"github.com/albin6/cellsphere/pkg/config"
	"github.com/albin6/cellsphere/pkg/db"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/logger"
)

// MaybeRunDev brings the schema up to date in dev when auto-migrate is on.
// SQLite databases get GORM AutoMigrate because the SQL files target Postgres.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	conn := client.DB()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": conn.Dialector.Name()})

	if conn.Dialector.Name() == config.DriverSQLite {
		if err := conn.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
		logg.Info(ctx, "schema auto-migrated")
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	if err := (Runner{DB: sqlDB}).Up(ctx); err != nil {
		return err
	}
	logg.Info(ctx, "goose migrations applied")
	return nil
}
