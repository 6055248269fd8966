package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fatflowers/notemarket/internal/models"
	cfgpkg "github.com/fatflowers/notemarket/pkg/config"
	"github.com/fatflowers/notemarket/pkg/gormlog"
)

const pingTimeout = 5 * time.Second

// NewDB opens the ledger database and sizes its pool from config.
func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database
	if dbCfg.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	gl := gormlog.New(l, gormlog.Options{Verbose: cfg.Env == cfgpkg.EnvDev})
	gdb, err := gorm.Open(postgres.Open(dbCfg.DSN), &gorm.Config{Logger: gl})
	if err != nil {
		l.Errorw("open_postgres_failed", "err", err)
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if dbCfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}
	if dbCfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		l.Errorw("ping_postgres_failed", "err", err)
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	l.Infow("connected to postgres", "max_open_conns", dbCfg.MaxOpenConns, "max_idle_conns", dbCfg.MaxIdleConns)
	return gdb, nil
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// Tables owned by this service. documents is normally written by the
// catalog front end; migrating it here keeps local setups self-contained.
var ownedModels = []any{
	&models.Document{},
	&models.MerchantLink{},
	&models.Purchase{},
	&models.PaymentNotificationLog{},
}

func AutoMigrate(l *zap.SugaredLogger, gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(ownedModels...); err != nil {
		l.Errorw("automigrate_failed", "err", err)
		return err
	}
	l.Infow("automigrate completed", "tables", len(ownedModels))
	return nil
}

func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing postgres connection pool")
			return sqlDB.Close()
		},
	})
}
