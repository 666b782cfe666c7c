package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/migration"
	"github.com/Domenick1991/triprex/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// Store is the booking repository selected by database.driver together with
// its health check and cleanup.
type Store struct {
	Bookings repository.BookingRepository
	Ping     func(context.Context) error
	Close    func()
}

func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	if cfg.Driver == config.DriverSQLite {
		repo, err := repository.OpenSQLite(cfg.SQLitePath, gormlogger.Warn)
		if err != nil {
			return nil, err
		}
		log.Info("using sqlite booking store", zap.String("path", cfg.SQLitePath))
		return &Store{
			Bookings: repo,
			Ping:     repo.Ping,
			Close:    func() { _ = repo.Close() },
		}, nil
	}

	if cfg.MigrateOnStart {
		m, err := migration.New(cfg.MigrateURL(), log)
		if err != nil {
			return nil, err
		}
		err = m.Up()
		_ = m.Close()
		if err != nil {
			return nil, err
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{
		Bookings: repository.NewBookingRepository(pool),
		Ping:     pool.Ping,
		Close:    pool.Close,
	}, nil
}
