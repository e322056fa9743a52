package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/troves/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// Database is the shop's PostgreSQL connection: the GORM handle used by the
// repositories and the pool underneath it
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// Open connects with the pool limits from cfg and fails unless the server
// answers a ping within connectTimeout. A nil log keeps GORM silent.
func Open(ctx context.Context, cfg *config.DatabaseConfig, log gormlogger.Interface) (*Database, error) {
	if log == nil {
		log = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 log,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{DB: db, sql: pool}, nil
}

// PingContext reports whether the pool can reach the server
func (d *Database) PingContext(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Close closes the pool
func (d *Database) Close() error {
	return d.sql.Close()
}
