// Package database provides a pooled GORM wrapper and a generic CRUD client
// parameterized by entity, mutation, and resource type roles.
package database

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Yaocool/code-simplify/logger"
)

// DB wraps a pooled GORM database handle.
type DB struct {
	// Gorm is the underlying GORM handle.
	Gorm *gorm.DB

	log *logger.Logger
	cfg Config
}

// Open connects to the database described by the dialector, retrying with
// exponential backoff up to cfg.MaxRetries attempts, and configures the
// connection pool.
func Open(cfg Config, dialector gorm.Dialector, log *logger.Logger) (*DB, error) {
	return OpenWithContext(context.Background(), cfg, dialector, log)
}

// OpenWithContext is Open with cancellation of connection attempts.
func OpenWithContext(ctx context.Context, cfg Config, dialector gorm.Dialector, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Get("database")
	}

	gormCfg := &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	}

	var db *gorm.DB
	connect := func() error {
		var err error
		db, err = gorm.Open(dialector, gormCfg)
		if err != nil {
			log.Warn("database connection attempt failed", map[string]any{"error": err.Error()})
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			log.Warn("database ping failed", map[string]any{"error": err.Error()})
			return err
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(cfg.MaxRetries-1)),
		ctx,
	)
	if err := backoff.Retry(connect, bo); err != nil {
		return nil, fmt.Errorf("database: connect after %d attempts: %w", cfg.MaxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	log.Info("database connection established")
	return &DB{Gorm: db, log: log, cfg: cfg}, nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	d.log.Info("closing database connection")
	return sqlDB.Close()
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Session returns a GORM session scoped to the given context.
func (d *DB) Session(ctx context.Context) *gorm.DB {
	return d.Gorm.WithContext(ctx)
}

// AutoMigrate runs GORM auto-migration for the given models.
func (d *DB) AutoMigrate(models ...any) error {
	for _, model := range models {
		if err := d.Gorm.AutoMigrate(model); err != nil {
			return fmt.Errorf("database: migrate %T: %w", model, err)
		}
	}
	return nil
}

// Transaction runs fn in a GORM-managed transaction that commits on nil and
// rolls back on error or panic.
func (d *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.Gorm.WithContext(ctx).Transaction(fn)
}

// WithTransaction executes fn within a transaction. The transaction is
// rolled back when fn returns an error or panics, committed otherwise.
func (d *DB) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := d.Gorm.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("database: begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			d.log.Error("transaction rolled back after panic", map[string]any{"panic": fmt.Sprintf("%v", r)})
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("database: transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("database: commit transaction: %w", err)
	}
	return nil
}
