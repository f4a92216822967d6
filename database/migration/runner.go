// Package migration applies programmatic GORM schema migrations tracked in a
// schema_migrations table.
package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Yaocool/code-simplify/logger"
)

// Migration describes a single schema migration. Down is optional; a
// migration without it cannot be rolled back.
type Migration struct {
	ID          string
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// Runner applies registered migrations in order, each in its own
// transaction.
type Runner struct {
	db         *gorm.DB
	log        *logger.Logger
	migrations []Migration
}

// NewRunner creates a runner bound to the given database handle.
func NewRunner(db *gorm.DB, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Get("migration")
	}
	return &Runner{db: db, log: log}
}

// Add registers a migration. Migrations run in registration order.
func (r *Runner) Add(m Migration) {
	r.migrations = append(r.migrations, m)
}

// Run applies all pending migrations. Already-applied migrations are skipped.
func (r *Runner) Run() error {
	if err := r.createMigrationsTable(); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range r.migrations {
		applied, err := r.isApplied(m.ID)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", m.ID, err)
		}
		if applied {
			r.log.Debug("migration already applied", map[string]any{"id": m.ID})
			continue
		}

		r.log.Info("applying migration", map[string]any{
			"id":          m.ID,
			"description": m.Description,
		})

		if err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Exec("INSERT INTO schema_migrations (id) VALUES (?)", m.ID).Error
		}); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.ID, err)
		}
	}

	return nil
}

// Rollback reverts the migration with the given ID using its Down function.
func (r *Runner) Rollback(id string) error {
	for _, m := range r.migrations {
		if m.ID != id {
			continue
		}
		if m.Down == nil {
			return fmt.Errorf("migration %s has no down function", id)
		}

		applied, err := r.isApplied(id)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", id, err)
		}
		if !applied {
			return nil
		}

		r.log.Info("rolling back migration", map[string]any{"id": id})
		return r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Exec("DELETE FROM schema_migrations WHERE id = ?", id).Error
		})
	}
	return fmt.Errorf("unknown migration %s", id)
}

func (r *Runner) createMigrationsTable() error {
	return r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
}

func (r *Runner) isApplied(id string) (bool, error) {
	var count int64
	err := r.db.Table("schema_migrations").Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
