package database

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Yaocool/code-simplify/logger"
)

func TestOpenAndPing(t *testing.T) {
	db := openTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestOpenFailsForUnreachableDatabase(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "no", "such", "dir", "test.db")
	_, err := Open(Config{MaxRetries: 1}, sqlite.Open(dsn), logger.Nop())
	if err == nil {
		t.Fatal("Open must fail when the database cannot be reached")
	}
}

func TestWithTransactionCommits(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&user{UserID: "u-1", Name: "alice"}).Error
	})
	if err != nil {
		t.Fatalf("WithTransaction failed: %v", err)
	}

	var count int64
	if err := db.Session(ctx).Model(&user{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestWithTransactionRepanics(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic must propagate out of WithTransaction")
			}
		}()
		_ = db.WithTransaction(ctx, func(tx *gorm.DB) error {
			if err := tx.Create(&user{UserID: "ghost", Name: "ghost"}).Error; err != nil {
				return err
			}
			panic("boom")
		})
	}()

	var count int64
	if err := db.Session(ctx).Model(&user{}).Where("user_id = ?", "ghost").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Error("panicked transaction must roll back")
	}
}
