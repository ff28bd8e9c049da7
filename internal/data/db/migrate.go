package db

import (
	"fmt"

	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/domain/content"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// =========================
		// Accounts + progress
		// =========================
		&types.User{},
		&types.UserToken{},
	); err != nil {
		return err
	}

	// =========================
	// Question sets (one table per category, same shape)
	// =========================
	for _, table := range content.Tables() {
		if err := db.Table(table).AutoMigrate(&content.Item{}); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}

// EnsureLeaderboardIndex adds the composite index the leaderboard ordering
// scans. Postgres only; sqlite gets the single-column index from the model.
func EnsureLeaderboardIndex(db *gorm.DB) error {
	if db.Dialector.Name() != DriverPostgres {
		return nil
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_users_leaderboard
		ON users (total_points DESC, created_at ASC, id ASC)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_users_leaderboard: %w", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email));`).Error; err != nil {
		return fmt.Errorf("create idx_users_email_lower: %w", err)
	}
	return nil
}
