package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/domain/content"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		Password:    "pw",
		DisplayName: "learner",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedRankedUser creates a user with fixed points and creation time so
// leaderboard ordering is deterministic.
func SeedRankedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, points int, createdAt time.Time) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		Password:    "pw",
		DisplayName: email,
		TotalPoints: points,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed ranked user: %v", err)
	}
	return u
}

func SeedItems(tb testing.TB, ctx context.Context, tx *gorm.DB, cat content.Category, n int) []*content.Item {
	tb.Helper()
	items := make([]*content.Item, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, &content.Item{
			ID:     i,
			Title:  cat.Key + " item",
			Prompt: "prompt",
			Tags:   datatypes.JSONSlice[string]{cat.Key},
		})
	}
	if n == 0 {
		return items
	}
	if err := tx.WithContext(ctx).Table(cat.Table).Create(&items).Error; err != nil {
		tb.Fatalf("seed %s items: %v", cat.Table, err)
	}
	return items
}

func MustCategory(tb testing.TB, key string) content.Category {
	tb.Helper()
	c, ok := content.Lookup(key)
	if !ok {
		tb.Fatalf("unknown category %q", key)
	}
	return c
}
