package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/prepstack-backend/internal/data/repos/testutil"
	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserTokenRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "usertokenrepo@example.com")

	makeToken := func(access, refresh string, ttl time.Duration) *types.UserToken {
		return &types.UserToken{
			UserID:       u.ID,
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    time.Now().Add(ttl),
		}
	}

	t1 := makeToken("access-1", "refresh-1", time.Hour)
	if _, err := repo.Create(dbc, []*types.UserToken{t1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if t1.ID == uuid.Nil {
		t.Fatalf("Create: expected generated id")
	}

	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{t1.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByUserIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByAccessTokens(dbc, []string{t1.AccessToken}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByAccessTokens: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByRefreshTokens(dbc, []string{t1.RefreshToken}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByRefreshTokens: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByRefreshTokens(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("GetByRefreshTokens(nil): err=%v len=%d", err, len(rows))
	}

	if err := repo.FullDeleteByIDs(dbc, []uuid.UUID{t1.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{t1.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("after FullDeleteByIDs: err=%v len=%d", err, len(rows))
	}

	expired := makeToken("access-2", "refresh-2", -time.Hour)
	live := makeToken("access-3", "refresh-3", time.Hour)
	if _, err := repo.Create(dbc, []*types.UserToken{expired, live}); err != nil {
		t.Fatalf("seed tokens: %v", err)
	}
	n, err := repo.FullDeleteExpired(dbc, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("FullDeleteExpired: n=%d err=%v", n, err)
	}

	if err := repo.FullDeleteByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("FullDeleteByUserIDs: %v", err)
	}
	if rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("after FullDeleteByUserIDs: err=%v len=%d", err, len(rows))
	}
}
