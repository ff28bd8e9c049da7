package user

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/prepstack-backend/internal/data/repos/testutil"
	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/modules/progress/streak"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{
		{
			Email:       "  UserRepo@Example.com ",
			Password:    "pw",
			DisplayName: "A",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: expected 1 user with generated id, got %+v", created)
	}
	if created[0].Email != "userrepo@example.com" {
		t.Fatalf("Create: email not normalized: %q", created[0].Email)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}
	if s := gotByIDs[0].Streak(); s.Length != 0 || s.LastUpdate != "" {
		t.Fatalf("new user streak should be empty, got %+v", s)
	}

	gotByEmails, err := repo.GetByEmails(dbc, []string{"USERREPO@example.com"})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].ID != created[0].ID {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	exists, err := repo.EmailExists(dbc, "UserRepo@example.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists: exists=%v err=%v", exists, err)
	}
	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil || exists {
		t.Fatalf("EmailExists(missing): exists=%v err=%v", exists, err)
	}

	if err := repo.UpdateDisplayName(dbc, created[0].ID, "Ada"); err != nil {
		t.Fatalf("UpdateDisplayName: %v", err)
	}
	rows, _ := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if rows[0].DisplayName != "Ada" {
		t.Fatalf("UpdateDisplayName: got %q", rows[0].DisplayName)
	}
}

func TestUserRepoResolve(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	u := testutil.SeedUser(t, ctx, tx, "resolve@example.com")

	cases := []struct {
		name   string
		id     uuid.UUID
		email  string
		wantID uuid.UUID
	}{
		{"by_id", u.ID, "", u.ID},
		{"id_miss_email_hit", uuid.New(), "Resolve@Example.com", u.ID},
		{"email_only", uuid.Nil, "resolve@example.com", u.ID},
		{"both_miss", uuid.New(), "nobody@example.com", uuid.Nil},
		{"nothing", uuid.Nil, "", uuid.Nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.Resolve(dbc, tc.id, tc.email)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if tc.wantID == uuid.Nil {
				if got != nil {
					t.Fatalf("Resolve: expected nil, got %+v", got)
				}
				return
			}
			if got == nil || got.ID != tc.wantID {
				t.Fatalf("Resolve: got %+v, want id %s", got, tc.wantID)
			}
		})
	}
}

func TestUserRepoIncrementColumn(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	u := testutil.SeedUser(t, ctx, tx, "increment@example.com")

	prev, cur, err := repo.IncrementColumn(dbc, u.ID, "coding_questions_attempted")
	if err != nil || prev != 0 || cur != 1 {
		t.Fatalf("first increment: prev=%d cur=%d err=%v", prev, cur, err)
	}
	prev, cur, err = repo.IncrementColumn(dbc, u.ID, "coding_questions_attempted")
	if err != nil || prev != 1 || cur != 2 {
		t.Fatalf("second increment: prev=%d cur=%d err=%v", prev, cur, err)
	}
	if _, _, err := repo.IncrementColumn(dbc, u.ID, "system_design_covered"); err != nil {
		t.Fatalf("other column: %v", err)
	}

	rows, _ := repo.GetByIDs(dbc, []uuid.UUID{u.ID})
	if rows[0].CodingQuestionsAttempted != 2 || rows[0].SystemDesignCovered != 1 || rows[0].TechnicalQuestionsAttempted != 0 {
		t.Fatalf("unexpected counters: %+v", rows[0])
	}

	if _, _, err := repo.IncrementColumn(dbc, u.ID, "total_points"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
	if _, _, err := repo.IncrementColumn(dbc, uuid.New(), "algorithms_attempted"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for missing user, got %v", err)
	}
}

func TestUserRepoAddPointsAndStreak(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	u := testutil.SeedUser(t, ctx, tx, "points@example.com")

	prev, total, err := repo.AddPoints(dbc, u.ID, 15)
	if err != nil || prev != 0 || total != 15 {
		t.Fatalf("AddPoints: prev=%d total=%d err=%v", prev, total, err)
	}
	prev, total, err = repo.AddPoints(dbc, u.ID, 5)
	if err != nil || prev != 15 || total != 20 {
		t.Fatalf("AddPoints again: prev=%d total=%d err=%v", prev, total, err)
	}

	state := types.StreakState{LastUpdate: "2024-01-02", Length: 6}
	if err := repo.SaveStreak(dbc, u.ID, state, 6); err != nil {
		t.Fatalf("SaveStreak: %v", err)
	}
	rows, _ := repo.GetByIDs(dbc, []uuid.UUID{u.ID})
	if got := rows[0].Streak(); got != state || rows[0].LongestStreak != 6 {
		t.Fatalf("SaveStreak: got %+v longest=%d", got, rows[0].LongestStreak)
	}
	if err := repo.SaveStreak(dbc, uuid.New(), state, 6); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("SaveStreak(missing): expected ErrRecordNotFound, got %v", err)
	}
}

func TestUserRepoListByPoints(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	before, err := repo.Count(dbc)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := testutil.SeedRankedUser(t, ctx, tx, "older@example.com", 1_000_000, base)
	newer := testutil.SeedRankedUser(t, ctx, tx, "newer@example.com", 1_000_000, base.Add(time.Hour))
	top := testutil.SeedRankedUser(t, ctx, tx, "top@example.com", 2_000_000, base.Add(2*time.Hour))

	after, err := repo.Count(dbc)
	if err != nil || after != before+3 {
		t.Fatalf("Count after seed: %d (before %d) err=%v", after, before, err)
	}

	page, err := repo.ListByPoints(dbc, 0, 3)
	if err != nil {
		t.Fatalf("ListByPoints: %v", err)
	}
	want := []uuid.UUID{top.ID, older.ID, newer.ID}
	if len(page) != 3 {
		t.Fatalf("ListByPoints: expected 3 rows, got %d", len(page))
	}
	for i, id := range want {
		if page[i].ID != id {
			t.Fatalf("ListByPoints[%d]=%s, want %s", i, page[i].Email, id)
		}
	}

	second, err := repo.ListByPoints(dbc, 1, 1)
	if err != nil || len(second) != 1 || second[0].ID != older.ID {
		t.Fatalf("ListByPoints offset: %+v err=%v", second, err)
	}
	if empty, err := repo.ListByPoints(dbc, 0, 0); err != nil || len(empty) != 0 {
		t.Fatalf("ListByPoints limit 0: %+v err=%v", empty, err)
	}
}

func TestUserRepoToleratesMalformedStreak(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	today := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	for i, raw := range []string{`{"date":"2024-01-01","n":3}`, `["x"]`} {
		u := testutil.SeedRankedUser(t, ctx, tx, fmt.Sprintf("bad-streak-%d@example.com", i), 9_000_000+i, today)
		if err := tx.Model(&types.User{}).Where("id = ?", u.ID).Update("current_streak", datatypes.JSON(raw)).Error; err != nil {
			t.Fatalf("corrupt streak %s: %v", raw, err)
		}

		got, err := repo.Resolve(dbc, u.ID, u.Email)
		if err != nil || got == nil {
			t.Fatalf("Resolve with streak %s: user=%v err=%v", raw, got, err)
		}
		state := got.Streak()
		if !state.Unreadable() || state.Length != 0 || state.LastUpdate != "" {
			t.Fatalf("streak %s decoded to %+v", raw, state)
		}
		if _, action := streak.Next(today, state); action != streak.ActionStarted {
			t.Fatalf("streak %s: next action %s, want started", raw, action)
		}

		page, err := repo.ListByPoints(dbc, 0, 1)
		if err != nil || len(page) != 1 || page[0].ID != u.ID {
			t.Fatalf("ListByPoints with streak %s: %+v err=%v", raw, page, err)
		}
	}
}
