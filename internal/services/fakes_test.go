package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/prepstack-backend/internal/data/repos"
	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/domain/content"
	"github.com/yungbote/prepstack-backend/internal/platform/ctxutil"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
	"github.com/yungbote/prepstack-backend/internal/realtime"
)

var errStore = errors.New("store unavailable")

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*types.User

	failWrites bool
	failReads  bool
	writes     int
}

var _ repos.UserRepo = (*fakeUserRepo)(nil)

func newFakeUserRepo(users ...*types.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uuid.UUID]*types.User{}}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) copyOf(u *types.User) *types.User {
	c := *u
	return &c
}

func (r *fakeUserRepo) Create(_ dbctx.Context, users []*types.User) ([]*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return nil, errStore
	}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		u.CreatedAt = time.Now()
		r.users[u.ID] = r.copyOf(u)
		r.writes++
	}
	return users, nil
}

func (r *fakeUserRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReads {
		return nil, errStore
	}
	var out []*types.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, r.copyOf(u))
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetByEmails(_ dbctx.Context, emails []string) ([]*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReads {
		return nil, errStore
	}
	var out []*types.User
	for _, e := range emails {
		for _, u := range r.users {
			if strings.EqualFold(u.Email, strings.TrimSpace(e)) {
				out = append(out, r.copyOf(u))
			}
		}
	}
	return out, nil
}

func (r *fakeUserRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	rows, err := r.GetByEmails(dbc, []string{email})
	return len(rows) > 0, err
}

func (r *fakeUserRepo) Resolve(dbc dbctx.Context, id uuid.UUID, email string) (*types.User, error) {
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows[0], nil
	}
	if email == "" {
		return nil, nil
	}
	rows, err = r.GetByEmails(dbc, []string{email})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *fakeUserRepo) mutate(id uuid.UUID, fn func(u *types.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return errStore
	}
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	r.writes++
	return nil
}

func (r *fakeUserRepo) IncrementColumn(_ dbctx.Context, id uuid.UUID, column string) (int, int, error) {
	if !content.IsCounterColumn(column) {
		return 0, 0, repos.ErrUnknownColumn
	}
	var prev int
	err := r.mutate(id, func(u *types.User) {
		prev, _ = u.Counter(column)
		switch column {
		case "coding_questions_attempted":
			u.CodingQuestionsAttempted++
		case "technical_questions_attempted":
			u.TechnicalQuestionsAttempted++
		case "fundamental_questions_attempted":
			u.FundamentalQuestionsAttempted++
		case "algorithms_attempted":
			u.AlgorithmsAttempted++
		case "system_design_covered":
			u.SystemDesignCovered++
		}
	})
	return prev, prev + 1, err
}

func (r *fakeUserRepo) AddPoints(_ dbctx.Context, id uuid.UUID, amount int) (int, int, error) {
	var prev, total int
	err := r.mutate(id, func(u *types.User) {
		prev = u.TotalPoints
		u.TotalPoints += amount
		total = u.TotalPoints
	})
	return prev, total, err
}

func (r *fakeUserRepo) SaveStreak(_ dbctx.Context, id uuid.UUID, state types.StreakState, longest int) error {
	return r.mutate(id, func(u *types.User) {
		u.CurrentStreak = datatypes.NewJSONType(state)
		u.LongestStreak = longest
	})
}

func (r *fakeUserRepo) UpdateDisplayName(_ dbctx.Context, id uuid.UUID, name string) error {
	return r.mutate(id, func(u *types.User) { u.DisplayName = name })
}

func (r *fakeUserRepo) sorted() []*types.User {
	out := make([]*types.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, r.copyOf(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r *fakeUserRepo) ListByPoints(_ dbctx.Context, offset, limit int) ([]*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReads {
		return nil, errStore
	}
	all := r.sorted()
	if offset >= len(all) || limit <= 0 {
		return []*types.User{}, nil
	}
	return all[offset:min(len(all), offset+limit)], nil
}

func (r *fakeUserRepo) Count(dbctx.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReads {
		return 0, errStore
	}
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) get(id uuid.UUID) *types.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyOf(r.users[id])
}

type fakeTokenRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.UserToken
}

var _ repos.UserTokenRepo = (*fakeTokenRepo)(nil)

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: map[uuid.UUID]*types.UserToken{}}
}

func (r *fakeTokenRepo) Create(_ dbctx.Context, rows []*types.UserToken) ([]*types.UserToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range rows {
		c := *t
		r.rows[t.ID] = &c
	}
	return rows, nil
}

func (r *fakeTokenRepo) filter(keep func(t *types.UserToken) bool) []*types.UserToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.UserToken
	for _, t := range r.rows {
		if keep(t) {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}

func (r *fakeTokenRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.UserToken, error) {
	return r.filter(func(t *types.UserToken) bool { return containsID(ids, t.ID) }), nil
}

func (r *fakeTokenRepo) GetByUserIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.UserToken, error) {
	return r.filter(func(t *types.UserToken) bool { return containsID(ids, t.UserID) }), nil
}

func (r *fakeTokenRepo) GetByAccessTokens(_ dbctx.Context, toks []string) ([]*types.UserToken, error) {
	return r.filter(func(t *types.UserToken) bool { return containsString(toks, t.AccessToken) }), nil
}

func (r *fakeTokenRepo) GetByRefreshTokens(_ dbctx.Context, toks []string) ([]*types.UserToken, error) {
	return r.filter(func(t *types.UserToken) bool { return containsString(toks, t.RefreshToken) }), nil
}

func (r *fakeTokenRepo) remove(drop func(t *types.UserToken) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.rows {
		if drop(t) {
			delete(r.rows, id)
			n++
		}
	}
	return n
}

func (r *fakeTokenRepo) FullDeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	r.remove(func(t *types.UserToken) bool { return containsID(ids, t.ID) })
	return nil
}

func (r *fakeTokenRepo) FullDeleteByUserIDs(_ dbctx.Context, ids []uuid.UUID) error {
	r.remove(func(t *types.UserToken) bool { return containsID(ids, t.UserID) })
	return nil
}

func (r *fakeTokenRepo) FullDeleteExpired(_ dbctx.Context, now time.Time) (int64, error) {
	return r.remove(func(t *types.UserToken) bool { return t.ExpiresAt.Before(now) }), nil
}

func (r *fakeTokenRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeItemRepo struct {
	items map[string]map[int]*content.Item
}

var _ repos.ItemRepo = (*fakeItemRepo)(nil)

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[string]map[int]*content.Item{}}
}

func (r *fakeItemRepo) seed(cat string, n int) {
	c, _ := content.Lookup(cat)
	items := make([]*content.Item, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, &content.Item{ID: i, Title: "q", Prompt: "p", Answer: "a", Explanation: "e"})
	}
	_ = r.Upsert(dbctx.Context{}, c, items)
}

func (r *fakeItemRepo) GetByID(_ dbctx.Context, cat content.Category, id int) (*content.Item, error) {
	return r.items[cat.Table][id], nil
}

func (r *fakeItemRepo) ListRange(_ dbctx.Context, cat content.Category, first, last int) ([]*content.Item, error) {
	var out []*content.Item
	for id := first; id <= last; id++ {
		if it, ok := r.items[cat.Table][id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) Count(_ dbctx.Context, cat content.Category) (int64, error) {
	return int64(len(r.items[cat.Table])), nil
}

func (r *fakeItemRepo) Upsert(_ dbctx.Context, cat content.Category, items []*content.Item) error {
	if r.items[cat.Table] == nil {
		r.items[cat.Table] = map[int]*content.Item{}
	}
	for _, it := range items {
		r.items[cat.Table][it.ID] = it
	}
	return nil
}

func (r *fakeItemRepo) DeleteAll(_ dbctx.Context, cat content.Category) (int64, error) {
	n := int64(len(r.items[cat.Table]))
	delete(r.items, cat.Table)
	return n, nil
}

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	e.msgs = append(e.msgs, msg)
	e.mu.Unlock()
}

func (e *recordingEmitter) events() []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(e.msgs))
	for _, m := range e.msgs {
		out = append(out, m.Event)
	}
	return out
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func containsString(vals []string, v string) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}

func withUser(u *types.User) context.Context {
	return ctxutil.WithIdentity(context.Background(), &ctxutil.Identity{UserID: u.ID, Email: u.Email})
}

func streakUser(last string, length int) *types.User {
	return &types.User{
		ID:            uuid.New(),
		Email:         "learner@example.com",
		CurrentStreak: datatypes.NewJSONType(types.StreakState{LastUpdate: last, Length: length}),
		LongestStreak: length,
	}
}
