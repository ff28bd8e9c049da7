package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/domain/content"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

var ErrUnknownColumn = errors.New("column is not an incrementable counter")

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
	Resolve(dbc dbctx.Context, userID uuid.UUID, email string) (*types.User, error)
	IncrementColumn(dbc dbctx.Context, userID uuid.UUID, column string) (previous int, current int, err error)
	AddPoints(dbc dbctx.Context, userID uuid.UUID, amount int) (previous int, total int, err error)
	SaveStreak(dbc dbctx.Context, userID uuid.UUID, state types.StreakState, longest int) error
	UpdateDisplayName(dbc dbctx.Context, userID uuid.UUID, displayName string) error
	ListByPoints(dbc dbctx.Context, offset, limit int) ([]*types.User, error)
	Count(dbc dbctx.Context) (int64, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	if len(users) == 0 {
		return []*types.User{}, nil
	}
	for _, u := range users {
		u.Email = normalizeEmail(u.Email)
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.User

	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	ur.warnUnreadableStreaks(results)
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.User
	if len(userEmails) == 0 {
		return results, nil
	}
	lowered := make([]string, 0, len(userEmails))
	for _, e := range userEmails {
		if e = normalizeEmail(e); e != "" {
			lowered = append(lowered, e)
		}
	}
	if len(lowered) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("LOWER(email) IN ?", lowered).
		Find(&results).Error; err != nil {
		return nil, err
	}
	ur.warnUnreadableStreaks(results)
	return results, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	var count int64

	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("LOWER(email) = ?", normalizeEmail(userEmail)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Resolve looks the profile up by id and, when that misses, by lower-cased
// email. It returns (nil, nil) when neither key matches a row.
func (ur *userRepo) Resolve(dbc dbctx.Context, userID uuid.UUID, email string) (*types.User, error) {
	if userID != uuid.Nil {
		rows, err := ur.GetByIDs(dbc, []uuid.UUID{userID})
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			return rows[0], nil
		}
	}
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}
	rows, err := ur.GetByEmails(dbc, []string{email})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if userID != uuid.Nil {
		ur.log.Debug("Profile resolved by email fallback", "user_id", userID.String())
	}
	return rows[0], nil
}

func (ur *userRepo) IncrementColumn(dbc dbctx.Context, userID uuid.UUID, column string) (int, int, error) {
	if !content.IsCounterColumn(column) {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	var previous, current int
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var row struct{ Value *int }
		res := txx.Model(&types.User{}).
			Select(fmt.Sprintf("%s AS value", column)).
			Where("id = ?", userID).
			Take(&row)
		if res.Error != nil {
			return res.Error
		}
		if row.Value != nil {
			previous = *row.Value
		}
		current = previous + 1
		return txx.Model(&types.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				column:       current,
				"updated_at": time.Now().UTC(),
			}).Error
	})
	if err != nil {
		return 0, 0, err
	}
	return previous, current, nil
}

func (ur *userRepo) AddPoints(dbc dbctx.Context, userID uuid.UUID, amount int) (int, int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	var previous, total int
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var row struct{ TotalPoints int }
		if err := txx.Model(&types.User{}).
			Select("total_points").
			Where("id = ?", userID).
			Take(&row).Error; err != nil {
			return err
		}
		if err := txx.Model(&types.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"total_points": gorm.Expr("total_points + ?", amount),
				"updated_at":   time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		if err := txx.Model(&types.User{}).
			Select("total_points").
			Where("id = ?", userID).
			Take(&row).Error; err != nil {
			return err
		}
		total = row.TotalPoints
		previous = total - amount
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return previous, total, nil
}

func (ur *userRepo) SaveStreak(dbc dbctx.Context, userID uuid.UUID, state types.StreakState, longest int) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		res := txx.Model(&types.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"current_streak": datatypes.NewJSONType(state),
				"longest_streak": longest,
				"updated_at":     time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (ur *userRepo) UpdateDisplayName(dbc dbctx.Context, userID uuid.UUID, displayName string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"display_name": displayName,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// ListByPoints returns one leaderboard page: points descending, ties broken
// by account age and then id so pages never overlap.
func (ur *userRepo) ListByPoints(dbc dbctx.Context, offset, limit int) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.User
	if limit <= 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Order("total_points DESC").
		Order("created_at ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	ur.warnUnreadableStreaks(results)
	return results, nil
}

func (ur *userRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// warnUnreadableStreaks flags rows whose current_streak did not decode. They
// load as an absent streak and the next update starts a new one.
func (ur *userRepo) warnUnreadableStreaks(rows []*types.User) {
	for _, u := range rows {
		if u.Streak().Unreadable() {
			ur.log.Warn("Unreadable current_streak, treating as absent", "user_id", u.ID.String())
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
