package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error)
	GetByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*types.UserToken, error)
	GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error)
	FullDeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error
	FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
	FullDeleteExpired(dbc dbctx.Context, now time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}

	if len(userTokens) == 0 {
		return []*types.UserToken{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&userTokens).Error; err != nil {
		return nil, err
	}

	return userTokens, nil
}

func (utr *userTokenRepo) GetByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) ([]*types.UserToken, error) {
	return utr.findIn(dbc, "id", tokenIDs, len(tokenIDs))
}

func (utr *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	return utr.findIn(dbc, "user_id", userIDs, len(userIDs))
}

func (utr *userTokenRepo) GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*types.UserToken, error) {
	return utr.findIn(dbc, "access_token", accessTokens, len(accessTokens))
}

func (utr *userTokenRepo) GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error) {
	return utr.findIn(dbc, "refresh_token", refreshTokens, len(refreshTokens))
}

func (utr *userTokenRepo) findIn(dbc dbctx.Context, column string, values any, n int) ([]*types.UserToken, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}

	var results []*types.UserToken
	if n == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where(column+" IN ?", values).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (utr *userTokenRepo) FullDeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}

	if len(tokenIDs) == 0 {
		return nil
	}

	return transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("id IN ?", tokenIDs).
		Delete(&types.UserToken{}).Error
}

func (utr *userTokenRepo) FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}

	if len(userIDs) == 0 {
		return nil
	}

	return transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("user_id IN ?", userIDs).
		Delete(&types.UserToken{}).Error
}

// FullDeleteExpired purges sessions whose refresh window has closed.
func (utr *userTokenRepo) FullDeleteExpired(dbc dbctx.Context, now time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = utr.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("expires_at < ?", now).
		Delete(&types.UserToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		utr.log.Info("Purged expired sessions", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
