package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/prepstack-backend/internal/data/repos/auth"
	"github.com/yungbote/prepstack-backend/internal/data/repos/content"
	"github.com/yungbote/prepstack-backend/internal/data/repos/user"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type ItemRepo = content.ItemRepo

var ErrUnknownColumn = user.ErrUnknownColumn

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}
func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return content.NewItemRepo(db, baseLog)
}
