package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/prepstack-backend/internal/data/repos"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo
	Item      repos.ItemRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),
		Item:      repos.NewItemRepo(db, log),
	}
}
