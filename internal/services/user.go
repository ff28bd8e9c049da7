package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/prepstack-backend/internal/data/repos"
	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type displayNameUpdate struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=64"`
}

type ProfileView struct {
	*types.User
	TotalQuestionsAttempted int `json:"total_questions_attempted"`
}

type UserService interface {
	GetMe(ctx context.Context) (*ProfileView, error)
	UpdateDisplayName(ctx context.Context, displayName string) (*ProfileView, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) GetMe(ctx context.Context) (*ProfileView, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.Resolve(dbctx.Context{Ctx: ctx}, id.UserID, id.Email)
	if err != nil {
		us.log.Error("load profile failed", "error", err)
		return nil, storeFailed("load profile")
	}
	if u == nil {
		return nil, profileNotFound()
	}
	return profileView(u), nil
}

func (us *userService) UpdateDisplayName(ctx context.Context, displayName string) (*ProfileView, error) {
	displayName = strings.TrimSpace(displayName)
	if err := validateStruct("invalid_request", ErrInvalidRequest, displayNameUpdate{DisplayName: displayName}); err != nil {
		return nil, err
	}
	me, err := us.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	if err := us.userRepo.UpdateDisplayName(dbctx.Context{Ctx: ctx}, me.ID, displayName); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, profileNotFound()
		}
		us.log.Error("update display name failed", "error", err, "user_id", me.ID)
		return nil, updateFailed()
	}
	me.DisplayName = displayName
	return me, nil
}

func profileView(u *types.User) *ProfileView {
	return &ProfileView{User: u, TotalQuestionsAttempted: u.QuestionsAttempted()}
}
