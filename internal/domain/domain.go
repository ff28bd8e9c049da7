package domain

import (
	"github.com/yungbote/prepstack-backend/internal/domain/auth"
	"github.com/yungbote/prepstack-backend/internal/domain/content"
	"github.com/yungbote/prepstack-backend/internal/domain/user"
)

type User = user.User
type StreakState = user.StreakState
type UserToken = auth.UserToken
type ContentItem = content.Item
type Category = content.Category
