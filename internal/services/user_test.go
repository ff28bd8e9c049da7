package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

func TestUpdateDisplayName(t *testing.T) {
	u := &types.User{ID: uuid.New(), Email: "learner@example.com", DisplayName: "learner"}
	users := newFakeUserRepo(u)
	svc := NewUserService(logger.NewNop(), users)

	view, err := svc.UpdateDisplayName(withUser(u), "  Ada Lovelace  ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", view.DisplayName)
	assert.Equal(t, "Ada Lovelace", users.get(u.ID).DisplayName)

	// Length counts characters, not bytes.
	wide := strings.Repeat("é", 64)
	view, err = svc.UpdateDisplayName(withUser(u), wide)
	require.NoError(t, err)
	assert.Equal(t, wide, view.DisplayName)
}

func TestUpdateDisplayNameValidation(t *testing.T) {
	u := &types.User{ID: uuid.New(), Email: "learner@example.com", DisplayName: "learner"}
	users := newFakeUserRepo(u)
	svc := NewUserService(logger.NewNop(), users)

	cases := map[string]string{
		"":                      "display_name is required",
		"   ":                   "display_name is required",
		strings.Repeat("x", 65): "display_name must be at most 64 characters",
	}
	for name, want := range cases {
		_, err := svc.UpdateDisplayName(withUser(u), name)
		requireCode(t, err, http.StatusBadRequest, "invalid_request")
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Contains(t, err.Error(), want)
	}
	assert.Equal(t, "learner", users.get(u.ID).DisplayName)
	assert.Zero(t, users.writes)
}

func TestUpdateDisplayNameRequiresIdentity(t *testing.T) {
	svc := NewUserService(logger.NewNop(), newFakeUserRepo())
	_, err := svc.UpdateDisplayName(context.Background(), "Ada")
	requireCode(t, err, http.StatusUnauthorized, "unauthenticated")
}
