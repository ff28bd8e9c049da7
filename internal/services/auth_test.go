package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/prepstack-backend/internal/data/repos/testutil"
	"github.com/yungbote/prepstack-backend/internal/platform/ctxutil"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func newTestAuth(t *testing.T) (*authService, *fakeUserRepo, *fakeTokenRepo) {
	t.Helper()
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewAuthService(logger.NewNop(), &testutil.InjectedTxRunner{}, users, tokens, AuthConfig{
		JWTSecretKey: testSecret,
		AccessTTL:    time.Minute,
		RefreshTTL:   time.Hour,
		BcryptCost:   bcrypt.MinCost,
	})
	return svc.(*authService), users, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, users, tokens := newTestAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "  Ada@Example.com ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "ada", u.DisplayName)
	assert.NotEqual(t, "correct-horse", users.get(u.ID).Password)

	_, err = svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "another-pass"})
	requireCode(t, err, http.StatusConflict, "email_taken")

	_, err = svc.Login(ctx, "ada@example.com", "wrong-password")
	requireCode(t, err, http.StatusUnauthorized, "unauthenticated")

	pair, err := svc.Login(ctx, "ADA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, 60, pair.ExpiresIn)
	assert.Equal(t, 1, tokens.len())

	id, err := svc.ParseAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "ada@example.com", id.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	cases := []struct {
		in   RegisterInput
		want string
	}{
		{RegisterInput{Email: "not-an-email", Password: "long-enough"}, "email is not a valid email"},
		{RegisterInput{Email: "a@example.com", Password: "short"}, "password must be at least 8 characters"},
		{RegisterInput{Email: "   ", Password: "long-enough"}, "email is required"},
		{RegisterInput{Email: "a@example.com", Password: "long-enough", DisplayName: strings.Repeat("n", 65)}, "display_name must be at most 64 characters"},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.in)
		requireCode(t, err, http.StatusBadRequest, "invalid_request")
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Contains(t, err.Error(), tc.want)
	}
	assert.Zero(t, users.writes)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	svc, _, tokens := newTestAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.Equal(t, 1, tokens.len())

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	requireCode(t, err, http.StatusUnauthorized, "unauthenticated")

	_, err = svc.ParseAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "rotated session must stop authenticating")

	id, err := svc.ParseAccessToken(ctx, next.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctxutil.WithIdentity(ctx, id)))
	assert.Zero(t, tokens.len())
	_, err = svc.ParseAccessToken(ctx, next.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshExpired(t *testing.T) {
	svc, _, tokens := newTestAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	requireCode(t, err, http.StatusUnauthorized, "unauthenticated")
	assert.Zero(t, tokens.len())
}

func TestParseAccessTokenRejectsForeignTokens(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"})
	signed, err := other.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(ctx, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(ctx, none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseAccessToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPurgeExpired(t *testing.T) {
	svc, _, tokens := newTestAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err = svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Zero(t, tokens.len())
}
