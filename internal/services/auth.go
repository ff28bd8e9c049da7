package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	appdb "github.com/yungbote/prepstack-backend/internal/data/db"
	"github.com/yungbote/prepstack-backend/internal/data/repos"
	"github.com/yungbote/prepstack-backend/internal/data/tx"
	types "github.com/yungbote/prepstack-backend/internal/domain"
	"github.com/yungbote/prepstack-backend/internal/platform/apierr"
	"github.com/yungbote/prepstack-backend/internal/platform/ctxutil"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

type AuthConfig struct {
	JWTSecretKey string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	BcryptCost   int
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"omitempty,max=64"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context) error
	ParseAccessToken(ctx context.Context, tokenString string) (*ctxutil.Identity, error)
	PurgeExpired(ctx context.Context) (int64, error)
	AccessTTL() time.Duration
}

type accessClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type authService struct {
	log           *logger.Logger
	runner        tx.TxRunner
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	cfg           AuthConfig
	now           func() time.Time
}

func NewAuthService(
	log *logger.Logger,
	runner tx.TxRunner,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	cfg AuthConfig,
) AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		log:           log.With("service", "AuthService"),
		runner:        runner,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		cfg:           cfg,
		now:           time.Now,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.cfg.AccessTTL }

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := validateStruct("invalid_request", ErrInvalidRequest, in); err != nil {
		return nil, err
	}
	email := in.Email
	displayName := in.DisplayName
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	exists, err := as.userRepo.EmailExists(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		as.log.Error("email lookup failed", "error", err)
		return nil, storeFailed("register")
	}
	if exists {
		return nil, apierr.Conflict("email_taken", ErrEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &types.User{
		Email:       email,
		Password:    string(hash),
		DisplayName: displayName,
	}
	if _, err := as.userRepo.Create(dbctx.Context{Ctx: ctx}, []*types.User{user}); err != nil {
		if appdb.IsUniqueViolation(err) {
			return nil, apierr.Conflict("email_taken", ErrEmailTaken)
		}
		as.log.Error("create user failed", "error", err)
		return nil, storeFailed("register")
	}
	as.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid("invalid_request", ErrInvalidRequest, "email and password are required")
	}
	users, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		as.log.Error("login lookup failed", "error", err)
		return nil, storeFailed("login")
	}
	if len(users) == 0 {
		return nil, apierr.Unauthenticated(ErrInvalidCredentials)
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apierr.Unauthenticated(ErrInvalidCredentials)
	}

	var pair *TokenPair
	err = as.runner.InTx(ctx, func(dbc dbctx.Context) error {
		p, err := as.issueTokens(dbc, user)
		pair = p
		return err
	})
	if err != nil {
		as.log.Error("issue tokens failed", "error", err, "user_id", user.ID)
		return nil, storeFailed("login")
	}
	return pair, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, invalid("invalid_request", ErrInvalidRequest, "refresh_token is required")
	}
	found, err := as.userTokenRepo.GetByRefreshTokens(dbctx.Context{Ctx: ctx}, []string{refreshToken})
	if err != nil {
		as.log.Error("refresh lookup failed", "error", err)
		return nil, storeFailed("refresh")
	}
	if len(found) == 0 {
		return nil, apierr.Unauthenticated(ErrInvalidToken)
	}
	existing := found[0]
	if existing.ExpiresAt.Before(as.now()) {
		if err := as.userTokenRepo.FullDeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{existing.ID}); err != nil {
			as.log.Warn("delete expired refresh token failed", "error", err)
		}
		return nil, apierr.Unauthenticated(fmt.Errorf("%w: refresh token expired", ErrInvalidToken))
	}

	var pair *TokenPair
	err = as.runner.InTx(ctx, func(dbc dbctx.Context) error {
		users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return apierr.Unauthenticated(ErrInvalidToken)
		}
		if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return err
		}
		p, err := as.issueTokens(dbc, users[0])
		pair = p
		return err
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		as.log.Error("refresh failed", "error", err)
		return nil, storeFailed("refresh")
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context) error {
	id := ctxutil.GetIdentity(ctx)
	if id == nil || id.UserID == uuid.Nil {
		return unauthenticated("")
	}
	if err := as.userTokenRepo.FullDeleteByUserIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{id.UserID}); err != nil {
		as.log.Error("logout failed", "error", err, "user_id", id.UserID)
		return storeFailed("logout")
	}
	return nil
}

// ParseAccessToken verifies signature and expiry, then requires the session
// row to still exist so logged-out tokens stop working.
func (as *authService) ParseAccessToken(ctx context.Context, tokenString string) (*ctxutil.Identity, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(as.cfg.JWTSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	rows, err := as.userTokenRepo.GetByAccessTokens(dbctx.Context{Ctx: ctx}, []string{tokenString})
	if err != nil {
		as.log.Warn("session lookup failed", "error", err)
		return nil, err
	}
	if len(rows) == 0 || rows[0].UserID != userID {
		return nil, fmt.Errorf("%w: session ended", ErrInvalidToken)
	}
	return &ctxutil.Identity{
		UserID:    userID,
		Email:     claims.Email,
		SessionID: rows[0].ID,
	}, nil
}

func (as *authService) PurgeExpired(ctx context.Context) (int64, error) {
	return as.userTokenRepo.FullDeleteExpired(dbctx.Context{Ctx: ctx}, as.now())
}

func (as *authService) issueTokens(dbc dbctx.Context, user *types.User) (*TokenPair, error) {
	now := as.now()
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: uuid.New().String(),
		ExpiresAt:    now.Add(as.cfg.RefreshTTL),
	}
	claims := accessClaims{
		Email:     user.Email,
		SessionID: row.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.AccessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.cfg.JWTSecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	row.AccessToken = signed
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{row}); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  signed,
		RefreshToken: row.RefreshToken,
		ExpiresIn:    int(as.cfg.AccessTTL.Seconds()),
	}, nil
}
