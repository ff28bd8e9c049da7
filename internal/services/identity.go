package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/prepstack-backend/internal/platform/ctxutil"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

const (
	SourceBearer       = "bearer"
	SourceCookieToken  = "cookie_token"
	SourceQueryToken   = "query_token"
	SourceCookieUserID = "cookie_user_id"

	AccessTokenCookie = "access_token"
	UserIDCookie      = "user_id"
	UserEmailCookie   = "user_email"
)

// TokenParser is the slice of AuthService the resolver needs.
type TokenParser interface {
	ParseAccessToken(ctx context.Context, tokenString string) (*ctxutil.Identity, error)
}

type IdentityResolver interface {
	Resolve(r *http.Request) (*ctxutil.Identity, error)
}

type identityResolver struct {
	log               *logger.Logger
	tokens            TokenParser
	allowCookieUserID bool
}

func NewIdentityResolver(log *logger.Logger, tokens TokenParser, allowCookieUserID bool) IdentityResolver {
	return &identityResolver{
		log:               log.With("service", "IdentityResolver"),
		tokens:            tokens,
		allowCookieUserID: allowCookieUserID,
	}
}

// Resolve walks the credential sources in order and stops at the first one
// present. A present but invalid token fails resolution; it never falls
// through to a weaker source.
func (ir *identityResolver) Resolve(r *http.Request) (*ctxutil.Identity, error) {
	if r == nil {
		return nil, unauthenticated("no request")
	}
	if tok, ok := bearerToken(r); ok {
		return ir.fromToken(r.Context(), tok, SourceBearer)
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(c.Value) != "" {
		return ir.fromToken(r.Context(), c.Value, SourceCookieToken)
	}
	if q := strings.TrimSpace(r.URL.Query().Get("token")); q != "" {
		return ir.fromToken(r.Context(), q, SourceQueryToken)
	}
	if ir.allowCookieUserID {
		if c, err := r.Cookie(UserIDCookie); err == nil && strings.TrimSpace(c.Value) != "" {
			id, perr := uuid.Parse(strings.TrimSpace(c.Value))
			if perr != nil {
				return nil, unauthenticated("malformed user_id cookie")
			}
			out := &ctxutil.Identity{UserID: id, Source: SourceCookieUserID}
			if ec, err := r.Cookie(UserEmailCookie); err == nil {
				out.Email = strings.ToLower(strings.TrimSpace(ec.Value))
			}
			return out, nil
		}
	}
	return nil, unauthenticated("missing credentials")
}

func (ir *identityResolver) fromToken(ctx context.Context, tok, source string) (*ctxutil.Identity, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, unauthenticated("empty token")
	}
	if ir.tokens == nil {
		return nil, unauthenticated("token auth unavailable")
	}
	id, err := ir.tokens.ParseAccessToken(ctx, tok)
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) {
			ir.log.Warn("token verification failed", "error", err, "source", source)
		}
		return nil, unauthenticated("invalid or expired token")
	}
	id.Source = source
	return id, nil
}

// bearerToken reports ok when an Authorization header uses the Bearer scheme,
// even if the token part is empty.
func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 6 || !strings.EqualFold(h[:6], "bearer") || (len(h) > 6 && h[6] != ' ') {
		return "", false
	}
	return strings.TrimSpace(h[6:]), true
}
