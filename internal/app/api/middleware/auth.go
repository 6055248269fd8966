package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/pkg/config"
	"github.com/fatflowers/notemarket/pkg/logctx"
	"github.com/fatflowers/notemarket/pkg/response"
	"github.com/fatflowers/notemarket/pkg/types"
)

const KeyIdentity = "identity"

// Claims are issued by the account service; Subject is the user id.
type Claims struct {
	jwt.StandardClaims
	Role types.Role `json:"role,omitempty"`
}

// ParseToken validates an HS256 token and returns the identity it carries.
func ParseToken(secret, raw string) (*types.Identity, error) {
	if secret == "" {
		return nil, errors.New("jwt secret not configured")
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	role := claims.Role
	if role == "" {
		role = types.RoleUser
	}
	return &types.Identity{UserID: claims.Subject, Role: role}, nil
}

// Authenticate resolves the caller from a Bearer header or the session
// cookie. Requests without a valid token continue as anonymous.
func Authenticate(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" && cfg.CookieName != "" {
			raw, _ = c.Cookie(cfg.CookieName)
		}
		if raw == "" {
			c.Next()
			return
		}
		id, err := ParseToken(cfg.JWTSecret, raw)
		if err != nil {
			logctx.FromGin(c, zap.NewNop().Sugar()).Infow("auth_token_rejected", "err", err)
			c.Next()
			return
		}
		c.Set(KeyIdentity, id)
		c.Set(logctx.KeyUserID, id.UserID)
		ctx := context.WithValue(c.Request.Context(), logctx.KeyUserID, id.UserID)
		c.Request = c.Request.WithContext(ctx)
		if lg, ok := c.Get(logctx.KeyLogger); ok {
			if l, ok := lg.(*zap.SugaredLogger); ok && l != nil {
				setRequestLogger(c, l.With("user_id", id.UserID))
			}
		}
		c.Next()
	}
}

// IdentityFrom returns the authenticated caller, or nil for anonymous requests.
func IdentityFrom(c *gin.Context) *types.Identity {
	if v, ok := c.Get(KeyIdentity); ok {
		if id, ok := v.(*types.Identity); ok {
			return id
		}
	}
	return nil
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, types.NoticeAuthenticationFirst.Message()))
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := IdentityFrom(c)
		if !id.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		if !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}
		c.Next()
	}
}

func bearerToken(h string) string {
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
