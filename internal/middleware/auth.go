package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/pkg/apperror"
	"ledes.com/labportal/pkg/logger"
	"ledes.com/labportal/pkg/response"
	"ledes.com/labportal/pkg/token"
)

// AccountFinder loads an active account by id.
type AccountFinder interface {
	FindByID(ctx context.Context, id uint) (*entity.Account, error)
}

type AuthMiddleware struct {
	accounts AccountFinder
	tokens   *token.Manager
}

func NewAuthMiddleware(accounts AccountFinder, tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{accounts: accounts, tokens: tokens}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(token.CookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// authenticate resolves the session to an active account. Tokens for deleted
// or missing accounts are treated as no session.
func (m *AuthMiddleware) authenticate(c *gin.Context) (*entity.Account, error) {
	raw := extractToken(c)
	if raw == "" {
		return nil, apperror.Unauthorized("Não autorizado.")
	}
	id, err := m.tokens.Parse(raw)
	if err != nil {
		return nil, apperror.Unauthorized("Sessão inválida ou expirada.")
	}
	account, err := m.accounts.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("Não autorizado.")
		}
		return nil, err
	}
	return account, nil
}

func (m *AuthMiddleware) attach(c *gin.Context, account *entity.Account) {
	response.SetAccount(c, account)
	ctx := logger.ContextWithIdentity(c.Request.Context(), strconv.FormatUint(uint64(account.ID), 10))
	c.Request = c.Request.WithContext(ctx)
}

// RequireAuth rejects requests without a valid session. An account already
// attached by OptionalAuth is reused.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if response.OptionalAccount(c) != nil {
			c.Next()
			return
		}
		account, err := m.authenticate(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		m.attach(c, account)
		c.Next()
	}
}

// OptionalAuth attaches the account when a valid session is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := m.authenticate(c)
		switch {
		case err == nil:
			m.attach(c, account)
		case apperror.MapErrorToStatus(err) != http.StatusUnauthorized:
			logger.FromContext(c.Request.Context()).WithError(err).Warn("failed to load session account")
		}
		c.Next()
	}
}
