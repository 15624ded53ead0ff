package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/entity"
	accountDto "ledes.com/labportal/internal/modules/account/dto"
	"ledes.com/labportal/internal/modules/auth/dto"
	"ledes.com/labportal/pkg/apperror"
	"ledes.com/labportal/pkg/credential"
	"ledes.com/labportal/pkg/logger"
	"ledes.com/labportal/pkg/media"
	"ledes.com/labportal/pkg/ratelimiter"
	"ledes.com/labportal/pkg/token"
)

const msgInvalidCredentials = "Usuário e/ou senha incorretos."

// AccountLookup finds active accounts by login.
type AccountLookup interface {
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
}

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Me(account *entity.Account) *accountDto.AccountResponse
}

type authService struct {
	accounts AccountLookup
	tokens   *token.Manager
	limiter  *ratelimiter.Limiter
	resolver media.Resolver
}

func NewAuthService(accounts AccountLookup, tokens *token.Manager, limiter *ratelimiter.Limiter, resolver media.Resolver) AuthService {
	return &authService{accounts: accounts, tokens: tokens, limiter: limiter, resolver: resolver}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	login := strings.ToLower(strings.TrimSpace(input.Email))
	throttleKey := credential.HashIdentifier(login)

	ok, wait, err := s.limiter.Allow(ctx, throttleKey)
	if err != nil {
		// throttle errors fail open
		logger.FromContext(ctx).WithError(err).Warn("login throttle unavailable")
	} else if !ok {
		return nil, apperror.New(http.StatusTooManyRequests, "Muitas tentativas de login, tente novamente mais tarde.", apperror.ErrRateLimitExceeded).
			WithData(map[string]int{"retry_after_seconds": int(math.Ceil(wait.Seconds()))})
	}

	account, err := s.accounts.FindByEmail(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		return nil, err
	}

	if !credential.VerifyPassword(input.Password, account.PasswordHash) {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	if err := s.limiter.Reset(ctx, throttleKey); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("failed to reset login throttle")
	}

	signed, expiresAt, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &dto.AuthResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.Unix(),
		Account:   accountDto.NewAccountResponse(account, s.resolver),
	}, nil
}

func (s *authService) Me(account *entity.Account) *accountDto.AccountResponse {
	return accountDto.NewAccountResponse(account, s.resolver)
}
