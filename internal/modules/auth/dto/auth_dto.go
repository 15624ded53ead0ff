package dto

import (
	accountDto "ledes.com/labportal/internal/modules/account/dto"
)

// LoginInput accepts any login string; seeded accounts use plain names such as "admin".
type LoginInput struct {
	Email    string `json:"email" binding:"required,max=150"`
	Password string `json:"password" binding:"required,max=256"`
}

type AuthResponse struct {
	Token     string                      `json:"token"`
	TokenType string                      `json:"token_type"`
	ExpiresAt int64                       `json:"expires_at"`
	Account   *accountDto.AccountResponse `json:"account"`
}
