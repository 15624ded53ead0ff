package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledes.com/labportal/internal/modules/auth/dto"
	authService "ledes.com/labportal/internal/modules/auth/service"
	"ledes.com/labportal/pkg/response"
	"ledes.com/labportal/pkg/token"
	"ledes.com/labportal/pkg/validator"
)

type AuthHandler struct {
	authService  authService.AuthService
	maxAge       int
	secureCookie bool
}

func NewAuthHandler(authService authService.AuthService, tokens *token.Manager, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		maxAge:       int(tokens.TTL().Seconds()),
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(token.CookieName, res.Token, h.maxAge, "/", "", h.secureCookie, true)
	response.JSON(c, http.StatusOK, "Login realizado com sucesso.", res)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(token.CookieName, "", -1, "/", "", h.secureCookie, true)
	response.JSON(c, http.StatusOK, "Logout realizado com sucesso.", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	account, err := response.GetAccount(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Usuário autenticado.", h.authService.Me(account))
}
