package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledes.com/labportal/internal/modules/account/dto"
	accountService "ledes.com/labportal/internal/modules/account/service"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/media"
	"ledes.com/labportal/pkg/response"
	"ledes.com/labportal/pkg/validator"
)

const photoField = "photo"

type AccountHandler struct {
	accountService accountService.AccountService
}

func NewAccountHandler(accountService accountService.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) Create(c *gin.Context) {
	var input dto.CreateAccountRequest
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	photo, err := media.FromForm(c, photoField)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.accountService.Create(c.Request.Context(), response.OptionalAccount(c), input, photo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, "Usuário criado com sucesso.", res)
}

func (h *AccountHandler) Update(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	var input dto.UpdateAccountRequest
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	photo, err := media.FromForm(c, photoField)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.accountService.Update(c.Request.Context(), response.OptionalAccount(c), uri.ID, input, photo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Usuário editado com sucesso.", res)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	if err := h.accountService.Delete(c.Request.Context(), response.OptionalAccount(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Usuário excluído com sucesso.", nil)
}

func (h *AccountHandler) Get(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.accountService.Get(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Usuário encontrado.", res)
}

func (h *AccountHandler) List(c *gin.Context) {
	var query commonDto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.accountService.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Usuários encontrados.", res)
}
