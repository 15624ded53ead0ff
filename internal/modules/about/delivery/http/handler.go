package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledes.com/labportal/internal/modules/about/dto"
	aboutService "ledes.com/labportal/internal/modules/about/service"
	"ledes.com/labportal/pkg/response"
	"ledes.com/labportal/pkg/validator"
)

type AboutHandler struct {
	aboutService aboutService.AboutService
}

func NewAboutHandler(aboutService aboutService.AboutService) *AboutHandler {
	return &AboutHandler{aboutService: aboutService}
}

func (h *AboutHandler) Get(c *gin.Context) {
	res, err := h.aboutService.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Configuração Sobre Nós encontrada.", res)
}

func (h *AboutHandler) Update(c *gin.Context) {
	var input dto.UpdateAboutRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.aboutService.Update(c.Request.Context(), response.OptionalAccount(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Configuração Sobre Nós editada com sucesso.", res)
}
