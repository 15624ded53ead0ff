package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledes.com/labportal/internal/modules/reference/dto"
	referenceService "ledes.com/labportal/internal/modules/reference/service"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/response"
	"ledes.com/labportal/pkg/validator"
)

// ReferenceHandler serves one lookup table.
type ReferenceHandler struct {
	service referenceService.ReferenceService
}

func NewReferenceHandler(service referenceService.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

func (h *ReferenceHandler) Create(c *gin.Context) {
	var input dto.ReferenceRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.service.Create(c.Request.Context(), response.OptionalAccount(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, h.service.Labels().Created(), res)
}

func (h *ReferenceHandler) Update(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	var input dto.ReferenceRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.service.Update(c.Request.Context(), response.OptionalAccount(c), uri.ID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, h.service.Labels().Updated(), res)
}

func (h *ReferenceHandler) Delete(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), response.OptionalAccount(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, h.service.Labels().Deleted(), nil)
}

func (h *ReferenceHandler) Get(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.service.Get(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, h.service.Labels().Found(), res)
}

func (h *ReferenceHandler) List(c *gin.Context) {
	var query commonDto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, h.service.Labels().Listed(), res)
}

// Register mounts the CRUD routes. write guards the mutating routes.
func (h *ReferenceHandler) Register(rg *gin.RouterGroup, write gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", write, h.Create)
	rg.PATCH("/:id", write, h.Update)
	rg.DELETE("/:id", write, h.Delete)
}
