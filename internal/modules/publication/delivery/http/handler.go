package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledes.com/labportal/internal/modules/publication/dto"
	publicationService "ledes.com/labportal/internal/modules/publication/service"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/media"
	"ledes.com/labportal/pkg/response"
	"ledes.com/labportal/pkg/validator"
)

const (
	coverField     = "cover"
	thumbnailField = "thumbnail"
)

type PublicationHandler struct {
	publicationService publicationService.PublicationService
}

func NewPublicationHandler(publicationService publicationService.PublicationService) *PublicationHandler {
	return &PublicationHandler{publicationService: publicationService}
}

func images(c *gin.Context) (publicationService.Images, error) {
	cover, err := media.FromForm(c, coverField)
	if err != nil {
		return publicationService.Images{}, err
	}
	thumbnail, err := media.FromForm(c, thumbnailField)
	if err != nil {
		return publicationService.Images{}, err
	}
	return publicationService.Images{Cover: cover, Thumbnail: thumbnail}, nil
}

func (h *PublicationHandler) Create(c *gin.Context) {
	var input dto.CreatePublicationRequest
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	files, err := images(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.publicationService.Create(c.Request.Context(), response.OptionalAccount(c), input, files)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, "Publicação criada com sucesso.", res)
}

func (h *PublicationHandler) Update(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	var input dto.UpdatePublicationRequest
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	files, err := images(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.publicationService.Update(c.Request.Context(), response.OptionalAccount(c), uri.ID, input, files)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Publicação editada com sucesso.", res)
}

func (h *PublicationHandler) SetFeatured(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	var input dto.FeaturedRequest
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.publicationService.SetFeatured(c.Request.Context(), response.OptionalAccount(c), uri.ID, *input.Featured)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Destaque da publicação alterado com sucesso.", res)
}

func (h *PublicationHandler) SetVisibility(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	var input dto.VisibilityRequest
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.publicationService.SetVisibility(c.Request.Context(), response.OptionalAccount(c), uri.ID, *input.Visible)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Visibilidade da publicação alterada com sucesso.", res)
}

func (h *PublicationHandler) Delete(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	if err := h.publicationService.Delete(c.Request.Context(), response.OptionalAccount(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Publicação excluída com sucesso.", nil)
}

func (h *PublicationHandler) Get(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.publicationService.Get(c.Request.Context(), response.OptionalAccount(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Publicação encontrada.", res)
}

func (h *PublicationHandler) List(c *gin.Context) {
	var query dto.PublicationFilter
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.publicationService.List(c.Request.Context(), response.OptionalAccount(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Publicações encontradas.", res)
}

func (h *PublicationHandler) Search(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.publicationService.Search(c.Request.Context(), response.OptionalAccount(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Publicações encontradas.", res)
}
