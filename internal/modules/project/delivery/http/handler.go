package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledes.com/labportal/internal/modules/project/dto"
	projectService "ledes.com/labportal/internal/modules/project/service"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/media"
	"ledes.com/labportal/pkg/response"
	"ledes.com/labportal/pkg/validator"
)

const coverField = "cover"

type ProjectHandler struct {
	projectService projectService.ProjectService
}

func NewProjectHandler(projectService projectService.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var input dto.CreateProjectRequest
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	cover, err := media.FromForm(c, coverField)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.projectService.Create(c.Request.Context(), response.OptionalAccount(c), input, cover)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, "Projeto criado com sucesso.", res)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	var input dto.UpdateProjectRequest
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	cover, err := media.FromForm(c, coverField)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.projectService.Update(c.Request.Context(), response.OptionalAccount(c), uri.ID, input, cover)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Projeto editado com sucesso.", res)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), response.OptionalAccount(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Projeto excluído com sucesso.", nil)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.projectService.Get(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Projeto encontrado.", res)
}

func (h *ProjectHandler) List(c *gin.Context) {
	var query dto.ProjectFilter
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	res, err := h.projectService.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, "Projetos encontrados.", res)
}
