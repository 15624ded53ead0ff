package dto

import (
	"time"

	"ledes.com/labportal/internal/entity"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/media"
)

const DateLayout = "2006-01-02"

type CreatePublicationRequest struct {
	Title       string `form:"title" json:"title" binding:"required,trimmin=3,max=200"`
	Body        string `form:"body" json:"body" binding:"required"`
	VisibleFrom string `form:"visible_from" json:"visible_from" binding:"required,datetime=2006-01-02"`
	Featured    *bool  `form:"featured" json:"featured"`
	// Visible defaults to true.
	Visible *bool `form:"visible" json:"visible"`
}

type UpdatePublicationRequest struct {
	Title       *string `form:"title" json:"title" binding:"omitempty,trimmin=3,max=200"`
	Body        *string `form:"body" json:"body" binding:"omitempty,min=1"`
	VisibleFrom *string `form:"visible_from" json:"visible_from" binding:"omitempty,datetime=2006-01-02"`
	Featured    *bool   `form:"featured" json:"featured"`
	Visible     *bool   `form:"visible" json:"visible"`
}

type FeaturedRequest struct {
	Featured *bool `form:"featured" json:"featured" binding:"required"`
}

type VisibilityRequest struct {
	Visible *bool `form:"visible" json:"visible" binding:"required"`
}

type PublicationFilter struct {
	commonDto.ListQuery
	Featured *bool `form:"featured"`
}

type SearchQuery struct {
	Q     string `form:"q" binding:"required,min=1,max=200"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

const DefaultSearchLimit = 20

func (q SearchQuery) Size() int {
	if q.Limit <= 0 {
		return DefaultSearchLimit
	}
	return q.Limit
}

type PublicationResponse struct {
	ID          uint                      `json:"id"`
	Title       string                    `json:"title"`
	Body        string                    `json:"body"`
	Cover       *media.Resolved           `json:"cover"`
	Thumbnail   *media.Resolved           `json:"thumbnail"`
	Featured    bool                      `json:"featured"`
	Visible     bool                      `json:"visible"`
	VisibleFrom string                    `json:"visible_from"`
	Author      *commonDto.AccountSummary `json:"author"`
	StatusID    uint                      `json:"status_id"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

func NewPublicationResponse(p *entity.Publication, r media.Resolver) *PublicationResponse {
	return &PublicationResponse{
		ID:          p.ID,
		Title:       p.Title,
		Body:        p.Body,
		Cover:       r.Resolve(p.Cover),
		Thumbnail:   r.Resolve(p.Thumbnail),
		Featured:    p.Featured,
		Visible:     p.Visible,
		VisibleFrom: p.VisibleFrom.Format(DateLayout),
		Author:      commonDto.NewAccountSummary(p.Author, r),
		StatusID:    p.StatusID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
