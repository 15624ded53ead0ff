package dto

import (
	"encoding/json"
	"time"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/pkg/apperror"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/media"
)

const DateLayout = "2006-01-02"

type MemberInput struct {
	AccountID    uint  `json:"account_id"`
	LinkTypeID   uint  `json:"link_type_id"`
	RoleTypeID   uint  `json:"role_type_id"`
	ActiveMember *bool `json:"active_member"`
}

func (m MemberInput) Key() entity.MemberKey {
	return entity.MemberKey{AccountID: m.AccountID, LinkTypeID: m.LinkTypeID, RoleTypeID: m.RoleTypeID}
}

// Active defaults to true when the flag is omitted.
func (m MemberInput) Active() bool {
	return m.ActiveMember == nil || *m.ActiveMember
}

type CreateProjectRequest struct {
	Title         string  `form:"title" json:"title" binding:"required,trimmin=3,max=200"`
	Description   string  `form:"description" json:"description" binding:"max=20000"`
	StartDate     string  `form:"start_date" json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate       *string `form:"end_date" json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	StatusTypeID  uint    `form:"status_type_id" json:"status_type_id" binding:"required,min=1"`
	CategoryID    uint    `form:"category_id" json:"category_id" binding:"required,min=1"`
	CoordinatorID uint    `form:"coordinator_id" json:"coordinator_id" binding:"required,min=1"`

	Members []MemberInput `form:"-" json:"members"`
	// MembersJSON carries the members list in multipart requests.
	MembersJSON string `form:"members" json:"-"`
}

// MemberList returns the members from the JSON body or the multipart field.
func (r *CreateProjectRequest) MemberList() ([]MemberInput, error) {
	if r.MembersJSON == "" {
		return r.Members, nil
	}
	return decodeMembers(r.MembersJSON)
}

type UpdateProjectRequest struct {
	Title         *string `form:"title" json:"title" binding:"omitempty,trimmin=3,max=200"`
	Description   *string `form:"description" json:"description" binding:"omitempty,max=20000"`
	StartDate     *string `form:"start_date" json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate       *string `form:"end_date" json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	StatusTypeID  *uint   `form:"status_type_id" json:"status_type_id" binding:"omitempty,min=1"`
	CategoryID    *uint   `form:"category_id" json:"category_id" binding:"omitempty,min=1"`
	CoordinatorID *uint   `form:"coordinator_id" json:"coordinator_id" binding:"omitempty,min=1"`

	// Members replaces the membership list when present.
	Members     *[]MemberInput `form:"-" json:"members"`
	MembersJSON *string        `form:"members" json:"-"`
}

// MemberList returns nil when the request leaves membership untouched.
func (r *UpdateProjectRequest) MemberList() (*[]MemberInput, error) {
	if r.MembersJSON == nil {
		return r.Members, nil
	}
	members, err := decodeMembers(*r.MembersJSON)
	if err != nil {
		return nil, err
	}
	return &members, nil
}

func decodeMembers(raw string) ([]MemberInput, error) {
	var members []MemberInput
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		return nil, apperror.BadRequest("Lista de membros inválida.")
	}
	return members, nil
}

type ProjectFilter struct {
	commonDto.ListQuery
	StatusTypeID uint `form:"status_type_id"`
	CategoryID   uint `form:"category_id"`
}

type MemberResponse struct {
	ID           uint                         `json:"id"`
	Account      *commonDto.AccountSummary    `json:"account"`
	LinkType     *commonDto.ReferenceResponse `json:"link_type"`
	RoleType     *commonDto.ReferenceResponse `json:"role_type"`
	ActiveMember bool                         `json:"active_member"`
	JoinedAt     time.Time                    `json:"joined_at"`
	LeftAt       *time.Time                   `json:"left_at"`
}

type ProjectResponse struct {
	ID          uint                         `json:"id"`
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	StartDate   string                       `json:"start_date"`
	EndDate     *string                      `json:"end_date"`
	Cover       *media.Resolved              `json:"cover"`
	StatusType  *commonDto.ReferenceResponse `json:"status_type"`
	Category    *commonDto.ReferenceResponse `json:"category"`
	Coordinator *commonDto.AccountSummary    `json:"coordinator"`
	Members     []MemberResponse             `json:"members"`
	StatusID    uint                         `json:"status_id"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

func reference(r interface{ Ref() *entity.Reference }) *commonDto.ReferenceResponse {
	return commonDto.NewReferenceResponse(r.Ref())
}

func NewProjectResponse(p *entity.Project, r media.Resolver) *ProjectResponse {
	res := &ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		StartDate:   p.StartDate.Format(DateLayout),
		Cover:       r.Resolve(p.Cover),
		Coordinator: commonDto.NewAccountSummary(p.Coordinator, r),
		Members:     make([]MemberResponse, 0, len(p.Members)),
		StatusID:    p.StatusID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.EndDate != nil {
		end := p.EndDate.Format(DateLayout)
		res.EndDate = &end
	}
	if p.StatusType != nil {
		res.StatusType = reference(p.StatusType)
	}
	if p.Category != nil {
		res.Category = reference(p.Category)
	}
	for i := range p.Members {
		m := &p.Members[i]
		mr := MemberResponse{
			ID:           m.ID,
			Account:      commonDto.NewAccountSummary(m.Account, r),
			ActiveMember: m.ActiveMember,
			JoinedAt:     m.JoinedAt,
			LeftAt:       m.LeftAt,
		}
		if m.LinkType != nil {
			mr.LinkType = reference(m.LinkType)
		}
		if m.RoleType != nil {
			mr.RoleType = reference(m.RoleType)
		}
		res.Members = append(res.Members, mr)
	}
	return res
}
