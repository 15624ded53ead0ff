package dto

import (
	"time"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/pkg/media"
)

type CreateAccountRequest struct {
	FirstName    string  `form:"first_name" json:"first_name" binding:"required,trimmin=2,max=100"`
	LastName     string  `form:"last_name" json:"last_name" binding:"max=100"`
	Email        string  `form:"email" json:"email" binding:"required,email,max=150"`
	Password     string  `form:"password" json:"password" binding:"required,strongpassword"`
	LinkedIn     *string `form:"linkedin" json:"linkedin" binding:"omitempty,url,max=255"`
	GitHub       *string `form:"github" json:"github" binding:"omitempty,url,max=255"`
	Course       *string `form:"course" json:"course" binding:"omitempty,max=150"`
	PositionCode *string `form:"position_code" json:"position_code" binding:"omitempty,max=50"`

	CanAdminister         bool `form:"can_administer" json:"can_administer"`
	CanManageAccounts     bool `form:"can_manage_accounts" json:"can_manage_accounts"`
	CanManageProjects     bool `form:"can_manage_projects" json:"can_manage_projects"`
	CanManagePublications bool `form:"can_manage_publications" json:"can_manage_publications"`
}

// UpdateAccountRequest changes only the fields that are present.
type UpdateAccountRequest struct {
	FirstName    *string `form:"first_name" json:"first_name" binding:"omitempty,trimmin=2,max=100"`
	LastName     *string `form:"last_name" json:"last_name" binding:"omitempty,max=100"`
	Email        *string `form:"email" json:"email" binding:"omitempty,email,max=150"`
	Password     *string `form:"password" json:"password" binding:"omitempty,strongpassword"`
	LinkedIn     *string `form:"linkedin" json:"linkedin" binding:"omitempty,url,max=255"`
	GitHub       *string `form:"github" json:"github" binding:"omitempty,url,max=255"`
	Course       *string `form:"course" json:"course" binding:"omitempty,max=150"`
	PositionCode *string `form:"position_code" json:"position_code" binding:"omitempty,max=50"`

	CanAdminister         *bool `form:"can_administer" json:"can_administer"`
	CanManageAccounts     *bool `form:"can_manage_accounts" json:"can_manage_accounts"`
	CanManageProjects     *bool `form:"can_manage_projects" json:"can_manage_projects"`
	CanManagePublications *bool `form:"can_manage_publications" json:"can_manage_publications"`
}

// ChangesFlags reports whether the request touches any capability flag.
func (r *UpdateAccountRequest) ChangesFlags(current *entity.Account) bool {
	differs := func(v *bool, cur bool) bool { return v != nil && *v != cur }
	return differs(r.CanAdminister, current.CanAdminister) ||
		differs(r.CanManageAccounts, current.CanManageAccounts) ||
		differs(r.CanManageProjects, current.CanManageProjects) ||
		differs(r.CanManagePublications, current.CanManagePublications)
}

type AccountResponse struct {
	ID           uint            `json:"id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	LinkedIn     *string         `json:"linkedin"`
	GitHub       *string         `json:"github"`
	Course       *string         `json:"course"`
	PositionCode *string         `json:"position_code"`
	Photo        *media.Resolved `json:"photo"`

	CanAdminister         bool `json:"can_administer"`
	CanManageAccounts     bool `json:"can_manage_accounts"`
	CanManageProjects     bool `json:"can_manage_projects"`
	CanManagePublications bool `json:"can_manage_publications"`

	StatusID  uint      `json:"status_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewAccountResponse(a *entity.Account, r media.Resolver) *AccountResponse {
	return &AccountResponse{
		ID:                    a.ID,
		FirstName:             a.FirstName,
		LastName:              a.LastName,
		Email:                 a.Email,
		LinkedIn:              a.LinkedIn,
		GitHub:                a.GitHub,
		Course:                a.Course,
		PositionCode:          a.PositionCode,
		Photo:                 r.Resolve(a.Photo),
		CanAdminister:         a.CanAdminister,
		CanManageAccounts:     a.CanManageAccounts,
		CanManageProjects:     a.CanManageProjects,
		CanManagePublications: a.CanManagePublications,
		StatusID:              a.StatusID,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}
