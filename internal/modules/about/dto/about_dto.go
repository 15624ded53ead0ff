package dto

import (
	"time"

	"ledes.com/labportal/internal/entity"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/media"
)

type DayHoursInput struct {
	Open     *bool   `json:"open"`
	OpensAt  *string `json:"opens_at" binding:"omitempty,hhmm"`
	ClosesAt *string `json:"closes_at" binding:"omitempty,hhmm"`
}

// UpdateAboutRequest edits the about-us record. Every field is optional and
// hours are merged per weekday.
type UpdateAboutRequest struct {
	Description      *string                  `json:"description" binding:"omitempty,max=20000"`
	Address          *string                  `json:"address" binding:"omitempty,max=255"`
	CoordinatorID    *uint                    `json:"coordinator_id" binding:"omitempty,min=1"`
	CoordinatorEmail *string                  `json:"coordinator_email" binding:"omitempty,email,max=150"`
	Phone            *string                  `json:"phone" binding:"omitempty,max=50"`
	Hours            map[string]DayHoursInput `json:"hours" binding:"omitempty,dive,keys,oneof=monday tuesday wednesday thursday friday saturday sunday,endkeys"`
}

type AboutResponse struct {
	Description      string                    `json:"description"`
	Address          string                    `json:"address"`
	Coordinator      *commonDto.AccountSummary `json:"coordinator"`
	CoordinatorEmail string                    `json:"coordinator_email"`
	Phone            string                    `json:"phone"`
	Hours            entity.WeeklyHours        `json:"hours"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

func NewAboutResponse(a *entity.AboutUs, r media.Resolver) *AboutResponse {
	return &AboutResponse{
		Description:      a.Description,
		Address:          a.Address,
		Coordinator:      commonDto.NewAccountSummary(a.Coordinator, r),
		CoordinatorEmail: a.CoordinatorEmail,
		Phone:            a.Phone,
		Hours:            a.Hours,
		UpdatedAt:        a.UpdatedAt,
	}
}
