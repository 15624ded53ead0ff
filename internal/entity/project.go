package entity

import (
	"time"

	"ledes.com/labportal/pkg/media"
)

type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	Cover media.ImageRef `gorm:"embedded;embeddedPrefix:cover_" json:"-"`

	StatusTypeID  uint               `gorm:"not null;index" json:"status_type_id"`
	StatusType    *ProjectStatusType `gorm:"foreignKey:StatusTypeID" json:"status_type,omitempty"`
	CategoryID    uint               `gorm:"not null;index" json:"category_id"`
	Category      *ProjectCategory   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CoordinatorID uint               `gorm:"not null;index" json:"coordinator_id"`
	Coordinator   *Account           `gorm:"foreignKey:CoordinatorID" json:"coordinator,omitempty"`

	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`

	Audit
}

// ProjectMember links an account to a project under a link type and role type.
type ProjectMember struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ProjectID    uint       `gorm:"not null;index" json:"project_id"`
	AccountID    uint       `gorm:"not null;index" json:"account_id"`
	Account      *Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	LinkTypeID   uint       `gorm:"not null" json:"link_type_id"`
	LinkType     *LinkType  `gorm:"foreignKey:LinkTypeID" json:"link_type,omitempty"`
	RoleTypeID   uint       `gorm:"not null" json:"role_type_id"`
	RoleType     *RoleType  `gorm:"foreignKey:RoleTypeID" json:"role_type,omitempty"`
	ActiveMember bool       `gorm:"not null" json:"active_member"`
	JoinedAt     time.Time  `gorm:"not null" json:"joined_at"`
	LeftAt       *time.Time `json:"left_at"`

	Audit
}

// MemberKey identifies a membership within one project.
type MemberKey struct {
	AccountID  uint
	LinkTypeID uint
	RoleTypeID uint
}

func (m *ProjectMember) Key() MemberKey {
	return MemberKey{AccountID: m.AccountID, LinkTypeID: m.LinkTypeID, RoleTypeID: m.RoleTypeID}
}
