package entity

import "ledes.com/labportal/pkg/media"

type Account struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	FirstName    string  `gorm:"size:100;not null" json:"first_name"`
	LastName     string  `gorm:"size:100;not null;default:''" json:"last_name"`
	Email        string  `gorm:"size:150;uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"size:255;not null" json:"-"`
	LinkedIn     *string `gorm:"column:linkedin;size:255" json:"linkedin"`
	GitHub       *string `gorm:"column:github;size:255" json:"github"`
	Course       *string `gorm:"size:150" json:"course"`
	PositionCode *string `gorm:"size:50" json:"position_code"`

	Photo media.ImageRef `gorm:"embedded;embeddedPrefix:photo_" json:"-"`

	CanAdminister         bool `gorm:"not null;default:false" json:"can_administer"`
	CanManageAccounts     bool `gorm:"not null;default:false" json:"can_manage_accounts"`
	CanManageProjects     bool `gorm:"not null;default:false" json:"can_manage_projects"`
	CanManagePublications bool `gorm:"not null;default:false" json:"can_manage_publications"`

	Audit
}

func (a *Account) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
