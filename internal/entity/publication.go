package entity

import (
	"time"

	"ledes.com/labportal/pkg/media"
)

type Publication struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:200;not null" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`

	Cover     media.ImageRef `gorm:"embedded;embeddedPrefix:cover_" json:"-"`
	Thumbnail media.ImageRef `gorm:"embedded;embeddedPrefix:thumbnail_" json:"-"`

	Featured    bool      `gorm:"not null;index" json:"featured"`
	VisibleFrom time.Time `gorm:"not null;index" json:"visible_from"`
	// Visible is false while the publication is hidden or scheduled.
	Visible bool `gorm:"not null" json:"visible"`

	AuthorID uint     `gorm:"not null;index" json:"author_id"`
	Author   *Account `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Audit
}

// PublishedAt reports whether readers without the publications capability can see it.
func (p *Publication) PublishedAt(now time.Time) bool {
	return p.Visible && !p.VisibleFrom.After(now)
}
