package entity

import "time"

// Record status ids, seeded into record_statuses.
const (
	StatusActive  uint = 1
	StatusDeleted uint = 2
)

type RecordStatus struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:50;not null" json:"name"`
}

func (RecordStatus) TableName() string { return "record_statuses" }

// Audit is embedded by every mutable entity.
type Audit struct {
	StatusID    uint      `gorm:"not null;default:1;index" json:"status_id"`
	CreatedByID *uint     `json:"created_by_id"`
	UpdatedByID *uint     `json:"updated_by_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Audit) AuditFields() *Audit { return a }

func (a *Audit) IsActive() bool { return a.StatusID == StatusActive }

// Auditable is implemented by every type embedding Audit.
type Auditable interface {
	AuditFields() *Audit
}
