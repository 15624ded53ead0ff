package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AboutUsID is the fixed id of the singleton about-us row.
const AboutUsID uint = 1

type AboutUs struct {
	ID               uint        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Description      string      `gorm:"type:text;not null;default:''" json:"description"`
	Address          string      `gorm:"size:255;not null;default:''" json:"address"`
	CoordinatorID    *uint       `json:"coordinator_id"`
	Coordinator      *Account    `gorm:"foreignKey:CoordinatorID" json:"coordinator,omitempty"`
	CoordinatorEmail string      `gorm:"size:150;not null;default:''" json:"coordinator_email"`
	Phone            string      `gorm:"size:50;not null;default:''" json:"phone"`
	Hours            WeeklyHours `gorm:"type:text" json:"hours"`

	Audit
}

func (AboutUs) TableName() string { return "about_us" }

type DayHours struct {
	Open     bool   `json:"open"`
	OpensAt  string `json:"opens_at,omitempty"`
	ClosesAt string `json:"closes_at,omitempty"`
}

type WeeklyHours struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// Days returns pointers to each weekday keyed by its JSON name.
func (w *WeeklyHours) Days() map[string]*DayHours {
	return map[string]*DayHours{
		"monday":    &w.Monday,
		"tuesday":   &w.Tuesday,
		"wednesday": &w.Wednesday,
		"thursday":  &w.Thursday,
		"friday":    &w.Friday,
		"saturday":  &w.Saturday,
		"sunday":    &w.Sunday,
	}
}

// Value stores the hours as a JSON document.
func (w WeeklyHours) Value() (driver.Value, error) {
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (w *WeeklyHours) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*w = WeeklyHours{}
		return nil
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	default:
		return fmt.Errorf("entity: cannot scan %T into WeeklyHours", src)
	}
}
