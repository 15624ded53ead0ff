package entity

// Reference is the shape shared by every lookup table.
type Reference struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;index" json:"name"`
	Audit
}

type LinkType struct{ Reference }

func (LinkType) TableName() string { return "link_types" }
func (l *LinkType) Ref() *Reference { return &l.Reference }

type RoleType struct{ Reference }

func (RoleType) TableName() string { return "role_types" }
func (r *RoleType) Ref() *Reference { return &r.Reference }

type ProjectStatusType struct{ Reference }

func (ProjectStatusType) TableName() string { return "project_status_types" }
func (p *ProjectStatusType) Ref() *Reference { return &p.Reference }

type ProjectCategory struct{ Reference }

func (ProjectCategory) TableName() string { return "project_categories" }
func (p *ProjectCategory) Ref() *Reference { return &p.Reference }
