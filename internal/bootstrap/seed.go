package bootstrap

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/pkg/credential"
	"ledes.com/labportal/pkg/logger"
	"ledes.com/labportal/pkg/media"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.RecordStatus{},
		&entity.Account{},
		&entity.LinkType{},
		&entity.RoleType{},
		&entity.ProjectStatusType{},
		&entity.ProjectCategory{},
		&entity.Project{},
		&entity.ProjectMember{},
		&entity.Publication{},
		&entity.AboutUs{},
	)
}

type seedAccount struct {
	name     string
	login    string
	password string
	admin    bool
}

var seedAccounts = []seedAccount{
	{name: "Admin", login: "admin", password: "admin", admin: true},
	{name: "Lucas", login: "lucas", password: "lucas"},
	{name: "Tiago", login: "tiago", password: "tiago"},
	{name: "Guilherme", login: "guilherme", password: "guilherme"},
}

// Seed inserts record statuses, sample accounts, reference rows and the
// about-us record. Existing rows are left untouched.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := SeedStatuses(tx); err != nil {
			return fmt.Errorf("seed statuses: %w", err)
		}
		admin, err := SeedAccounts(tx)
		if err != nil {
			return fmt.Errorf("seed accounts: %w", err)
		}
		if err := SeedReferences(tx, admin.ID); err != nil {
			return fmt.Errorf("seed references: %w", err)
		}
		if err := SeedAboutUs(tx, admin.ID); err != nil {
			return fmt.Errorf("seed about us: %w", err)
		}
		logger.FromContext(ctx).Info("seed data ensured")
		return nil
	})
}

func SeedStatuses(db *gorm.DB) error {
	statuses := []entity.RecordStatus{
		{ID: entity.StatusActive, Name: "Ativo"},
		{ID: entity.StatusDeleted, Name: "Excluido"},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&statuses).Error
}

// SeedAccounts ensures the sample accounts exist and returns the administrator.
func SeedAccounts(db *gorm.DB) (*entity.Account, error) {
	var admin entity.Account
	for _, sa := range seedAccounts {
		var existing entity.Account
		err := db.Where("email = ?", sa.login).Limit(1).Find(&existing).Error
		if err != nil {
			return nil, err
		}
		if existing.ID == 0 {
			hash, err := credential.HashPassword(sa.password)
			if err != nil {
				return nil, err
			}
			existing = entity.Account{
				FirstName:             sa.name,
				Email:                 sa.login,
				PasswordHash:          hash,
				Photo:                 media.Remote(credential.AvatarURL(sa.login)),
				CanAdminister:         sa.admin,
				CanManageAccounts:     sa.admin,
				CanManageProjects:     sa.admin,
				CanManagePublications: sa.admin,
				Audit:                 entity.Audit{StatusID: entity.StatusActive},
			}
			if err := db.Create(&existing).Error; err != nil {
				return nil, err
			}
		}
		if sa.admin {
			admin = existing
		}
	}
	return &admin, nil
}

func SeedReferences(db *gorm.DB, adminID uint) error {
	stamp := entity.Audit{StatusID: entity.StatusActive, CreatedByID: &adminID, UpdatedByID: &adminID}

	if err := seedReference[entity.LinkType](db, stamp, "Aluno", "Professor", "Pesquisador", "Colaborador", "Outro"); err != nil {
		return err
	}
	if err := seedReference[entity.RoleType](db, stamp, "Analista", "Front-End", "Back-End", "Outro"); err != nil {
		return err
	}
	if err := seedReference[entity.ProjectStatusType](db, stamp, "Em andamento", "Concluído", "Cancelado"); err != nil {
		return err
	}
	return seedReference[entity.ProjectCategory](db, stamp, "Pesquisa", "Extensão", "Ensino", "Outro")
}

func seedReference[T any, P interface {
	*T
	Ref() *entity.Reference
}](db *gorm.DB, stamp entity.Audit, names ...string) error {
	for _, name := range names {
		var count int64
		if err := db.Model(new(T)).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		row := P(new(T))
		*row.Ref() = entity.Reference{Name: name, Audit: stamp}
		if err := db.Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}

func SeedAboutUs(db *gorm.DB, coordinatorID uint) error {
	var count int64
	if err := db.Model(&entity.AboutUs{}).Where("id = ?", entity.AboutUsID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	weekday := entity.DayHours{Open: true, OpensAt: "08:00", ClosesAt: "18:00"}
	about := entity.AboutUs{
		ID:               entity.AboutUsID,
		Description:      "Laboratório de Engenharia de Software",
		Address:          "Cidade Universitária, Campo Grande - MS",
		CoordinatorID:    &coordinatorID,
		CoordinatorEmail: "facom@ufms.br",
		Phone:            "(67) 3333-3333",
		Hours: entity.WeeklyHours{
			Monday:    weekday,
			Tuesday:   weekday,
			Wednesday: weekday,
			Thursday:  weekday,
			Friday:    weekday,
		},
		Audit: entity.Audit{StatusID: entity.StatusActive, CreatedByID: &coordinatorID, UpdatedByID: &coordinatorID},
	}
	return db.Create(&about).Error
}
