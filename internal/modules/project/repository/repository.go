package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/datastore"
	"ledes.com/labportal/internal/entity"
)

type Filter struct {
	StatusTypeID uint
	CategoryID   uint
}

func (f Filter) where() datastore.Where {
	w := datastore.Where{}
	if f.StatusTypeID != 0 {
		w["status_type_id"] = f.StatusTypeID
	}
	if f.CategoryID != 0 {
		w["category_id"] = f.CategoryID
	}
	return w
}

type ProjectRepository interface {
	// WithTx binds every store of the repository to tx.
	WithTx(tx *gorm.DB) ProjectRepository

	Create(ctx context.Context, project *entity.Project, actor *entity.Account) error
	Update(ctx context.Context, id uint, data map[string]any, actor *entity.Account) error
	SoftDelete(ctx context.Context, id uint, actor *entity.Account) error
	FindByID(ctx context.Context, id uint) (*entity.Project, error)
	FindAll(ctx context.Context, filter Filter) ([]entity.Project, error)
	FindPage(ctx context.Context, filter Filter, page, pageSize int) ([]entity.Project, int64, error)

	ActiveMembers(ctx context.Context, projectID uint) ([]entity.ProjectMember, error)
	CreateMember(ctx context.Context, member *entity.ProjectMember, actor *entity.Account) error
	UpdateMember(ctx context.Context, id uint, data map[string]any, actor *entity.Account) error
	RemoveMember(ctx context.Context, id uint, at time.Time, actor *entity.Account) error
	RemoveAllMembers(ctx context.Context, projectID uint, at time.Time, actor *entity.Account) error

	StatusTypesActive(ctx context.Context, ids ...uint) (bool, error)
	CategoriesActive(ctx context.Context, ids ...uint) (bool, error)
	AccountsActive(ctx context.Context, ids ...uint) (bool, error)
	LinkTypesActive(ctx context.Context, ids ...uint) (bool, error)
	RoleTypesActive(ctx context.Context, ids ...uint) (bool, error)
}

type projectRepository struct {
	db       *gorm.DB
	projects *datastore.Store[entity.Project]
	members  *datastore.Store[entity.ProjectMember]
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{
		db:       db,
		projects: datastore.New[entity.Project](db),
		members:  datastore.New[entity.ProjectMember](db),
	}
}

func (r *projectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	return NewProjectRepository(tx)
}

const listOrder = "start_date desc, id desc"

func detailOptions() []datastore.Option {
	return []datastore.Option{
		datastore.Preload("StatusType"),
		datastore.Preload("Category"),
		datastore.Preload("Coordinator"),
		datastore.Preload("Members", "status_id = ?", entity.StatusActive, func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at asc, id asc")
		}),
		datastore.Preload("Members.Account"),
		datastore.Preload("Members.LinkType"),
		datastore.Preload("Members.RoleType"),
	}
}

func listOptions() []datastore.Option {
	return []datastore.Option{
		datastore.OrderBy(listOrder),
		datastore.Preload("StatusType"),
		datastore.Preload("Category"),
		datastore.Preload("Coordinator"),
	}
}

func (r *projectRepository) Create(ctx context.Context, project *entity.Project, actor *entity.Account) error {
	return r.projects.Create(ctx, project, actor)
}

func (r *projectRepository) Update(ctx context.Context, id uint, data map[string]any, actor *entity.Account) error {
	_, err := r.projects.Update(ctx, datastore.Where{"id": id}, data, actor)
	return err
}

func (r *projectRepository) SoftDelete(ctx context.Context, id uint, actor *entity.Account) error {
	_, err := r.projects.SoftDelete(ctx, datastore.Where{"id": id}, actor)
	return err
}

func (r *projectRepository) FindByID(ctx context.Context, id uint) (*entity.Project, error) {
	return r.projects.FindActiveUnique(ctx, datastore.Where{"id": id}, detailOptions()...)
}

func (r *projectRepository) FindAll(ctx context.Context, filter Filter) ([]entity.Project, error) {
	return r.projects.FindActiveMany(ctx, filter.where(), listOptions()...)
}

func (r *projectRepository) FindPage(ctx context.Context, filter Filter, page, pageSize int) ([]entity.Project, int64, error) {
	return r.projects.FindManyPaginated(ctx, filter.where(), page, pageSize, listOptions()...)
}

func (r *projectRepository) ActiveMembers(ctx context.Context, projectID uint) ([]entity.ProjectMember, error) {
	return r.members.FindActiveMany(ctx, datastore.Where{"project_id": projectID})
}

func (r *projectRepository) CreateMember(ctx context.Context, member *entity.ProjectMember, actor *entity.Account) error {
	return r.members.Create(ctx, member, actor)
}

func (r *projectRepository) UpdateMember(ctx context.Context, id uint, data map[string]any, actor *entity.Account) error {
	_, err := r.members.Update(ctx, datastore.Where{"id": id}, data, actor)
	return err
}

func (r *projectRepository) RemoveMember(ctx context.Context, id uint, at time.Time, actor *entity.Account) error {
	where := datastore.Where{"id": id}
	if _, err := r.members.Update(ctx, where, map[string]any{"left_at": at, "active_member": false}, actor); err != nil {
		return err
	}
	_, err := r.members.SoftDelete(ctx, where, actor)
	return err
}

func (r *projectRepository) RemoveAllMembers(ctx context.Context, projectID uint, at time.Time, actor *entity.Account) error {
	where := datastore.Where{"project_id": projectID, "status_id": entity.StatusActive}
	if _, err := r.members.UpdateMany(ctx, where, map[string]any{"left_at": at, "active_member": false}, actor); err != nil {
		return err
	}
	_, err := r.members.SoftDeleteMany(ctx, where, actor)
	return err
}

func (r *projectRepository) StatusTypesActive(ctx context.Context, ids ...uint) (bool, error) {
	return allActive[entity.ProjectStatusType](ctx, r.db, ids)
}

func (r *projectRepository) CategoriesActive(ctx context.Context, ids ...uint) (bool, error) {
	return allActive[entity.ProjectCategory](ctx, r.db, ids)
}

func (r *projectRepository) AccountsActive(ctx context.Context, ids ...uint) (bool, error) {
	return allActive[entity.Account](ctx, r.db, ids)
}

func (r *projectRepository) LinkTypesActive(ctx context.Context, ids ...uint) (bool, error) {
	return allActive[entity.LinkType](ctx, r.db, ids)
}

func (r *projectRepository) RoleTypesActive(ctx context.Context, ids ...uint) (bool, error) {
	return allActive[entity.RoleType](ctx, r.db, ids)
}

// allActive reports whether every id resolves to an active row of T.
func allActive[T any](ctx context.Context, db *gorm.DB, ids []uint) (bool, error) {
	unique := make(map[uint]struct{}, len(ids))
	list := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, seen := unique[id]; !seen {
			unique[id] = struct{}{}
			list = append(list, id)
		}
	}
	if len(list) == 0 {
		return true, nil
	}
	rows, err := datastore.New[T](db).FindActiveMany(ctx, datastore.Where{"id": list})
	if err != nil {
		return false, err
	}
	return len(rows) == len(list), nil
}
