package repository

import (
	"context"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/datastore"
	"ledes.com/labportal/internal/entity"
)

// Row is a pointer to a lookup entity.
type Row[T any] interface {
	*T
	Ref() *entity.Reference
}

type ReferenceRepository[T any] interface {
	Create(ctx context.Context, row *T, actor *entity.Account) error
	Update(ctx context.Context, id uint, name string, actor *entity.Account) (*T, error)
	SoftDelete(ctx context.Context, id uint, actor *entity.Account) error
	FindByID(ctx context.Context, id uint) (*T, error)
	// NameTaken checks active rows only.
	NameTaken(ctx context.Context, name string, exceptID uint) (bool, error)
	FindAll(ctx context.Context) ([]T, error)
	FindPage(ctx context.Context, page, pageSize int) ([]T, int64, error)
}

type referenceRepository[T any, P Row[T]] struct {
	store *datastore.Store[T]
}

func NewReferenceRepository[T any, P Row[T]](db *gorm.DB) ReferenceRepository[T] {
	return &referenceRepository[T, P]{store: datastore.New[T](db)}
}

const listOrder = "name asc, id asc"

func (r *referenceRepository[T, P]) Create(ctx context.Context, row *T, actor *entity.Account) error {
	return r.store.Create(ctx, row, actor)
}

func (r *referenceRepository[T, P]) Update(ctx context.Context, id uint, name string, actor *entity.Account) (*T, error) {
	return r.store.Update(ctx, datastore.Where{"id": id}, map[string]any{"name": name}, actor)
}

func (r *referenceRepository[T, P]) SoftDelete(ctx context.Context, id uint, actor *entity.Account) error {
	_, err := r.store.SoftDelete(ctx, datastore.Where{"id": id}, actor)
	return err
}

func (r *referenceRepository[T, P]) FindByID(ctx context.Context, id uint) (*T, error) {
	return r.store.FindActiveUnique(ctx, datastore.Where{"id": id})
}

func (r *referenceRepository[T, P]) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	rows, err := r.store.FindActiveMany(ctx, datastore.Where{"name": name})
	if err != nil {
		return false, err
	}
	for i := range rows {
		if P(&rows[i]).Ref().ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *referenceRepository[T, P]) FindAll(ctx context.Context) ([]T, error) {
	return r.store.FindActiveMany(ctx, nil, datastore.OrderBy(listOrder))
}

func (r *referenceRepository[T, P]) FindPage(ctx context.Context, page, pageSize int) ([]T, int64, error) {
	return r.store.FindManyPaginated(ctx, nil, page, pageSize, datastore.OrderBy(listOrder))
}
