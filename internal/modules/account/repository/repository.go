package repository

import (
	"context"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/datastore"
	"ledes.com/labportal/internal/entity"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account, actor *entity.Account) error
	Update(ctx context.Context, id uint, data map[string]any, actor *entity.Account) (*entity.Account, error)
	SoftDelete(ctx context.Context, id uint, actor *entity.Account) (*entity.Account, error)
	FindByID(ctx context.Context, id uint) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindActiveByIDs(ctx context.Context, ids []uint) ([]entity.Account, error)
	// EmailTaken checks every account regardless of status.
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	FindAll(ctx context.Context) ([]entity.Account, error)
	FindPage(ctx context.Context, page, pageSize int) ([]entity.Account, int64, error)
}

type accountRepository struct {
	store *datastore.Store[entity.Account]
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{store: datastore.New[entity.Account](db)}
}

const listOrder = "first_name asc, id asc"

func (r *accountRepository) Create(ctx context.Context, account *entity.Account, actor *entity.Account) error {
	return r.store.Create(ctx, account, actor)
}

func (r *accountRepository) Update(ctx context.Context, id uint, data map[string]any, actor *entity.Account) (*entity.Account, error) {
	return r.store.Update(ctx, datastore.Where{"id": id}, data, actor)
}

func (r *accountRepository) SoftDelete(ctx context.Context, id uint, actor *entity.Account) (*entity.Account, error) {
	return r.store.SoftDelete(ctx, datastore.Where{"id": id}, actor)
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*entity.Account, error) {
	return r.store.FindActiveUnique(ctx, datastore.Where{"id": id})
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.store.FindActiveUnique(ctx, datastore.Where{"email": email})
}

func (r *accountRepository) FindActiveByIDs(ctx context.Context, ids []uint) ([]entity.Account, error) {
	if len(ids) == 0 {
		return []entity.Account{}, nil
	}
	return r.store.FindActiveMany(ctx, datastore.Where{"id": ids})
}

func (r *accountRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	rows, err := r.store.FindActiveMany(ctx, datastore.Where{"email": email, "status_id": datastore.AnyStatus})
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepository) FindAll(ctx context.Context) ([]entity.Account, error) {
	return r.store.FindActiveMany(ctx, nil, datastore.OrderBy(listOrder))
}

func (r *accountRepository) FindPage(ctx context.Context, page, pageSize int) ([]entity.Account, int64, error) {
	return r.store.FindManyPaginated(ctx, nil, page, pageSize, datastore.OrderBy(listOrder))
}
