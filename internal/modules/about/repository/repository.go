package repository

import (
	"context"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/datastore"
	"ledes.com/labportal/internal/entity"
)

type AboutRepository interface {
	Find(ctx context.Context) (*entity.AboutUs, error)
	// Save creates the singleton row from create or applies update to it.
	Save(ctx context.Context, create *entity.AboutUs, update map[string]any, actor *entity.Account) error
	CoordinatorExists(ctx context.Context, id uint) (bool, error)
}

type aboutRepository struct {
	about    *datastore.Store[entity.AboutUs]
	accounts *datastore.Store[entity.Account]
}

func NewAboutRepository(db *gorm.DB) AboutRepository {
	return &aboutRepository{
		about:    datastore.New[entity.AboutUs](db),
		accounts: datastore.New[entity.Account](db),
	}
}

var singleton = datastore.Where{"id": entity.AboutUsID}

func (r *aboutRepository) Find(ctx context.Context) (*entity.AboutUs, error) {
	return r.about.FindActiveUnique(ctx, singleton, datastore.Preload("Coordinator"))
}

func (r *aboutRepository) Save(ctx context.Context, create *entity.AboutUs, update map[string]any, actor *entity.Account) error {
	_, err := r.about.Upsert(ctx, singleton, create, update, actor)
	return err
}

func (r *aboutRepository) CoordinatorExists(ctx context.Context, id uint) (bool, error) {
	rows, err := r.accounts.FindActiveMany(ctx, datastore.Where{"id": id})
	if err != nil {
		return false, err
	}
	return len(rows) == 1, nil
}
