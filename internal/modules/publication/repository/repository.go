package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/datastore"
	"ledes.com/labportal/internal/entity"
)

// Filter narrows publication reads. PublishedOnly hides rows that are not
// visible or whose visible-from date is after Now.
type Filter struct {
	Featured      *bool
	PublishedOnly bool
	Now           time.Time
}

func (f Filter) where() datastore.Where {
	w := datastore.Where{}
	if f.Featured != nil {
		w["featured"] = *f.Featured
	}
	return w
}

func (f Filter) options(extra ...datastore.Option) []datastore.Option {
	opts := []datastore.Option{
		datastore.OrderBy(listOrder),
		datastore.Preload("Author"),
	}
	if f.PublishedOnly {
		now := f.Now
		opts = append(opts, datastore.Scopes(func(db *gorm.DB) *gorm.DB {
			return db.Where("visible = ? AND visible_from <= ?", true, now)
		}))
	}
	return append(opts, extra...)
}

const listOrder = "visible_from desc, id desc"

type PublicationRepository interface {
	Create(ctx context.Context, publication *entity.Publication, actor *entity.Account) error
	Update(ctx context.Context, id uint, data map[string]any, actor *entity.Account) error
	SoftDelete(ctx context.Context, id uint, actor *entity.Account) error
	FindByID(ctx context.Context, id uint, filter Filter) (*entity.Publication, error)
	FindAll(ctx context.Context, filter Filter) ([]entity.Publication, error)
	FindPage(ctx context.Context, filter Filter, page, pageSize int) ([]entity.Publication, int64, error)
	// FindByIDs returns the rows in the order of ids, skipping missing ones.
	FindByIDs(ctx context.Context, ids []uint, filter Filter) ([]entity.Publication, error)
	// SearchText matches query against title and body.
	SearchText(ctx context.Context, query string, filter Filter, limit int) ([]entity.Publication, error)
}

type publicationRepository struct {
	publications *datastore.Store[entity.Publication]
}

func NewPublicationRepository(db *gorm.DB) PublicationRepository {
	return &publicationRepository{publications: datastore.New[entity.Publication](db)}
}

func (r *publicationRepository) Create(ctx context.Context, publication *entity.Publication, actor *entity.Account) error {
	return r.publications.Create(ctx, publication, actor)
}

func (r *publicationRepository) Update(ctx context.Context, id uint, data map[string]any, actor *entity.Account) error {
	_, err := r.publications.Update(ctx, datastore.Where{"id": id}, data, actor)
	return err
}

func (r *publicationRepository) SoftDelete(ctx context.Context, id uint, actor *entity.Account) error {
	_, err := r.publications.SoftDelete(ctx, datastore.Where{"id": id}, actor)
	return err
}

func (r *publicationRepository) FindByID(ctx context.Context, id uint, filter Filter) (*entity.Publication, error) {
	return r.publications.FindActiveUnique(ctx, datastore.Where{"id": id}, filter.options()...)
}

func (r *publicationRepository) FindAll(ctx context.Context, filter Filter) ([]entity.Publication, error) {
	return r.publications.FindActiveMany(ctx, filter.where(), filter.options()...)
}

func (r *publicationRepository) FindPage(ctx context.Context, filter Filter, page, pageSize int) ([]entity.Publication, int64, error) {
	return r.publications.FindManyPaginated(ctx, filter.where(), page, pageSize, filter.options()...)
}

func (r *publicationRepository) FindByIDs(ctx context.Context, ids []uint, filter Filter) ([]entity.Publication, error) {
	if len(ids) == 0 {
		return []entity.Publication{}, nil
	}
	where := filter.where()
	where["id"] = ids
	rows, err := r.publications.FindActiveMany(ctx, where, filter.options()...)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]entity.Publication, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]entity.Publication, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

func (r *publicationRepository) SearchText(ctx context.Context, query string, filter Filter, limit int) ([]entity.Publication, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	match := datastore.Scopes(func(db *gorm.DB) *gorm.DB {
		return db.Where("(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(body) LIKE ? ESCAPE '\\')", pattern, pattern).Limit(limit)
	})
	return r.publications.FindActiveMany(ctx, filter.where(), filter.options(match)...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
