// Package datastore layers audit stamping, soft deletion, active-row
// filtering and pagination over gorm for every entity type.
package datastore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/entity"
)

const statusColumn = "status_id"

// Where is an equality filter keyed by column name. Slice values become IN.
type Where map[string]any

type anyStatus struct{}

// AnyStatus, used as the status_id value of a Where, disables the active filter.
var AnyStatus = anyStatus{}

// ErrNotUnique is returned by FindActiveUnique when more than one row matches.
var ErrNotUnique = errors.New("datastore: more than one row matches unique lookup")

// Scope adds arbitrary conditions to a query.
type Scope = func(*gorm.DB) *gorm.DB

type preload struct {
	query string
	args  []any
}

type options struct {
	order    string
	scopes   []Scope
	preloads []preload
}

type Option func(*options)

// OrderBy replaces the default "id asc" ordering.
func OrderBy(order string) Option {
	return func(o *options) { o.order = order }
}

// Scopes adds conditions applied to both the find and the count of a query.
func Scopes(scopes ...Scope) Option {
	return func(o *options) { o.scopes = append(o.scopes, scopes...) }
}

// Preload loads a relation on the returned rows.
func Preload(query string, args ...any) Option {
	return func(o *options) { o.preloads = append(o.preloads, preload{query: query, args: args}) }
}

// PreloadActive loads a relation keeping only its active rows.
func PreloadActive(query string) Option {
	return Preload(query, statusColumn+" = ?", entity.StatusActive)
}

func collect(opts []Option) options {
	o := options{order: "id asc"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Store is the decorated data access for one entity type. It holds no state
// beyond the gorm handle.
type Store[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

// WithTx returns a store bound to tx.
func (s *Store[T]) WithTx(tx *gorm.DB) *Store[T] {
	return &Store[T]{db: tx}
}

func (s *Store[T]) model(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(T))
}

// filter copies where, injecting the active status unless the caller set one.
func filter(where Where, activeOnly bool) map[string]any {
	out := make(map[string]any, len(where)+1)
	for k, v := range where {
		out[k] = v
	}
	status, ok := out[statusColumn]
	switch {
	case ok && status == AnyStatus:
		delete(out, statusColumn)
	case !ok && activeOnly:
		out[statusColumn] = entity.StatusActive
	}
	return out
}

func applyWhere(q *gorm.DB, where Where, activeOnly bool) *gorm.DB {
	if cond := filter(where, activeOnly); len(cond) > 0 {
		q = q.Where(cond)
	}
	return q
}

func (s *Store[T]) find(ctx context.Context, where Where, o options) *gorm.DB {
	q := applyWhere(s.model(ctx), where, true).Scopes(o.scopes...)
	for _, p := range o.preloads {
		q = q.Preload(p.query, p.args...)
	}
	return q.Order(o.order)
}

func actorID(actor *entity.Account) *uint {
	if actor == nil {
		return nil
	}
	id := actor.ID
	return &id
}

func stamp(data map[string]any, column string, actor *entity.Account) map[string]any {
	out := make(map[string]any, len(data)+1)
	if id := actorID(actor); id != nil {
		out[column] = *id
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

// Create inserts value as an active row stamped with the actor unless the
// caller already set the creator.
func (s *Store[T]) Create(ctx context.Context, value *T, actor *entity.Account) error {
	if a, ok := any(value).(entity.Auditable); ok {
		audit := a.AuditFields()
		if audit.StatusID == 0 {
			audit.StatusID = entity.StatusActive
		}
		if audit.CreatedByID == nil {
			audit.CreatedByID = actorID(actor)
		}
	}
	return s.db.WithContext(ctx).Create(value).Error
}

// Update applies data to the first row matching where, at any status unless
// where names one, and returns the row as stored afterwards.
func (s *Store[T]) Update(ctx context.Context, where Where, data map[string]any, actor *entity.Account) (*T, error) {
	row := new(T)
	if err := applyWhere(s.model(ctx), where, false).Order("id asc").First(row).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(row).Updates(stamp(data, "updated_by_id", actor)).Error; err != nil {
		return nil, err
	}

	// row still carries its primary key, which First uses as the condition.
	if err := s.db.WithContext(ctx).First(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// UpdateMany applies data to every row matching where and returns the count.
func (s *Store[T]) UpdateMany(ctx context.Context, where Where, data map[string]any, actor *entity.Account) (int64, error) {
	res := applyWhere(s.model(ctx), where, false).Updates(stamp(data, "updated_by_id", actor))
	return res.RowsAffected, res.Error
}

// Upsert updates the row matching where or creates it from create.
func (s *Store[T]) Upsert(ctx context.Context, where Where, create *T, update map[string]any, actor *entity.Account) (*T, error) {
	var count int64
	if err := applyWhere(s.model(ctx), where, false).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return s.Update(ctx, where, update, actor)
	}
	if err := s.Create(ctx, create, actor); err != nil {
		return nil, err
	}
	return create, nil
}

func (s *Store[T]) FindActiveFirst(ctx context.Context, where Where, opts ...Option) (*T, error) {
	row := new(T)
	if err := s.find(ctx, where, collect(opts)).First(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindActiveUnique is FindActiveFirst for lookups expected to match at most one row.
func (s *Store[T]) FindActiveUnique(ctx context.Context, where Where, opts ...Option) (*T, error) {
	var rows []T
	if err := s.find(ctx, where, collect(opts)).Limit(2).Find(&rows).Error; err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, gorm.ErrRecordNotFound
	case 1:
		return &rows[0], nil
	default:
		return nil, ErrNotUnique
	}
}

func (s *Store[T]) FindActiveMany(ctx context.Context, where Where, opts ...Option) ([]T, error) {
	rows := []T{}
	if err := s.find(ctx, where, collect(opts)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindManyPaginated returns one page of active rows and the total number of
// matching rows. Pages past the end are empty.
func (s *Store[T]) FindManyPaginated(ctx context.Context, where Where, page, pageSize int, opts ...Option) ([]T, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	o := collect(opts)

	var total int64
	if err := applyWhere(s.model(ctx), where, true).Scopes(o.scopes...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []T{}
	if err := s.find(ctx, where, o).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SoftDelete marks the first row matching where as deleted.
func (s *Store[T]) SoftDelete(ctx context.Context, where Where, actor *entity.Account) (*T, error) {
	return s.Update(ctx, where, map[string]any{statusColumn: entity.StatusDeleted}, actor)
}

// SoftDeleteMany marks every row matching where as deleted.
func (s *Store[T]) SoftDeleteMany(ctx context.Context, where Where, actor *entity.Account) (int64, error) {
	return s.UpdateMany(ctx, where, map[string]any{statusColumn: entity.StatusDeleted}, actor)
}
