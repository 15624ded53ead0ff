package datastore_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ledes.com/labportal/internal/datastore"
	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/testutil"
)

var actor = &entity.Account{ID: 7}

func newLinkTypes(t *testing.T) (*datastore.Store[entity.LinkType], *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return datastore.New[entity.LinkType](db), db
}

func createN(t *testing.T, s *datastore.Store[entity.LinkType], n int) []entity.LinkType {
	t.Helper()
	rows := make([]entity.LinkType, n)
	for i := range rows {
		rows[i].Name = fmt.Sprintf("Tipo %02d", i+1)
		require.NoError(t, s.Create(context.Background(), &rows[i], actor))
	}
	return rows
}

func TestCreate_StampsCreator(t *testing.T) {
	s, _ := newLinkTypes(t)
	row := entity.LinkType{Reference: entity.Reference{Name: "Aluno"}}

	require.NoError(t, s.Create(context.Background(), &row, actor))
	assert.NotZero(t, row.ID)
	assert.Equal(t, entity.StatusActive, row.StatusID)
	require.NotNil(t, row.CreatedByID)
	assert.Equal(t, uint(7), *row.CreatedByID)
}

func TestCreate_CallerCreatorWins(t *testing.T) {
	s, _ := newLinkTypes(t)
	explicit := uint(99)
	row := entity.LinkType{Reference: entity.Reference{Name: "Aluno", Audit: entity.Audit{CreatedByID: &explicit}}}

	require.NoError(t, s.Create(context.Background(), &row, actor))
	assert.Equal(t, uint(99), *row.CreatedByID)
}

func TestUpdate_StampsAndRereads(t *testing.T) {
	s, _ := newLinkTypes(t)
	rows := createN(t, s, 1)

	updated, err := s.Update(context.Background(), datastore.Where{"id": rows[0].ID}, map[string]any{"name": "Professor"}, &entity.Account{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, "Professor", updated.Name)
	require.NotNil(t, updated.UpdatedByID)
	assert.Equal(t, uint(3), *updated.UpdatedByID)

	updated, err = s.Update(context.Background(), datastore.Where{"id": rows[0].ID}, map[string]any{"updated_by_id": uint(42)}, actor)
	require.NoError(t, err)
	assert.Equal(t, uint(42), *updated.UpdatedByID)
}

func TestUpdate_NoMatch(t *testing.T) {
	s, _ := newLinkTypes(t)
	_, err := s.Update(context.Background(), datastore.Where{"id": 404}, map[string]any{"name": "x"}, actor)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSoftDelete_Idempotent(t *testing.T) {
	s, db := newLinkTypes(t)
	rows := createN(t, s, 1)
	where := datastore.Where{"id": rows[0].ID}

	first, err := s.SoftDelete(context.Background(), where, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDeleted, first.StatusID)

	second, err := s.SoftDelete(context.Background(), where, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDeleted, second.StatusID)

	var count int64
	require.NoError(t, db.Model(&entity.LinkType{}).Where("id = ?", rows[0].ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "row must never be physically removed")
}

func TestFindActiveMany_ExcludesDeleted(t *testing.T) {
	s, _ := newLinkTypes(t)
	rows := createN(t, s, 6)
	for _, r := range rows[:3] {
		_, err := s.SoftDelete(context.Background(), datastore.Where{"id": r.ID}, actor)
		require.NoError(t, err)
	}

	active, err := s.FindActiveMany(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, active, 3)
	for _, r := range active {
		assert.Equal(t, entity.StatusActive, r.StatusID)
	}

	deleted, err := s.FindActiveMany(context.Background(), datastore.Where{"status_id": entity.StatusDeleted})
	require.NoError(t, err)
	assert.Len(t, deleted, 3)

	all, err := s.FindActiveMany(context.Background(), datastore.Where{"status_id": datastore.AnyStatus})
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestFindActiveMany_Order(t *testing.T) {
	s, _ := newLinkTypes(t)
	createN(t, s, 3)

	asc, err := s.FindActiveMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Tipo 01", asc[0].Name)

	desc, err := s.FindActiveMany(context.Background(), nil, datastore.OrderBy("name desc"))
	require.NoError(t, err)
	assert.Equal(t, "Tipo 03", desc[0].Name)
}

func TestFindActiveUnique(t *testing.T) {
	s, _ := newLinkTypes(t)
	rows := createN(t, s, 2)

	got, err := s.FindActiveUnique(context.Background(), datastore.Where{"id": rows[1].ID})
	require.NoError(t, err)
	assert.Equal(t, rows[1].Name, got.Name)

	_, err = s.FindActiveUnique(context.Background(), nil)
	assert.ErrorIs(t, err, datastore.ErrNotUnique)

	_, err = s.SoftDelete(context.Background(), datastore.Where{"id": rows[1].ID}, actor)
	require.NoError(t, err)
	_, err = s.FindActiveUnique(context.Background(), datastore.Where{"id": rows[1].ID})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindManyPaginated(t *testing.T) {
	s, _ := newLinkTypes(t)
	rows := createN(t, s, 25)
	_, err := s.SoftDelete(context.Background(), datastore.Where{"id": rows[24].ID}, actor)
	require.NoError(t, err)

	page, total, err := s.FindManyPaginated(context.Background(), nil, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(24), total)
	require.Len(t, page, 10)
	assert.Equal(t, rows[10].ID, page[0].ID)
	assert.Equal(t, rows[19].ID, page[9].ID)

	last, _, err := s.FindManyPaginated(context.Background(), nil, 3, 10)
	require.NoError(t, err)
	assert.Len(t, last, 4)

	beyond, _, err := s.FindManyPaginated(context.Background(), nil, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestUpsert(t *testing.T) {
	s, _ := newLinkTypes(t)
	where := datastore.Where{"name": "Outro"}

	created, err := s.Upsert(context.Background(), where,
		&entity.LinkType{Reference: entity.Reference{Name: "Outro"}}, map[string]any{"name": "Outro"}, actor)
	require.NoError(t, err)
	assert.Equal(t, uint(7), *created.CreatedByID)
	assert.Nil(t, created.UpdatedByID)

	updated, err := s.Upsert(context.Background(), where,
		&entity.LinkType{Reference: entity.Reference{Name: "Outro"}}, map[string]any{"name": "Outros"}, &entity.Account{ID: 8})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Outros", updated.Name)
	assert.Equal(t, uint(8), *updated.UpdatedByID)
}

func TestSoftDeleteMany(t *testing.T) {
	s, _ := newLinkTypes(t)
	rows := createN(t, s, 4)

	n, err := s.SoftDeleteMany(context.Background(), datastore.Where{"id": []uint{rows[0].ID, rows[1].ID}}, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	active, err := s.FindActiveMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestTransactor_RollsBack(t *testing.T) {
	s, db := newLinkTypes(t)
	tx := datastore.NewTransactor(db)

	err := tx.Do(context.Background(), func(tx *gorm.DB) error {
		if err := s.WithTx(tx).Create(context.Background(), &entity.LinkType{Reference: entity.Reference{Name: "Temp"}}, actor); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	rows, err := s.FindActiveMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPreloadActive(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	projects := datastore.New[entity.Project](db)
	members := datastore.New[entity.ProjectMember](db)

	p := entity.Project{Title: "Portal", StatusTypeID: 1, CategoryID: 1, CoordinatorID: 1}
	require.NoError(t, projects.Create(ctx, &p, actor))
	for i := uint(1); i <= 3; i++ {
		m := entity.ProjectMember{ProjectID: p.ID, AccountID: i, LinkTypeID: 1, RoleTypeID: 1, ActiveMember: true}
		require.NoError(t, members.Create(ctx, &m, actor))
	}
	_, err := members.SoftDelete(ctx, datastore.Where{"account_id": 2}, actor)
	require.NoError(t, err)

	got, err := projects.FindActiveFirst(ctx, datastore.Where{"id": p.ID}, datastore.PreloadActive("Members"))
	require.NoError(t, err)
	assert.Len(t, got.Members, 2)
}
