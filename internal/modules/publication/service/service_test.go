package service_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/modules/publication/dto"
	"ledes.com/labportal/internal/modules/publication/repository"
	"ledes.com/labportal/internal/modules/publication/service"
	"ledes.com/labportal/internal/testutil"
	"ledes.com/labportal/pkg/apperror"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/media"
	"ledes.com/labportal/pkg/storage"
)

type fakeIndex struct {
	indexed map[uint]entity.Publication
	deleted []uint
	hits    []uint
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[uint]entity.Publication{}}
}

func (f *fakeIndex) IndexPublication(_ context.Context, p *entity.Publication) error {
	f.indexed[p.ID] = *p
	return nil
}

func (f *fakeIndex) DeletePublication(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchPublications(context.Context, string, bool, int) ([]uint, error) {
	return f.hits, f.err
}

type fixture struct {
	db    *gorm.DB
	svc   service.PublicationService
	index *fakeIndex
	admin *entity.Account
	lucas *entity.Account
}

func newFixture(t *testing.T, withIndex bool) *fixture {
	t.Helper()
	db := testutil.NewSeededDB(t)
	images, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{db: db, admin: testutil.Account(t, db, "admin"), lucas: testutil.Account(t, db, "lucas")}
	repo := repository.NewPublicationRepository(db)
	resolver := media.NewResolver("http://localhost/uploads")
	if withIndex {
		f.index = newFakeIndex()
		f.svc = service.NewPublicationService(repo, f.index, images, resolver)
	} else {
		f.svc = service.NewPublicationService(repo, nil, images, resolver)
	}
	return f
}

func appCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func pngFile(t *testing.T) *media.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1280, 960))))
	f, err := media.Read(&buf, "capa.png", "cover")
	require.NoError(t, err)
	return f
}

func boolPtr(b bool) *bool { return &b }

func (f *fixture) create(t *testing.T, title, visibleFrom string, visible bool) *dto.PublicationResponse {
	t.Helper()
	res, err := f.svc.Create(context.Background(), f.admin, dto.CreatePublicationRequest{
		Title:       title,
		Body:        "<p>Conteúdo de " + title + "</p>",
		VisibleFrom: visibleFrom,
		Visible:     boolPtr(visible),
	}, service.Images{})
	require.NoError(t, err)
	return res
}

func TestCreate_SanitizesAndDefaults(t *testing.T) {
	f := newFixture(t, true)

	res, err := f.svc.Create(context.Background(), f.admin, dto.CreatePublicationRequest{
		Title:       "Semana Acadêmica",
		Body:        `<p onclick="x()">Inscrições abertas</p><script>alert(1)</script>`,
		VisibleFrom: "2024-01-15",
	}, service.Images{})
	require.NoError(t, err)

	assert.Equal(t, "<p>Inscrições abertas</p>", res.Body)
	assert.True(t, res.Visible)
	assert.False(t, res.Featured)
	assert.Equal(t, "2024-01-15", res.VisibleFrom)
	assert.Equal(t, media.PublicationCoverPlaceholder, res.Cover.URL)
	assert.Equal(t, media.PublicationThumbnailPlaceholder, res.Thumbnail.URL)
	require.NotNil(t, res.Author)
	assert.Equal(t, f.admin.ID, res.Author.ID)
	assert.Contains(t, f.index.indexed, res.ID)
}

func TestCreate_DerivesThumbnailFromCover(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.svc.Create(context.Background(), f.admin, dto.CreatePublicationRequest{
		Title:       "Nova capa",
		Body:        "texto",
		VisibleFrom: "2024-01-15",
	}, service.Images{Cover: pngFile(t)})
	require.NoError(t, err)

	assert.Equal(t, media.KindLocal, res.Cover.Kind)
	assert.Equal(t, media.KindLocal, res.Thumbnail.Kind)
	assert.NotEqual(t, res.Cover.URL, res.Thumbnail.URL)
	assert.Contains(t, res.Thumbnail.URL, ".jpg")
}

func TestCreate_Rejected(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.lucas, dto.CreatePublicationRequest{Title: "Sem acesso", Body: "x", VisibleFrom: "2024-01-01"}, service.Images{})
	assert.Equal(t, 403, appCode(t, err))

	_, err = f.svc.Create(ctx, f.admin, dto.CreatePublicationRequest{Title: "Vazia", Body: "<script></script>", VisibleFrom: "2024-01-01"}, service.Images{})
	assert.Equal(t, 400, appCode(t, err))

	for _, title := range []string{"    ", "  ab  "} {
		_, err = f.svc.Create(ctx, f.admin, dto.CreatePublicationRequest{Title: title, Body: "<p>texto</p>", VisibleFrom: "2024-01-01"}, service.Images{})
		assert.Equal(t, 400, appCode(t, err), "title %q", title)
	}
	var count int64
	require.NoError(t, f.db.Model(&entity.Publication{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVisibility(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	older := f.create(t, "Antiga", "2023-05-01", true)
	newer := f.create(t, "Recente", "2024-05-01", true)
	hidden := f.create(t, "Oculta", "2024-02-01", false)
	scheduled := f.create(t, "Agendada", "2999-01-01", true)

	res, err := f.svc.List(ctx, nil, dto.PublicationFilter{})
	require.NoError(t, err)
	public := res.([]*dto.PublicationResponse)
	require.Len(t, public, 2)
	assert.Equal(t, newer.ID, public[0].ID)
	assert.Equal(t, older.ID, public[1].ID)

	res, err = f.svc.List(ctx, f.admin, dto.PublicationFilter{})
	require.NoError(t, err)
	all := res.([]*dto.PublicationResponse)
	require.Len(t, all, 4)
	assert.Equal(t, scheduled.ID, all[0].ID)

	_, err = f.svc.Get(ctx, f.lucas, hidden.ID)
	assert.Equal(t, 404, appCode(t, err))
	_, err = f.svc.Get(ctx, nil, scheduled.ID)
	assert.Equal(t, 404, appCode(t, err))

	got, err := f.svc.Get(ctx, f.admin, hidden.ID)
	require.NoError(t, err)
	assert.False(t, got.Visible)

	shown, err := f.svc.SetVisibility(ctx, f.admin, hidden.ID, true)
	require.NoError(t, err)
	assert.True(t, shown.Visible)
	_, err = f.svc.Get(ctx, nil, hidden.ID)
	assert.NoError(t, err)

	res, err = f.svc.List(ctx, nil, dto.PublicationFilter{ListQuery: commonDto.ListQuery{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	page := res.(commonDto.Paginated[*dto.PublicationResponse])
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Meta.TotalItems)
}

func TestSetFeatured(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p := f.create(t, "Destaque", "2024-01-01", true)

	_, err := f.svc.SetFeatured(ctx, f.lucas, p.ID, true)
	assert.Equal(t, 403, appCode(t, err))

	res, err := f.svc.SetFeatured(ctx, f.admin, p.ID, true)
	require.NoError(t, err)
	assert.True(t, res.Featured)
	assert.True(t, f.index.indexed[p.ID].Featured)

	list, err := f.svc.List(ctx, nil, dto.PublicationFilter{Featured: boolPtr(true)})
	require.NoError(t, err)
	assert.Len(t, list.([]*dto.PublicationResponse), 1)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	p := f.create(t, "Original", "2024-01-01", true)

	title := "Editada"
	body := "<p>novo <b>texto</b></p><iframe src=\"x\"></iframe>"
	res, err := f.svc.Update(ctx, f.admin, p.ID, dto.UpdatePublicationRequest{Title: &title, Body: &body}, service.Images{})
	require.NoError(t, err)
	assert.Equal(t, title, res.Title)
	assert.Equal(t, "<p>novo <b>texto</b></p>", res.Body)
	assert.Equal(t, p.Cover.URL, res.Cover.URL)

	_, err = f.svc.Update(ctx, f.admin, 999, dto.UpdatePublicationRequest{Title: &title}, service.Images{})
	assert.Equal(t, 404, appCode(t, err))

	blank := "   "
	_, err = f.svc.Update(ctx, f.admin, p.ID, dto.UpdatePublicationRequest{Title: &blank}, service.Images{})
	assert.Equal(t, 400, appCode(t, err))
}

func TestDelete(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p := f.create(t, "Removida", "2024-01-01", true)

	require.NoError(t, f.svc.Delete(ctx, f.admin, p.ID))
	assert.Equal(t, []uint{p.ID}, f.index.deleted)

	_, err := f.svc.Get(ctx, f.admin, p.ID)
	assert.Equal(t, 404, appCode(t, err))
}

func TestSearch(t *testing.T) {
	t.Run("database fallback", func(t *testing.T) {
		f := newFixture(t, false)
		match := f.create(t, "Robótica Educacional", "2024-01-01", true)
		f.create(t, "Outro assunto", "2024-01-02", true)
		f.create(t, "Robótica oculta", "2024-01-03", false)

		res, err := f.svc.Search(context.Background(), nil, dto.SearchQuery{Q: "robótica"})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, match.ID, res[0].ID)
	})

	t.Run("index order", func(t *testing.T) {
		f := newFixture(t, true)
		a := f.create(t, "Primeira", "2024-01-01", true)
		b := f.create(t, "Segunda", "2024-01-02", true)
		f.index.hits = []uint{b.ID, 999, a.ID}

		res, err := f.svc.Search(context.Background(), nil, dto.SearchQuery{Q: "qualquer"})
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, b.ID, res[0].ID)
		assert.Equal(t, a.ID, res[1].ID)
	})

	t.Run("index failure falls back", func(t *testing.T) {
		f := newFixture(t, true)
		f.create(t, "Laboratório aberto", "2024-01-01", true)
		f.index.err = errors.New("connection refused")

		res, err := f.svc.Search(context.Background(), nil, dto.SearchQuery{Q: "aberto"})
		require.NoError(t, err)
		assert.Len(t, res, 1)
	})
}
