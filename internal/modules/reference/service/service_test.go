package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/modules/reference/dto"
	"ledes.com/labportal/internal/modules/reference/repository"
	"ledes.com/labportal/internal/modules/reference/service"
	"ledes.com/labportal/internal/testutil"
	"ledes.com/labportal/pkg/apperror"
	commonDto "ledes.com/labportal/pkg/dto"
)

func appCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestReferenceLifecycle(t *testing.T) {
	db := testutil.NewSeededDB(t)
	ctx := context.Background()
	admin := testutil.Account(t, db, "admin")
	lucas := testutil.Account(t, db, "lucas")

	svc := service.NewReferenceService[entity.RoleType](
		repository.NewReferenceRepository[entity.RoleType](db),
		service.Labels{Singular: "Tipo Papel", Plural: "Tipos Papel"},
	)

	_, err := svc.Create(ctx, lucas, dto.ReferenceRequest{Name: "Designer"})
	assert.Equal(t, http.StatusForbidden, appCode(t, err))

	created, err := svc.Create(ctx, admin, dto.ReferenceRequest{Name: "  Designer "})
	require.NoError(t, err)
	assert.Equal(t, "Designer", created.Name)

	_, err = svc.Create(ctx, admin, dto.ReferenceRequest{Name: "Designer"})
	assert.Equal(t, http.StatusConflict, appCode(t, err))

	t.Run("rename keeps own name", func(t *testing.T) {
		updated, err := svc.Update(ctx, admin, created.ID, dto.ReferenceRequest{Name: "Designer"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
	})

	t.Run("rename to another active name", func(t *testing.T) {
		_, err := svc.Update(ctx, admin, created.ID, dto.ReferenceRequest{Name: "Analista"})
		assert.Equal(t, http.StatusConflict, appCode(t, err))
	})

	require.NoError(t, svc.Delete(ctx, admin, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, appCode(t, err))
	assert.Equal(t, "Tipo Papel não existe.", err.Error())

	err = svc.Delete(ctx, admin, created.ID)
	assert.Equal(t, http.StatusNotFound, appCode(t, err))

	// A deleted name can be reused.
	_, err = svc.Create(ctx, admin, dto.ReferenceRequest{Name: "Designer"})
	require.NoError(t, err)
}

func TestReferenceList(t *testing.T) {
	db := testutil.NewSeededDB(t)
	ctx := context.Background()

	svc := service.NewReferenceService[entity.LinkType](
		repository.NewReferenceRepository[entity.LinkType](db),
		service.Labels{Singular: "Tipo Vínculo", Plural: "Tipos Vínculo"},
	)

	all, err := svc.List(ctx, commonDto.ListQuery{})
	require.NoError(t, err)
	rows, ok := all.([]*commonDto.ReferenceResponse)
	require.True(t, ok)
	require.Len(t, rows, 5)
	assert.Equal(t, "Aluno", rows[0].Name)

	page, err := svc.List(ctx, commonDto.ListQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	paged, ok := page.(commonDto.Paginated[*commonDto.ReferenceResponse])
	require.True(t, ok)
	require.Len(t, paged.Items, 2)
	assert.Equal(t, "Outro", paged.Items[0].Name)
	assert.EqualValues(t, 5, paged.Meta.TotalItems)
}

func TestLabels(t *testing.T) {
	l := service.Labels{Singular: "Tipo Projeto", Plural: "Tipos Projeto"}
	assert.Equal(t, "Tipo Projeto criado com sucesso.", l.Created())
	assert.Equal(t, "Tipos Projeto encontrados.", l.Listed())
}
