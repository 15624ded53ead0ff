package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/modules/about/dto"
	"ledes.com/labportal/internal/modules/about/repository"
	"ledes.com/labportal/internal/modules/about/service"
	"ledes.com/labportal/internal/testutil"
	"ledes.com/labportal/pkg/apperror"
	"ledes.com/labportal/pkg/media"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func appCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestGet_NotConfigured(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewAboutService(repository.NewAboutRepository(db), media.NewResolver(""))

	_, err := svc.Get(context.Background())
	assert.Equal(t, 404, appCode(t, err))
}

func TestUpdate_CreatesThenEdits(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewAboutService(repository.NewAboutRepository(db), media.NewResolver(""))
	admin := &entity.Account{ID: 1, CanAdminister: true}
	ctx := context.Background()

	res, err := svc.Update(ctx, admin, dto.UpdateAboutRequest{
		Description: strPtr("Laboratório"),
		Hours: map[string]dto.DayHoursInput{
			"monday": {Open: boolPtr(true), OpensAt: strPtr("08:00"), ClosesAt: strPtr("17:30")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Laboratório", res.Description)
	assert.Equal(t, entity.DayHours{Open: true, OpensAt: "08:00", ClosesAt: "17:30"}, res.Hours.Monday)
	assert.False(t, res.Hours.Sunday.Open)

	res, err = svc.Update(ctx, admin, dto.UpdateAboutRequest{
		Phone: strPtr("(67) 3345-7000"),
		Hours: map[string]dto.DayHoursInput{"monday": {ClosesAt: strPtr("18:00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Laboratório", res.Description, "omitted fields are kept")
	assert.Equal(t, "(67) 3345-7000", res.Phone)
	assert.Equal(t, "18:00", res.Hours.Monday.ClosesAt)
	assert.Equal(t, "08:00", res.Hours.Monday.OpensAt)

	var count int64
	require.NoError(t, db.Model(&entity.AboutUs{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdate_Rejected(t *testing.T) {
	db := testutil.NewSeededDB(t)
	svc := service.NewAboutService(repository.NewAboutRepository(db), media.NewResolver(""))
	admin := testutil.Account(t, db, "admin")
	ctx := context.Background()

	_, err := svc.Update(ctx, testutil.Account(t, db, "lucas"), dto.UpdateAboutRequest{Phone: strPtr("0")})
	assert.Equal(t, 403, appCode(t, err))

	_, err = svc.Update(ctx, admin, dto.UpdateAboutRequest{
		Hours: map[string]dto.DayHoursInput{"friday": {OpensAt: strPtr("18:00"), ClosesAt: strPtr("08:00")}},
	})
	assert.Equal(t, 400, appCode(t, err))

	missing := uint(999)
	_, err = svc.Update(ctx, admin, dto.UpdateAboutRequest{CoordinatorID: &missing})
	assert.Equal(t, 404, appCode(t, err))

	res, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "18:00", res.Hours.Friday.ClosesAt)
	require.NotNil(t, res.Coordinator)
	assert.Equal(t, admin.ID, res.Coordinator.ID)
}
