package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledes.com/labportal/internal/modules/account/dto"
	"ledes.com/labportal/internal/modules/account/repository"
	"ledes.com/labportal/internal/modules/account/service"
	"ledes.com/labportal/internal/testutil"
	"ledes.com/labportal/pkg/apperror"
	"ledes.com/labportal/pkg/credential"
	"ledes.com/labportal/pkg/media"
	"ledes.com/labportal/pkg/storage"
)

func appCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func ptr[T any](v T) *T { return &v }

func TestCreateAccount(t *testing.T) {
	db := testutil.NewSeededDB(t)
	images, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := service.NewAccountService(repository.NewAccountRepository(db), images, media.NewResolver("http://localhost/uploads"))
	ctx := context.Background()
	admin := testutil.Account(t, db, "admin")

	input := dto.CreateAccountRequest{
		FirstName: "Maria",
		LastName:  "Souza",
		Email:     " Maria@UFMS.br ",
		Password:  "Segura#2024",
	}

	_, err = svc.Create(ctx, testutil.Account(t, db, "lucas"), input, nil)
	assert.Equal(t, http.StatusForbidden, appCode(t, err))

	created, err := svc.Create(ctx, admin, input, nil)
	require.NoError(t, err)
	assert.Equal(t, "maria@ufms.br", created.Email)
	require.NotNil(t, created.Photo)
	assert.Equal(t, media.KindRemote, created.Photo.Kind)
	assert.Equal(t, credential.AvatarURL("maria@ufms.br"), created.Photo.URL)

	stored := testutil.Account(t, db, "maria@ufms.br")
	assert.True(t, credential.VerifyPassword("Segura#2024", stored.PasswordHash))

	_, err = svc.Create(ctx, admin, input, nil)
	assert.Equal(t, http.StatusConflict, appCode(t, err))

	// E-mails stay reserved after deletion.
	require.NoError(t, svc.Delete(ctx, admin, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, appCode(t, err))
	_, err = svc.Create(ctx, admin, input, nil)
	assert.Equal(t, http.StatusConflict, appCode(t, err))
}

func TestUpdateAccount(t *testing.T) {
	db := testutil.NewSeededDB(t)
	images, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := service.NewAccountService(repository.NewAccountRepository(db), images, media.NewResolver("http://localhost/uploads"))
	ctx := context.Background()
	admin := testutil.Account(t, db, "admin")
	lucas := testutil.Account(t, db, "lucas")
	tiago := testutil.Account(t, db, "tiago")

	t.Run("self edit", func(t *testing.T) {
		updated, err := svc.Update(ctx, lucas, lucas.ID, dto.UpdateAccountRequest{
			Course:   ptr("Engenharia de Software"),
			Password: ptr("Nova#Senha1"),
		}, nil)
		require.NoError(t, err)
		require.NotNil(t, updated.Course)
		assert.Equal(t, "Engenharia de Software", *updated.Course)
		assert.True(t, credential.VerifyPassword("Nova#Senha1", testutil.Account(t, db, "lucas").PasswordHash))
	})

	t.Run("self edit cannot grant flags", func(t *testing.T) {
		_, err := svc.Update(ctx, lucas, lucas.ID, dto.UpdateAccountRequest{CanAdminister: ptr(true)}, nil)
		assert.Equal(t, http.StatusForbidden, appCode(t, err))
		assert.False(t, testutil.Account(t, db, "lucas").CanAdminister)
	})

	t.Run("unchanged flags are allowed", func(t *testing.T) {
		_, err := svc.Update(ctx, lucas, lucas.ID, dto.UpdateAccountRequest{CanAdminister: ptr(false)}, nil)
		require.NoError(t, err)
	})

	t.Run("other account", func(t *testing.T) {
		_, err := svc.Update(ctx, lucas, tiago.ID, dto.UpdateAccountRequest{Course: ptr("x")}, nil)
		assert.Equal(t, http.StatusForbidden, appCode(t, err))
	})

	t.Run("email collision", func(t *testing.T) {
		_, err := svc.Update(ctx, admin, tiago.ID, dto.UpdateAccountRequest{Email: ptr("LUCAS")}, nil)
		assert.Equal(t, http.StatusConflict, appCode(t, err))
	})

	t.Run("admin grants flags", func(t *testing.T) {
		updated, err := svc.Update(ctx, admin, tiago.ID, dto.UpdateAccountRequest{CanManageProjects: ptr(true)}, nil)
		require.NoError(t, err)
		assert.True(t, updated.CanManageProjects)
	})
}

func TestAdministerFlagRequiresAdministrator(t *testing.T) {
	db := testutil.NewSeededDB(t)
	images, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := service.NewAccountService(repository.NewAccountRepository(db), images, media.NewResolver("http://localhost/uploads"))
	ctx := context.Background()

	require.NoError(t, db.Model(testutil.Account(t, db, "tiago")).Update("can_manage_accounts", true).Error)
	manager := testutil.Account(t, db, "tiago")
	lucas := testutil.Account(t, db, "lucas")

	_, err = svc.Update(ctx, manager, manager.ID, dto.UpdateAccountRequest{CanAdminister: ptr(true)}, nil)
	assert.Equal(t, http.StatusForbidden, appCode(t, err))

	_, err = svc.Update(ctx, manager, lucas.ID, dto.UpdateAccountRequest{CanAdminister: ptr(true)}, nil)
	assert.Equal(t, http.StatusForbidden, appCode(t, err))
	assert.False(t, testutil.Account(t, db, "lucas").CanAdminister)

	updated, err := svc.Update(ctx, manager, lucas.ID, dto.UpdateAccountRequest{CanManagePublications: ptr(true)}, nil)
	require.NoError(t, err)
	assert.True(t, updated.CanManagePublications)

	_, err = svc.Create(ctx, manager, dto.CreateAccountRequest{
		FirstName:     "Nova",
		Email:         "nova@ufms.br",
		Password:      "Segura#2024",
		CanAdminister: true,
	}, nil)
	assert.Equal(t, http.StatusForbidden, appCode(t, err))

	updated, err = svc.Update(ctx, testutil.Account(t, db, "admin"), lucas.ID, dto.UpdateAccountRequest{CanAdminister: ptr(true)}, nil)
	require.NoError(t, err)
	assert.True(t, updated.CanAdminister)
}
