package bootstrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledes.com/labportal/internal/bootstrap"
	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/testutil"
	"ledes.com/labportal/pkg/credential"
)

func TestSeed_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	require.NoError(t, bootstrap.Seed(ctx, db))
	require.NoError(t, bootstrap.Seed(ctx, db))

	var accounts int64
	require.NoError(t, db.Model(&entity.Account{}).Count(&accounts).Error)
	assert.Equal(t, int64(4), accounts)

	var linkTypes int64
	require.NoError(t, db.Model(&entity.LinkType{}).Count(&linkTypes).Error)
	assert.Equal(t, int64(5), linkTypes)

	var statuses []entity.RecordStatus
	require.NoError(t, db.Order("id").Find(&statuses).Error)
	require.Len(t, statuses, 2)
	assert.Equal(t, "Excluido", statuses[1].Name)
}

func TestSeed_AdminCredentials(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, bootstrap.Seed(context.Background(), db))

	var admin entity.Account
	require.NoError(t, db.Where("email = ?", "admin").First(&admin).Error)
	assert.True(t, admin.CanAdminister)
	assert.True(t, credential.VerifyPassword("admin", admin.PasswordHash))

	var about entity.AboutUs
	require.NoError(t, db.First(&about, entity.AboutUsID).Error)
	assert.True(t, about.Hours.Friday.Open)
	assert.False(t, about.Hours.Sunday.Open)
	require.NotNil(t, about.CoordinatorID)
	assert.Equal(t, admin.ID, *about.CoordinatorID)
}
