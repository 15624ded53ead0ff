package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ledes.com/labportal/internal/bootstrap"
	"ledes.com/labportal/internal/entity"
)

// NewSeededDB returns a database holding the default seed data.
func NewSeededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := NewDB(t)
	require.NoError(t, bootstrap.Seed(context.Background(), db))
	return db
}

// Account loads the account with the given e-mail.
func Account(t *testing.T, db *gorm.DB, email string) *entity.Account {
	t.Helper()
	var a entity.Account
	require.NoError(t, db.Where("email = ?", email).First(&a).Error)
	return &a
}

// ReferenceID returns the id of the row of T named name.
func ReferenceID[T any](t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	var ref entity.Reference
	require.NoError(t, db.Model(new(T)).Where("name = ?", name).First(&ref).Error)
	return ref.ID
}
