// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"testing"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with every table migrated.
// The pool is pinned to one connection: each new connection would see an
// empty database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to in-memory db")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate tables")
	return db
}

func SeedCustomer(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	u := &models.User{Username: username, Email: username + "@example.com", Role: models.RoleCustomer}
	require.NoError(t, db.Create(u).Error)
	return u
}

func SeedVendor(t *testing.T, db *gorm.DB, store string) (*models.User, *models.Vendor) {
	t.Helper()

	u := &models.User{Username: store, Email: store + "@example.com", Role: models.RoleVendor}
	require.NoError(t, db.Create(u).Error)

	v := &models.Vendor{UserID: u.ID, StoreName: store, Verified: true}
	require.NoError(t, db.Create(v).Error)
	return u, v
}

func SeedProduct(t *testing.T, db *gorm.DB, vendorID uuid.UUID, name, price string) *models.Product {
	t.Helper()

	p := &models.Product{
		VendorID: vendorID,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Active:   true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func SeedBalance(t *testing.T, db *gorm.DB, vendorID uuid.UUID, balance string) {
	t.Helper()

	e := models.NewVendorEarning(vendorID)
	e.Balance = decimal.RequireFromString(balance)
	require.NoError(t, db.Create(e).Error)
}
