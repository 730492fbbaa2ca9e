package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"casestore/internal/database"
	"casestore/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB returns a migrated in-memory database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newProduct(name string, category models.Category, price string, stock int) *models.Product {
	return &models.Product{
		Name:        name,
		Description: name + " description",
		Category:    category,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Images:      []string{name + ".jpg"},
		Tags:        []string{},
		IsActive:    true,
	}
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New().String(), Name: "User " + email, Email: email, Password: "hash", Role: models.RoleUser, IsActive: true}
	require.NoError(t, db.Omit("Addresses", "Cart").Create(u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, p *models.Product) *models.Product {
	t.Helper()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

var ctx = context.Background()
