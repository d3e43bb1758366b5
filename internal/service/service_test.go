package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/address"
	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/repository/mysql"
)

// newTestDB 每个测试一个独立的 sqlite 内存库，表结构与生产一致
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(mysql.Models()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *user.User {
	t.Helper()
	u := &user.User{
		Username: username,
		Email:    username + "@test.local",
		Password: "x",
		Salt:     "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *category.Category {
	t.Helper()
	c := &category.Category{Name: name, Description: "test category"}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, categoryID int64, name string, price, quantity int64) *product.Product {
	t.Helper()
	p := &product.Product{
		Name:          name,
		Description:   "test product description",
		Price:         price,
		CategoryID:    categoryID,
		StockStatus:   product.StockStatusInStock,
		StockQuantity: quantity,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedAddress(t *testing.T, db *gorm.DB, userID int64, isDefault bool) *address.Address {
	t.Helper()
	a := &address.Address{
		UserID:        userID,
		StreetAddress: "123 Portage Ave",
		City:          "Winnipeg",
		Province:      "Manitoba",
		PostalCode:    "R3C1A5",
		IsDefault:     isDefault,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}
