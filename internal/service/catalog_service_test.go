package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/repository/mysql"
)

func newCatalogService(t *testing.T) (*CatalogService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewCatalogService(
		mysql.NewProductRepository(db),
		mysql.NewCategoryRepository(db),
		mysql.NewOrderRepository(db),
		mysql.NewCartRepository(db),
	)
	return svc, db
}

func TestListFilters(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	apparel := seedCategory(t, db, "Apparel")
	bags := seedCategory(t, db, "Bags")

	tee := seedProduct(t, db, apparel.ID, "Tee", 1000, 10)
	require.NoError(t, db.Model(tee).Update("on_sale", true).Error)
	coat := seedProduct(t, db, apparel.ID, "Coat", 2500, 10)
	require.NoError(t, db.Model(coat).Update("is_new", true).Error)
	tote := seedProduct(t, db, bags.ID, "Tote", 2900, 10)
	require.NoError(t, db.Model(tote).Updates(map[string]interface{}{"on_sale": true, "is_new": true}).Error)

	list, total, err := svc.List(ctx, product.ListFilter{CategoryID: apparel.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	list, total, err = svc.List(ctx, product.ListFilter{OnSale: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// 条件可组合
	list, total, err = svc.List(ctx, product.ListFilter{OnSale: true, NewArrivals: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, tote.ID, list[0].ID)
}

func TestListKeywordSearchIsCaseInsensitive(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	cat := seedCategory(t, db, "Apparel")
	seedProduct(t, db, cat.ID, "Wool Winter Coat", 18900, 10)
	p := seedProduct(t, db, cat.ID, "Canvas Tote", 2900, 10)
	require.NoError(t, db.Model(p).Update("description", "heavy duty WINTER-ready bag").Error)

	// 名称或描述任一命中
	_, total, err := svc.List(ctx, product.ListFilter{Keyword: "wInTeR"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = svc.List(ctx, product.ListFilter{Keyword: "coat"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = svc.List(ctx, product.ListFilter{Keyword: "nothing-matches"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestListPaginatesTwelvePerPage(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	cat := seedCategory(t, db, "Apparel")
	for i := 0; i < 13; i++ {
		seedProduct(t, db, cat.ID, fmt.Sprintf("Product %02d", i), 1000, 10)
	}

	first, total, err := svc.List(ctx, product.ListFilter{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(13), total)
	assert.Len(t, first, 12)

	second, total, err := svc.List(ctx, product.ListFilter{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(13), total)
	assert.Len(t, second, 1)
}

func TestListRecentlyUpdated(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	cat := seedCategory(t, db, "Apparel")
	stale := seedProduct(t, db, cat.ID, "Stale", 1000, 10)
	older := seedProduct(t, db, cat.ID, "Older", 1000, 10)
	newer := seedProduct(t, db, cat.ID, "Newer", 1000, 10)

	// 绕过 gorm 的自动时间戳直接写 updated_at
	set := func(id int64, tm time.Time) {
		require.NoError(t, db.Exec("UPDATE products SET updated_at = ? WHERE id = ?", tm, id).Error)
	}
	set(stale.ID, time.Now().AddDate(0, 0, -10))
	set(older.ID, time.Now().AddDate(0, 0, -3))
	set(newer.ID, time.Now().AddDate(0, 0, -1))

	list, total, err := svc.List(ctx, product.ListFilter{RecentlyUpdated: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestCreateValidation(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()
	cat := seedCategory(t, db, "Apparel")

	valid := func() *product.Product {
		return &product.Product{
			Name:          "Classic Tee",
			Description:   "a perfectly fine product",
			Price:         1000,
			CategoryID:    cat.ID,
			StockStatus:   product.StockStatusInStock,
			StockQuantity: 10,
		}
	}

	p := valid()
	require.NoError(t, svc.Create(ctx, p))
	assert.NotZero(t, p.ID)

	cases := []struct {
		name   string
		mutate func(*product.Product)
	}{
		{"short name", func(p *product.Product) { p.Name = "ab" }},
		{"short description", func(p *product.Product) { p.Description = "tiny" }},
		{"zero price", func(p *product.Product) { p.Price = 0 }},
		{"negative stock", func(p *product.Product) { p.StockQuantity = -1 }},
		{"bad stock status", func(p *product.Product) { p.StockStatus = "backordered" }},
		{"missing category", func(p *product.Product) { p.CategoryID = 99999 }},
	}
	for _, tc := range cases {
		p := valid()
		tc.mutate(p)
		err := svc.Create(ctx, p)
		assert.True(t, IsValidationError(err), "%s should fail validation", tc.name)
	}
}

func TestBatchUpdateFlags(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	cat := seedCategory(t, db, "Apparel")
	a := seedProduct(t, db, cat.ID, "A-product", 1000, 10)
	b := seedProduct(t, db, cat.ID, "B-product", 1000, 10)
	c := seedProduct(t, db, cat.ID, "C-product", 1000, 10)

	n, err := svc.BatchUpdateFlags(ctx, []int64{a.ID, b.ID}, map[string]interface{}{
		"on_sale":      true,
		"stock_status": product.StockStatusLowStock,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var got product.Product
	require.NoError(t, db.First(&got, a.ID).Error)
	assert.True(t, got.OnSale)
	assert.Equal(t, product.StockStatusLowStock, got.StockStatus)
	require.NoError(t, db.First(&got, c.ID).Error)
	assert.False(t, got.OnSale)

	_, err = svc.BatchUpdateFlags(ctx, []int64{a.ID}, map[string]interface{}{
		"stock_status": "backordered",
	})
	assert.True(t, IsValidationError(err))
}

func TestDeleteProductRules(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	cat := seedCategory(t, db, "Apparel")
	sold := seedProduct(t, db, cat.ID, "Sold once", 1000, 10)
	fresh := seedProduct(t, db, cat.ID, "Never sold", 1000, 10)

	require.NoError(t, db.Create(&order.Order{
		UserID: 1, AddressID: 1, Status: order.StatusPending, Total: 1000,
		Items: []order.Item{{ProductID: sold.ID, Quantity: 1, PriceAtPurchase: 1000}},
	}).Error)

	err := svc.Delete(ctx, sold.ID)
	assert.ErrorIs(t, err, ErrProductInUse)

	// 删除未售出商品时，顺带清掉各购物车里的对应行
	c := &cart.Cart{}
	require.NoError(t, db.Create(c).Error)
	require.NoError(t, db.Create(&cart.Item{CartID: c.ID, ProductID: fresh.ID, Quantity: 2}).Error)
	require.NoError(t, svc.Delete(ctx, fresh.ID))

	var lines int64
	require.NoError(t, db.Model(&cart.Item{}).Where("product_id = ?", fresh.ID).Count(&lines).Error)
	assert.Zero(t, lines)
	_, err = svc.Get(ctx, fresh.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
