package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/repository/mysql"
)

type checkoutEnv struct {
	db       *gorm.DB
	carts    *CartService
	checkout *CheckoutService
}

func newCheckoutEnv(t *testing.T) *checkoutEnv {
	t.Helper()
	db := newTestDB(t)
	return &checkoutEnv{
		db:       db,
		carts:    NewCartService(mysql.NewCartRepository(db), mysql.NewProductRepository(db)),
		checkout: NewCheckoutService(db, nil),
	}
}

func (e *checkoutEnv) addToCart(t *testing.T, userID, productID, quantity int64) {
	t.Helper()
	c, err := e.carts.Resolve(context.Background(), cart.Identity{UserID: userID})
	require.NoError(t, err)
	_, err = e.carts.AddItem(context.Background(), c.ID, productID, quantity)
	require.NoError(t, err)
}

func TestPlaceOrderComputesTotalFromCurrentPrices(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()

	u := seedUser(t, env.db, "alice")
	cat := seedCategory(t, env.db, "Apparel")
	tee := seedProduct(t, env.db, cat.ID, "Tee", 1000, 50)   // $10.00
	coat := seedProduct(t, env.db, cat.ID, "Coat", 2500, 50) // $25.00
	addr := seedAddress(t, env.db, u.ID, true)

	env.addToCart(t, u.ID, tee.ID, 2)
	env.addToCart(t, u.ID, coat.ID, 1)

	o, err := env.checkout.PlaceOrder(ctx, u.ID, addr.ID)
	require.NoError(t, err)

	// 2 × $10.00 + 1 × $25.00 = $45.00
	assert.Equal(t, int64(4500), o.Total)
	assert.Equal(t, order.StatusPending, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, int64(1000), o.Items[0].PriceAtPurchase)
	assert.Equal(t, int64(2500), o.Items[1].PriceAtPurchase)
}

func TestPlaceOrderSnapshotSurvivesPriceChange(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()

	u := seedUser(t, env.db, "alice")
	cat := seedCategory(t, env.db, "Apparel")
	p := seedProduct(t, env.db, cat.ID, "Tee", 1000, 50)
	addr := seedAddress(t, env.db, u.ID, true)

	env.addToCart(t, u.ID, p.ID, 3)
	o, err := env.checkout.PlaceOrder(ctx, u.ID, addr.ID)
	require.NoError(t, err)

	// 商品后续涨价不影响既有订单
	require.NoError(t, env.db.Model(&product.Product{}).
		Where("id = ?", p.ID).Update("price", 9999).Error)

	var got order.Order
	require.NoError(t, env.db.Preload("Items").First(&got, o.ID).Error)
	assert.Equal(t, int64(3000), got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(1000), got.Items[0].PriceAtPurchase)
}

func TestPlaceOrderDecrementsStockAndClearsCart(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()

	u := seedUser(t, env.db, "alice")
	cat := seedCategory(t, env.db, "Apparel")
	p := seedProduct(t, env.db, cat.ID, "Tee", 1000, 10)
	addr := seedAddress(t, env.db, u.ID, true)

	env.addToCart(t, u.ID, p.ID, 4)
	_, err := env.checkout.PlaceOrder(ctx, u.ID, addr.ID)
	require.NoError(t, err)

	var got product.Product
	require.NoError(t, env.db.First(&got, p.ID).Error)
	assert.Equal(t, int64(6), got.StockQuantity)

	c, err := env.carts.Resolve(ctx, cart.Identity{UserID: u.ID})
	require.NoError(t, err)
	empty, err := env.carts.IsEmpty(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()

	u := seedUser(t, env.db, "alice")
	addr := seedAddress(t, env.db, u.ID, true)

	// 购物车从未创建
	_, err := env.checkout.PlaceOrder(ctx, u.ID, addr.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)

	// 已创建但没有任何行
	_, err = env.carts.Resolve(ctx, cart.Identity{UserID: u.ID})
	require.NoError(t, err)
	_, err = env.checkout.PlaceOrder(ctx, u.ID, addr.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)

	var n int64
	require.NoError(t, env.db.Model(&order.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPlaceOrderRejectsForeignAddress(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()

	alice := seedUser(t, env.db, "alice")
	bob := seedUser(t, env.db, "bob")
	cat := seedCategory(t, env.db, "Apparel")
	p := seedProduct(t, env.db, cat.ID, "Tee", 1000, 10)
	bobAddr := seedAddress(t, env.db, bob.ID, true)

	env.addToCart(t, alice.ID, p.ID, 1)

	_, err := env.checkout.PlaceOrder(ctx, alice.ID, bobAddr.ID)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = env.checkout.PlaceOrder(ctx, alice.ID, 99999)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestPlaceOrderInsufficientStockRollsBackEverything(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()

	u := seedUser(t, env.db, "alice")
	cat := seedCategory(t, env.db, "Apparel")
	tee := seedProduct(t, env.db, cat.ID, "Tee", 1000, 50)
	belt := seedProduct(t, env.db, cat.ID, "Belt", 4500, 2)
	addr := seedAddress(t, env.db, u.ID, true)

	env.addToCart(t, u.ID, tee.ID, 2)
	env.addToCart(t, u.ID, belt.ID, 3) // 超过剩余库存

	_, err := env.checkout.PlaceOrder(ctx, u.ID, addr.ID)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// 整单回滚：没有订单，第一行已扣的库存恢复，购物车原样保留
	var orders int64
	require.NoError(t, env.db.Model(&order.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	var gotTee, gotBelt product.Product
	require.NoError(t, env.db.First(&gotTee, tee.ID).Error)
	require.NoError(t, env.db.First(&gotBelt, belt.ID).Error)
	assert.Equal(t, int64(50), gotTee.StockQuantity)
	assert.Equal(t, int64(2), gotBelt.StockQuantity)

	c, err := env.carts.Resolve(ctx, cart.Identity{UserID: u.ID})
	require.NoError(t, err)
	n, err := env.carts.ItemCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
