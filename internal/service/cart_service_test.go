package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/product"
)

func newCartService(t *testing.T) (*CartService, *checkoutEnv) {
	t.Helper()
	env := newCheckoutEnv(t)
	return env.carts, env
}

func TestResolveCreatesCartLazily(t *testing.T) {
	svc, env := newCartService(t)
	ctx := context.Background()
	u := seedUser(t, env.db, "alice")

	c1, err := svc.Resolve(ctx, cart.Identity{UserID: u.ID})
	require.NoError(t, err)
	c2, err := svc.Resolve(ctx, cart.Identity{UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)

	// 匿名会话用 token 定位，和登录用户的购物车互不干扰
	anon, err := svc.Resolve(ctx, cart.Identity{SessionToken: "f4c1e0de-session"})
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, anon.ID)
	again, err := svc.Resolve(ctx, cart.Identity{SessionToken: "f4c1e0de-session"})
	require.NoError(t, err)
	assert.Equal(t, anon.ID, again.ID)
}

func TestAddItemMergesSameProduct(t *testing.T) {
	svc, env := newCartService(t)
	ctx := context.Background()

	u := seedUser(t, env.db, "alice")
	cat := seedCategory(t, env.db, "Apparel")
	p := seedProduct(t, env.db, cat.ID, "Tee", 1000, 50)
	c, err := svc.Resolve(ctx, cart.Identity{UserID: u.ID})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, c.ID, p.ID, 2)
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, c.ID, p.ID, 3)
	require.NoError(t, err)

	// 同商品合并为一行，数量累加
	assert.Equal(t, int64(5), item.Quantity)
	lines, err := svc.Lines(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, env := newCartService(t)
	ctx := context.Background()
	u := seedUser(t, env.db, "alice")
	c, err := svc.Resolve(ctx, cart.Identity{UserID: u.ID})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, c.ID, 99999, 1)
	assert.Error(t, err)
}

func TestUpdateItemQuantityZeroDeletesLine(t *testing.T) {
	svc, env := newCartService(t)
	ctx := context.Background()

	u := seedUser(t, env.db, "alice")
	cat := seedCategory(t, env.db, "Apparel")
	p := seedProduct(t, env.db, cat.ID, "Tee", 1000, 50)
	c, err := svc.Resolve(ctx, cart.Identity{UserID: u.ID})
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, c.ID, p.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateItemQuantity(ctx, c.ID, item.ID, 0))
	empty, err := svc.IsEmpty(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestCartTotalUsesCurrentPrice(t *testing.T) {
	svc, env := newCartService(t)
	ctx := context.Background()

	u := seedUser(t, env.db, "alice")
	cat := seedCategory(t, env.db, "Apparel")
	p := seedProduct(t, env.db, cat.ID, "Tee", 1000, 50)
	c, err := svc.Resolve(ctx, cart.Identity{UserID: u.ID})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, c.ID, p.ID, 2)
	require.NoError(t, err)

	total, err := svc.Total(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), total)

	// 改价后购物车合计立即跟随当前价
	require.NoError(t, env.db.Model(&product.Product{}).
		Where("id = ?", p.ID).Update("price", 1500).Error)
	total, err = svc.Total(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), total)
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, env := newCartService(t)
	ctx := context.Background()

	u := seedUser(t, env.db, "alice")
	cat := seedCategory(t, env.db, "Apparel")
	tee := seedProduct(t, env.db, cat.ID, "Tee", 1000, 50)
	coat := seedProduct(t, env.db, cat.ID, "Coat", 2500, 50)
	c, err := svc.Resolve(ctx, cart.Identity{UserID: u.ID})
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, c.ID, tee.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, c.ID, coat.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, c.ID, item.ID))
	n, err := svc.ItemCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, svc.Clear(ctx, c.ID))
	empty, err := svc.IsEmpty(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, empty)
}
