package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/service"
)

// CartController 购物车接口。登录用户和匿名会话共用同一套逻辑，
// 归属标识由路由层的身份中间件写入 ctx.Values。
type CartController struct {
	cartService *service.CartService
}

// NewCartController 构造函数，供路由层复用同一套逻辑。
func NewCartController(cartSvc *service.CartService) *CartController {
	return &CartController{cartService: cartSvc}
}

// identity 从请求上下文还原购物车归属
func (c *CartController) identity(ctx iris.Context) cart.Identity {
	return cart.Identity{
		UserID:       ctx.Values().GetInt64Default("user_id", 0),
		SessionToken: ctx.Values().GetStringDefault("cart_token", ""),
	}
}

func (c *CartController) resolve(ctx iris.Context) (*cart.Cart, bool) {
	ca, err := c.cartService.Resolve(ctx.Request().Context(), c.identity(ctx))
	if err != nil {
		ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
		return nil, false
	}
	return ca, true
}

// Show GET /api/cart：行、件数与按当前价计算的合计
func (c *CartController) Show(ctx iris.Context) {
	ca, ok := c.resolve(ctx)
	if !ok {
		return
	}
	reqCtx := ctx.Request().Context()
	lines, err := c.cartService.Lines(reqCtx, ca.ID)
	if err != nil {
		ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
		return
	}
	var total, count int64
	items := make([]iris.Map, 0, len(lines))
	for _, l := range lines {
		total += l.Subtotal()
		count += l.Item.Quantity
		items = append(items, iris.Map{
			"id":       l.Item.ID,
			"product":  l.Product,
			"quantity": l.Item.Quantity,
			"subtotal": l.Subtotal(),
		})
	}
	ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
		"items":      items,
		"item_count": count,
		"total":      total,
	}})
}

// AddItem POST /api/cart/items：同商品合并数量。
// 数量必须大于 0，聚合本身不做该校验，由这里拦下。
func (c *CartController) AddItem(ctx iris.Context) {
	var req struct {
		ProductID int64 `json:"product_id"`
		Quantity  int64 `json:"quantity"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
		return
	}
	if req.Quantity <= 0 {
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "数量必须大于 0"})
		return
	}
	ca, ok := c.resolve(ctx)
	if !ok {
		return
	}
	item, err := c.cartService.AddItem(ctx.Request().Context(), ca.ID, req.ProductID, req.Quantity)
	if err != nil {
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
		return
	}
	ctx.JSON(iris.Map{"code": 0, "data": item})
}

// UpdateItem PUT /api/cart/items/{id}：数量 <= 0 等价于删除该行
func (c *CartController) UpdateItem(ctx iris.Context) {
	itemID, _ := ctx.Params().GetUint64("id")
	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
		return
	}
	ca, ok := c.resolve(ctx)
	if !ok {
		return
	}
	if err := c.cartService.UpdateItemQuantity(ctx.Request().Context(), ca.ID, int64(itemID), req.Quantity); err != nil {
		ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": err.Error()})
		return
	}
	ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
}

// RemoveItem DELETE /api/cart/items/{id}
func (c *CartController) RemoveItem(ctx iris.Context) {
	itemID, _ := ctx.Params().GetUint64("id")
	ca, ok := c.resolve(ctx)
	if !ok {
		return
	}
	if err := c.cartService.RemoveItem(ctx.Request().Context(), ca.ID, int64(itemID)); err != nil {
		ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": err.Error()})
		return
	}
	ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
}

// Clear DELETE /api/cart
func (c *CartController) Clear(ctx iris.Context) {
	ca, ok := c.resolve(ctx)
	if !ok {
		return
	}
	if err := c.cartService.Clear(ctx.Request().Context(), ca.ID); err != nil {
		ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
		return
	}
	ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
}
