package server

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/infra/redis"
	"github.com/example/goshop/internal/middleware"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
	webcontrollers "github.com/example/goshop/web/controllers"
)

const cartCookieName = "cart_token"

// writeServiceError 把业务错误映射为 HTTP 状态码，保持统一返回结构
func writeServiceError(ctx iris.Context, err error) {
	code := 500
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidAddress),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrCategoryCycle),
		service.IsValidationError(err):
		code = 400
	case errors.Is(err, service.ErrAddressInUse),
		errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, service.ErrProductInUse),
		errors.Is(err, service.ErrAlreadyDelivered),
		errors.Is(err, service.ErrInvalidTransition):
		code = 409
	case errors.Is(err, gorm.ErrRecordNotFound):
		code = 404
	}
	ctx.StopWithJSON(code, iris.Map{"code": code, "msg": err.Error()})
}

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 仓储与服务
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	addressRepo := mysql.NewAddressRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	pageRepo := mysql.NewPageRepository(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	catalogSvc := service.NewCatalogService(productRepo, categoryRepo, orderRepo, cartRepo)
	categorySvc := service.NewCategoryService(categoryRepo, productRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	addressSvc := service.NewAddressService(db, addressRepo, orderRepo)
	checkoutSvc := service.NewCheckoutService(db, mqConn)
	orderSvc := service.NewOrderService(orderRepo)
	pageSvc := service.NewPageService(pageRepo)

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	// parseClaims 先查缓存再验签，命中率高时可以省掉大部分验签开销
	parseClaims := func(ctx iris.Context, token string) *auth.Claims {
		reqCtx := ctx.Request().Context()
		if claims, ok, err := tokenCache.Get(reqCtx, token); err == nil && ok {
			return claims
		}
		claims, err := auth.ParseToken(&cfg.JWT, token)
		if err != nil {
			return nil
		}
		_ = tokenCache.Set(reqCtx, token, claims)
		return claims
	}

	bearerToken := func(ctx iris.Context) string {
		if token := ctx.GetHeader("Authorization"); token != "" {
			return token
		}
		return ctx.GetCookie("token")
	}

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"code": 0,
			"msg":  "ok",
		})
	})

	// 用户注册/登录
	userController := webcontrollers.NewUserController(userSvc)
	api.Post("/register", userController.Register)
	api.Post("/login", userController.Login)
	api.Post("/logout", userController.Logout)

	// ---------------- 商品目录（公开） ----------------

	api.Get("/products", func(ctx iris.Context) {
		filter := product.ListFilter{
			CategoryID:      ctx.URLParamInt64Default("category_id", 0),
			OnSale:          ctx.URLParam("on_sale") == "true",
			NewArrivals:     ctx.URLParam("new_arrivals") == "true",
			RecentlyUpdated: ctx.URLParam("recently_updated") == "true",
			Keyword:         ctx.URLParam("q"),
			Page:            ctx.URLParamIntDefault("page", 1),
		}
		list, total, err := catalogSvc.List(ctx.Request().Context(), filter)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
			"products":  list,
			"total":     total,
			"page":      filter.Page,
			"page_size": product.PageSize,
		}})
	})

	api.Get("/products/{id:uint64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetUint64("id")
		p, err := catalogSvc.Get(ctx.Request().Context(), int64(pid))
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Get("/categories", func(ctx iris.Context) {
		list, err := categorySvc.ListAll(ctx.Request().Context())
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/categories/{id:uint64}", func(ctx iris.Context) {
		cid, _ := ctx.Params().GetUint64("id")
		reqCtx := ctx.Request().Context()
		c, err := categorySvc.Get(reqCtx, int64(cid))
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		children, err := categorySvc.ListChildren(reqCtx, c.ID)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
			"category":      c,
			"subcategories": children,
		}})
	})

	api.Get("/pages", func(ctx iris.Context) {
		list, err := pageSvc.ListPublished(ctx.Request().Context())
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/pages/{slug:string}", func(ctx iris.Context) {
		slug := ctx.Params().Get("slug")
		p, err := pageSvc.GetPublished(ctx.Request().Context(), slug)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		if p == nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "page not found"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// ---------------- 购物车（游客可用） ----------------

	// 身份中间件：登录用户走 JWT，否则用 cookie 里的会话令牌标识匿名购物车
	cartAPI := api.Party("/cart", func(ctx iris.Context) {
		if token := bearerToken(ctx); token != "" {
			if claims := parseClaims(ctx, token); claims != nil {
				ctx.Values().Set("user_id", claims.UserID)
				ctx.Next()
				return
			}
		}
		cartToken := ctx.GetCookie(cartCookieName)
		if cartToken == "" {
			cartToken = uuid.NewString()
			ctx.SetCookieKV(cartCookieName, cartToken, iris.CookiePath("/"))
		}
		ctx.Values().Set("cart_token", cartToken)
		ctx.Next()
	})

	cartController := webcontrollers.NewCartController(cartSvc)
	cartAPI.Get("/", cartController.Show)
	cartAPI.Post("/items", cartController.AddItem)
	cartAPI.Put("/items/{id:uint64}", cartController.UpdateItem)
	cartAPI.Delete("/items/{id:uint64}", cartController.RemoveItem)
	cartAPI.Delete("/", cartController.Clear)

	// ---------------- 需要登录的接口 ----------------

	authAPI := api.Party("/", func(ctx iris.Context) {
		token := bearerToken(ctx)
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}
		claims := parseClaims(ctx, token)
		if claims == nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
			return
		}
		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("username", claims.Username)
		ctx.Next()
	})

	// 结算：购物车转订单（整个流程在一个事务里）
	authAPI.Post("/checkout", middleware.CheckoutRateLimit(), func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var req struct {
			AddressID int64 `json:"address_id"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := checkoutSvc.PlaceOrder(ctx.Request().Context(), userID, req.AddressID)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 结算页预选地址
	authAPI.Get("/checkout", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		reqCtx := ctx.Request().Context()
		addresses, err := addressSvc.ListByUser(reqCtx, userID)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		selected, err := addressSvc.DefaultOrFirst(reqCtx, userID)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
			"addresses": addresses,
			"selected":  selected,
		}})
	})

	// 订单历史
	authAPI.Get("/orders", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		page := ctx.URLParamIntDefault("page", 1)
		list, total, err := orderSvc.ListByUser(ctx.Request().Context(), userID, page)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
			"orders": list,
			"total":  total,
			"page":   page,
		}})
	})

	authAPI.Get("/orders/{id:uint64}", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		oid, _ := ctx.Params().GetUint64("id")
		o, err := orderSvc.GetForUser(ctx.Request().Context(), int64(oid), userID)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// ---------------- 地址簿 ----------------

	authAPI.Get("/addresses", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		list, err := addressSvc.ListByUser(ctx.Request().Context(), userID)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Post("/addresses", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var req service.AddressInput
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		a, err := addressSvc.Create(ctx.Request().Context(), userID, &req)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": a})
	})

	authAPI.Put("/addresses/{id:uint64}", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		aid, _ := ctx.Params().GetUint64("id")
		var req service.AddressInput
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		a, err := addressSvc.Update(ctx.Request().Context(), userID, int64(aid), &req)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": a})
	})

	authAPI.Post("/addresses/{id:uint64}/default", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		aid, _ := ctx.Params().GetUint64("id")
		a, err := addressSvc.SetDefault(ctx.Request().Context(), userID, int64(aid))
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": a})
	})

	authAPI.Delete("/addresses/{id:uint64}", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		aid, _ := ctx.Params().GetUint64("id")
		if err := addressSvc.Destroy(ctx.Request().Context(), userID, int64(aid)); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})
}
