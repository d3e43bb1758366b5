package server

import (
	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/page"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

// productRequest 后台创建/更新商品的请求体
type productRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int64  `json:"price"` // 单位：分
	CategoryID    int64  `json:"category_id"`
	StockStatus   string `json:"stock_status"`
	StockQuantity int64  `json:"stock_quantity"`
	OnSale        bool   `json:"on_sale"`
	IsNew         bool   `json:"is_new"`
}

func (req *productRequest) applyTo(p *product.Product) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.CategoryID = req.CategoryID
	p.StockStatus = req.StockStatus
	p.StockQuantity = req.StockQuantity
	p.OnSale = req.OnSale
	p.IsNew = req.IsNew
}

// categoryRequest 后台分类请求体
type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parent_id"`
}

// pageRequest 后台静态页面请求体
type pageRequest struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台 Web 服务分离。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)

	// 仓储与服务
	productRepo := mysql.NewProductRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	pageRepo := mysql.NewPageRepository(db)

	catalogSvc := service.NewCatalogService(productRepo, categoryRepo, orderRepo, cartRepo)
	categorySvc := service.NewCategoryService(categoryRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo)
	pageSvc := service.NewPageService(pageRepo)

	api := app.Party("/api")

	// ---------- 商品管理 ----------

	// 商品列表（后台复用前台的组合筛选）
	api.Get("/products", func(ctx iris.Context) {
		filter := product.ListFilter{
			CategoryID: ctx.URLParamInt64Default("category_id", 0),
			Keyword:    ctx.URLParam("q"),
			Page:       ctx.URLParamIntDefault("page", 1),
		}
		list, total, err := catalogSvc.List(ctx.Request().Context(), filter)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"products": list, "total": total}})
	})

	// 创建商品
	api.Post("/products", func(ctx iris.Context) {
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p := &product.Product{}
		req.applyTo(p)
		if err := catalogSvc.Create(ctx.Request().Context(), p); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// 更新商品
	api.Put("/products/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		p, err := catalogSvc.Get(ctx.Request().Context(), int64(id))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
			return
		}
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		req.applyTo(p)
		if err := catalogSvc.Update(ctx.Request().Context(), p); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// 批量更新标记字段（促销/上新/库存状态）
	api.Post("/products/batch", func(ctx iris.Context) {
		var req struct {
			IDs         []int64 `json:"ids"`
			OnSale      *bool   `json:"on_sale"`
			IsNew       *bool   `json:"is_new"`
			StockStatus *string `json:"stock_status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		updates := map[string]interface{}{}
		if req.OnSale != nil {
			updates["on_sale"] = *req.OnSale
		}
		if req.IsNew != nil {
			updates["is_new"] = *req.IsNew
		}
		if req.StockStatus != nil {
			updates["stock_status"] = *req.StockStatus
		}
		n, err := catalogSvc.BatchUpdateFlags(ctx.Request().Context(), req.IDs, updates)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"updated": n}})
	})

	// 删除商品（有订单行引用时返回 409）
	api.Delete("/products/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		if err := catalogSvc.Delete(ctx.Request().Context(), int64(id)); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})

	// ---------- 分类管理 ----------

	api.Get("/categories", func(ctx iris.Context) {
		list, err := categorySvc.ListAll(ctx.Request().Context())
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Post("/categories", func(ctx iris.Context) {
		var req categoryRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		c := &category.Category{Name: req.Name, Description: req.Description, ParentID: req.ParentID}
		if err := categorySvc.Create(ctx.Request().Context(), c); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Put("/categories/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		c, err := categorySvc.Get(ctx.Request().Context(), int64(id))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "category not found"})
			return
		}
		var req categoryRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		c.Name = req.Name
		c.Description = req.Description
		c.ParentID = req.ParentID
		if err := categorySvc.Update(ctx.Request().Context(), c); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Delete("/categories/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		if err := categorySvc.Delete(ctx.Request().Context(), int64(id)); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})

	// ---------- 订单管理 ----------

	// 最近订单列表，可按状态筛选
	api.Get("/orders", func(ctx iris.Context) {
		limit := ctx.URLParamIntDefault("limit", 20)
		status := ctx.URLParam("status")
		var err error
		var list interface{}
		if status != "" {
			list, err = orderSvc.ListByStatus(ctx.Request().Context(), status, limit)
		} else {
			list, err = orderSvc.ListRecent(ctx.Request().Context(), limit)
		}
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/orders/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		o, err := orderSvc.Get(ctx.Request().Context(), int64(id))
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 状态流转（只允许向前）
	api.Post("/orders/{id:uint64}/status", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := orderSvc.Transition(ctx.Request().Context(), int64(id), req.Status)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 取消订单（已送达的订单会被拒绝）
	api.Post("/orders/{id:uint64}/cancel", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		o, err := orderSvc.Cancel(ctx.Request().Context(), int64(id))
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// ---------- 静态页面管理 ----------

	api.Get("/pages", func(ctx iris.Context) {
		list, err := pageSvc.ListAll(ctx.Request().Context())
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Post("/pages", func(ctx iris.Context) {
		var req pageRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p := &page.Page{Title: req.Title, Slug: req.Slug, Content: req.Content, Published: req.Published}
		if err := pageSvc.Create(ctx.Request().Context(), p); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Put("/pages/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		p, err := pageSvc.Get(ctx.Request().Context(), int64(id))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "page not found"})
			return
		}
		var req pageRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p.Title = req.Title
		p.Slug = req.Slug
		p.Content = req.Content
		p.Published = req.Published
		if err := pageSvc.Update(ctx.Request().Context(), p); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Delete("/pages/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		if err := pageSvc.Delete(ctx.Request().Context(), int64(id)); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})

	// ---------- 运行指标 ----------

	api.Get("/stats", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "data": service.GetMonitor().GetStats()})
	})
}
