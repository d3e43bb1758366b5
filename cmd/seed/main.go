package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/page"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/logger"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

// 初始化基础数据：分类树、示例商品和静态页面，方便本地快速跑起来
func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		panic(err)
	}
	if err := logger.Init(true); err != nil {
		panic(err)
	}

	db := mysql.Init(&cfg.MySQL)
	ctx := context.Background()

	productRepo := mysql.NewProductRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	pageRepo := mysql.NewPageRepository(db)
	userRepo := mysql.NewUserRepository(db)

	catalogSvc := service.NewCatalogService(productRepo, categoryRepo, orderRepo, cartRepo)
	categorySvc := service.NewCategoryService(categoryRepo, productRepo)
	pageSvc := service.NewPageService(pageRepo)
	userSvc := service.NewUserService(userRepo, &cfg.JWT)

	// 分类树
	apparel := &category.Category{Name: "Apparel", Description: "Clothing for every season"}
	if err := categorySvc.Create(ctx, apparel); err != nil {
		zap.L().Warn("create category", zap.String("name", apparel.Name), zap.Error(err))
	}
	accessories := &category.Category{Name: "Accessories", Description: "Bags, belts and more"}
	if err := categorySvc.Create(ctx, accessories); err != nil {
		zap.L().Warn("create category", zap.String("name", accessories.Name), zap.Error(err))
	}
	outerwear := &category.Category{Name: "Outerwear", Description: "Jackets and coats", ParentID: &apparel.ID}
	if err := categorySvc.Create(ctx, outerwear); err != nil {
		zap.L().Warn("create category", zap.String("name", outerwear.Name), zap.Error(err))
	}

	// 示例商品（价格单位：分）
	products := []*product.Product{
		{Name: "Classic Cotton Tee", Description: "Soft everyday t-shirt in organic cotton.", Price: 1999, CategoryID: apparel.ID, StockStatus: product.StockStatusInStock, StockQuantity: 120, IsNew: true},
		{Name: "Wool Winter Coat", Description: "Warm double-breasted coat for Canadian winters.", Price: 18900, CategoryID: outerwear.ID, StockStatus: product.StockStatusInStock, StockQuantity: 35},
		{Name: "Leather Belt", Description: "Full-grain leather belt with brass buckle.", Price: 4500, CategoryID: accessories.ID, StockStatus: product.StockStatusLowStock, StockQuantity: 4, OnSale: true},
		{Name: "Canvas Tote Bag", Description: "Heavy duty tote bag for groceries and books.", Price: 2900, CategoryID: accessories.ID, StockStatus: product.StockStatusInStock, StockQuantity: 80, OnSale: true, IsNew: true},
	}
	for _, p := range products {
		if err := catalogSvc.Create(ctx, p); err != nil {
			zap.L().Warn("create product", zap.String("name", p.Name), zap.Error(err))
		}
	}

	// 静态页面
	pages := []*page.Page{
		{Title: "About Us", Content: "We are a small Canadian storefront that cares about quality.", Published: true},
		{Title: "Contact", Content: "Reach us at hello@goshop.example or visit our Winnipeg office.", Published: true},
	}
	for _, p := range pages {
		if err := pageSvc.Create(ctx, p); err != nil {
			zap.L().Warn("create page", zap.String("title", p.Title), zap.Error(err))
		}
	}

	// 演示账号
	if _, err := userSvc.Register(ctx, "demo", "demo@goshop.example", "demo123"); err != nil {
		zap.L().Warn("create demo user", zap.Error(err))
	}

	zap.L().Info("seed finished")
}
