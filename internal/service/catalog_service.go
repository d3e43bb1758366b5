package service

import (
	"context"
	"fmt"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/product"
)

// CatalogService 商品目录：前台只读查询 + 后台维护
type CatalogService struct {
	productRepo  product.Repository
	categoryRepo category.Repository
	orderRepo    order.Repository
	cartRepo     cart.Repository
}

// NewCatalogService 创建目录服务
func NewCatalogService(
	productRepo product.Repository,
	categoryRepo category.Repository,
	orderRepo order.Repository,
	cartRepo cart.Repository,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
	}
}

// List 组合筛选 + 固定每页 12 条分页
func (s *CatalogService) List(ctx context.Context, f product.ListFilter) ([]*product.Product, int64, error) {
	return s.productRepo.List(ctx, f)
}

// Get 商品详情
func (s *CatalogService) Get(ctx context.Context, id int64) (*product.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func validateProduct(p *product.Product) error {
	if n := len(p.Name); n < 3 || n > 200 {
		return &ValidationError{Field: "name", Message: "长度需在 3 到 200 之间"}
	}
	if len(p.Description) < 10 {
		return &ValidationError{Field: "description", Message: "至少 10 个字符"}
	}
	if p.Price <= 0 || p.Price >= 100_000_000 {
		return &ValidationError{Field: "price", Message: "必须大于 0 且小于 1,000,000 元"}
	}
	if p.CategoryID <= 0 {
		return &ValidationError{Field: "category_id", Message: "必须指定分类"}
	}
	if !product.ValidStockStatus(p.StockStatus) {
		return &ValidationError{Field: "stock_status", Message: "非法的库存状态"}
	}
	if p.StockQuantity < 0 {
		return &ValidationError{Field: "stock_quantity", Message: "不能为负数"}
	}
	return nil
}

// Create 后台新建商品
func (s *CatalogService) Create(ctx context.Context, p *product.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if _, err := s.categoryRepo.GetByID(ctx, p.CategoryID); err != nil {
		return &ValidationError{Field: "category_id", Message: "分类不存在"}
	}
	return s.productRepo.Create(ctx, p)
}

// Update 后台更新商品
func (s *CatalogService) Update(ctx context.Context, p *product.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if _, err := s.categoryRepo.GetByID(ctx, p.CategoryID); err != nil {
		return &ValidationError{Field: "category_id", Message: "分类不存在"}
	}
	return s.productRepo.Update(ctx, p)
}

// BatchUpdateFlags 批量更新促销/上新/库存状态标记
func (s *CatalogService) BatchUpdateFlags(ctx context.Context, ids []int64, updates map[string]interface{}) (int64, error) {
	if status, ok := updates["stock_status"]; ok {
		str, _ := status.(string)
		if !product.ValidStockStatus(str) {
			return 0, &ValidationError{Field: "stock_status", Message: "非法的库存状态"}
		}
	}
	return s.productRepo.UpdateFlags(ctx, ids, updates)
}

// Delete 删除商品：被任何订单行引用时拒绝；
// 删除前先清掉所有购物车中的对应行。
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	n, err := s.orderRepo.CountItemsByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w（%d 个订单行）", ErrProductInUse, n)
	}
	if err := s.cartRepo.DeleteItemsByProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}
