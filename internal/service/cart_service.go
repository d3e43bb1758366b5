package service

import (
	"context"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/product"
)

// CartService 购物车聚合：一个购物车对应一位顾客（登录用户或匿名会话）
type CartService struct {
	cartRepo    cart.Repository
	productRepo product.Repository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo cart.Repository, productRepo product.Repository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// Resolve 根据归属标识取购物车，首次访问时惰性创建
func (s *CartService) Resolve(ctx context.Context, id cart.Identity) (*cart.Cart, error) {
	return s.cartRepo.GetOrCreate(ctx, id)
}

// AddItem 加入商品：已有同商品的行则数量累加，否则新建一行。
// quantity > 0 由调用方保证，这里不做上限校验（不在加购时检查库存）。
func (s *CartService) AddItem(ctx context.Context, cartID, productID, quantity int64) (*cart.Item, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	item, err := s.cartRepo.FindItemByProduct(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = &cart.Item{CartID: cartID, ProductID: productID, Quantity: quantity}
	} else {
		item.Quantity += quantity
	}
	if err := s.cartRepo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity 修改行数量；数量 <= 0 时直接删除该行（不视为错误）
func (s *CartService) UpdateItemQuantity(ctx context.Context, cartID, itemID, quantity int64) error {
	item, err := s.cartRepo.GetItem(ctx, cartID, itemID)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return s.cartRepo.DeleteItem(ctx, item)
	}
	item.Quantity = quantity
	return s.cartRepo.SaveItem(ctx, item)
}

// RemoveItem 删除指定行
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	item, err := s.cartRepo.GetItem(ctx, cartID, itemID)
	if err != nil {
		return err
	}
	return s.cartRepo.DeleteItem(ctx, item)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, cartID int64) error {
	return s.cartRepo.ClearItems(ctx, cartID)
}

// Lines 返回行与商品的联合视图
func (s *CartService) Lines(ctx context.Context, cartID int64) ([]*cart.Line, error) {
	items, err := s.cartRepo.ListItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	lines := make([]*cart.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, &cart.Line{Item: it, Product: byID[it.ProductID]})
	}
	return lines, nil
}

// Total 按商品当前价合计（区别于订单：订单总额用下单时冻结的成交价）
func (s *CartService) Total(ctx context.Context, cartID int64) (int64, error) {
	lines, err := s.Lines(ctx, cartID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total, nil
}

// ItemCount 购物车中商品总件数
func (s *CartService) ItemCount(ctx context.Context, cartID int64) (int64, error) {
	items, err := s.cartRepo.ListItems(ctx, cartID)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, it := range items {
		n += it.Quantity
	}
	return n, nil
}

// IsEmpty 是否没有任何行
func (s *CartService) IsEmpty(ctx context.Context, cartID int64) (bool, error) {
	items, err := s.cartRepo.ListItems(ctx, cartID)
	if err != nil {
		return false, err
	}
	return len(items) == 0, nil
}
