package cart

import (
	"context"
	"time"

	"github.com/example/goshop/internal/datamodels/product"
)

// Cart 购物车，归属于登录用户或匿名会话（二者取其一）
type Cart struct {
	ID           int64   `gorm:"primaryKey"`
	UserID       *int64  `gorm:"uniqueIndex"`
	SessionToken *string `gorm:"uniqueIndex;size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Item 购物车行：同一购物车内一个商品至多一行
type Item struct {
	ID        int64 `gorm:"primaryKey"`
	CartID    int64 `gorm:"not null;uniqueIndex:idx_cart_product"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_cart_product"`
	Quantity  int64 `gorm:"not null"` // 始终 >= 1
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Line 购物车行与商品的联合视图，用于展示和算价
type Line struct {
	Item    *Item
	Product *product.Product
}

// Subtotal 行小计，按商品当前价计算
func (l *Line) Subtotal() int64 {
	if l.Product == nil {
		return 0
	}
	return l.Product.Price * l.Item.Quantity
}

// Identity 购物车归属标识：UserID 或 SessionToken 必须设置其一，
// 同时设置时以 UserID 为准
type Identity struct {
	UserID       int64
	SessionToken string
}

// Repository 购物车仓储接口
type Repository interface {
	GetOrCreate(ctx context.Context, id Identity) (*Cart, error)
	Find(ctx context.Context, id Identity) (*Cart, error)
	ListItems(ctx context.Context, cartID int64) ([]*Item, error)
	FindItemByProduct(ctx context.Context, cartID, productID int64) (*Item, error)
	GetItem(ctx context.Context, cartID, itemID int64) (*Item, error)
	SaveItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, item *Item) error
	ClearItems(ctx context.Context, cartID int64) error
	DeleteItemsByProduct(ctx context.Context, productID int64) error
}
