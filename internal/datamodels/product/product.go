package product

import (
	"context"
	"time"
)

// 库存状态：粗粒度枚举，与具体数量 StockQuantity 分开维护
const (
	StockStatusInStock    = "in_stock"
	StockStatusLowStock   = "low_stock"
	StockStatusOutOfStock = "out_of_stock"
)

// StockStatuses 所有合法的库存状态
var StockStatuses = []string{StockStatusInStock, StockStatusLowStock, StockStatusOutOfStock}

// Product 商品模型
type Product struct {
	ID            int64  `gorm:"primaryKey"`
	Name          string `gorm:"size:200;not null"`
	Description   string `gorm:"size:1000"`
	Price         int64  `gorm:"not null"` // 单位：分
	CategoryID    int64  `gorm:"index;not null"`
	StockStatus   string `gorm:"size:16;index;not null"`
	StockQuantity int64  `gorm:"not null"`
	OnSale        bool   `gorm:"index"`
	IsNew         bool   `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index"`
}

// InStock 是否可购买（状态正常且有数量）
func (p *Product) InStock() bool {
	return p.StockStatus == StockStatusInStock && p.StockQuantity > 0
}

func (p *Product) LowStock() bool {
	return p.StockStatus == StockStatusLowStock
}

func (p *Product) OutOfStock() bool {
	return p.StockStatus == StockStatusOutOfStock || p.StockQuantity == 0
}

// ValidStockStatus 校验库存状态取值
func ValidStockStatus(s string) bool {
	for _, v := range StockStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PageSize 商品列表固定分页大小
const PageSize = 12

// ListFilter 商品查询条件，各条件可自由组合
type ListFilter struct {
	CategoryID      int64
	OnSale          bool
	NewArrivals     bool
	RecentlyUpdated bool // updated_at 在最近 7 天内，按 updated_at 倒序
	Keyword         string
	Page            int // 从 1 开始
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, int64, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	UpdateFlags(ctx context.Context, ids []int64, updates map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
}
