package order

import (
	"context"
	"time"
)

// 订单状态，只允许向前流转：
// pending -> processing -> shipped -> delivered
// pending / processing 可直接转为 cancelled，shipped / delivered 不可取消
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Statuses 所有合法状态
var Statuses = []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// transitions 前向状态机
var transitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransition 判断状态变更是否合法
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus 校验状态取值
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order 订单。除 Status 外创建后不可变，Total 在创建时计算一次
type Order struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"index;not null"`
	AddressID int64  `gorm:"index;not null"`
	Status    string `gorm:"size:16;index;not null"`
	Total     int64  `gorm:"not null"` // 单位：分，= Σ 行数量 × 成交价
	Items     []Item `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item 订单行：下单瞬间从购物车行生成的不可变快照
type Item struct {
	ID              int64 `gorm:"primaryKey"`
	OrderID         int64 `gorm:"index;not null"`
	ProductID       int64 `gorm:"index;not null"`
	Quantity        int64 `gorm:"not null"`
	PriceAtPurchase int64 `gorm:"not null"` // 下单时商品单价，此后不再重算
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Subtotal 行小计
func (i *Item) Subtotal() int64 {
	return i.Quantity * i.PriceAtPurchase
}

// Repository 订单仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetForUser(ctx context.Context, id, userID int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*Order, int64, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]*Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	CountByAddress(ctx context.Context, addressID int64) (int64, error)
	CountItemsByProduct(ctx context.Context, productID int64) (int64, error)
}
