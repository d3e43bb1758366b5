package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/address"
	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/product"
)

const orderEventsQueue = "order_events"

// OrderItemMessage 订单事件中的单行
type OrderItemMessage struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// OrderCreatedMessage 下单成功后写入 MQ 的事件，stock-sync worker 消费
type OrderCreatedMessage struct {
	OrderID int64              `json:"order_id"`
	UserID  int64              `json:"user_id"`
	Items   []OrderItemMessage `json:"items"`
}

// CheckoutService 购物车转订单的核心流程。
// 整个转换在一个数据库事务里完成：订单、订单行、库存扣减、清空购物车
// 要么全部提交，要么全部回滚。
type CheckoutService struct {
	db     *gorm.DB
	mqConn *amqp.Connection
}

// NewCheckoutService 创建下单服务，mqConn 可为 nil（此时不发事件）
func NewCheckoutService(db *gorm.DB, mqConn *amqp.Connection) *CheckoutService {
	return &CheckoutService{db: db, mqConn: mqConn}
}

// PlaceOrder 把用户购物车转换为订单：
//  1. 校验地址归属
//  2. 事务内读出购物车行，空车失败
//  3. 逐行按当前价生成不可变订单行，条件式扣减库存（不足则整单失败）
//  4. 创建 pending 订单并清空购物车
//
// 成交价在本事务内读取一次，之后永不重算。
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID, addressID int64) (*order.Order, error) {
	GetMonitor().RecordCheckoutRequest()

	var placed *order.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 地址必须存在且属于下单用户
		var addr address.Address
		if err := tx.First(&addr, addressID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidAddress
			}
			return err
		}
		if addr.UserID != userID {
			return ErrInvalidAddress
		}

		// 2) 购物车行
		var c cart.Cart
		if err := tx.Where("user_id = ?", userID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return err
		}
		var items []*cart.Item
		if err := tx.Where("cart_id = ?", c.ID).Order("id").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		// 3) 快照订单行并扣减库存
		var (
			lines []order.Item
			total int64
		)
		for _, it := range items {
			var p product.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				return fmt.Errorf("商品 %d 不可用: %w", it.ProductID, err)
			}

			// 条件式原子扣减：数量不够时影响 0 行，整单失败回滚
			res := tx.Model(&product.Product{}).
				Where("id = ? AND stock_quantity >= ?", p.ID, it.Quantity).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w：%s 剩余不足 %d 件", ErrInsufficientStock, p.Name, it.Quantity)
			}

			lines = append(lines, order.Item{
				ProductID:       p.ID,
				Quantity:        it.Quantity,
				PriceAtPurchase: p.Price,
			})
			total += p.Price * it.Quantity
		}

		// 4) 创建订单（含订单行）并清空购物车
		o := order.Order{
			UserID:    userID,
			AddressID: addr.ID,
			Status:    order.StatusPending,
			Total:     total,
			Items:     lines,
		}
		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", c.ID).Delete(&cart.Item{}).Error; err != nil {
			return err
		}

		placed = &o
		return nil
	})
	if err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}

	GetMonitor().RecordCheckoutSuccess()
	// 事件通知尽力而为，失败只计数不影响已提交的订单
	if err := s.publishOrderCreated(ctx, placed); err != nil {
		GetMonitor().RecordMQError()
	}
	return placed, nil
}

func (s *CheckoutService) publishOrderCreated(ctx context.Context, o *order.Order) error {
	if s.mqConn == nil {
		return nil
	}
	ch, err := s.mqConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(orderEventsQueue, true, false, false, false, nil); err != nil {
		return err
	}

	msg := OrderCreatedMessage{OrderID: o.ID, UserID: o.UserID}
	for _, it := range o.Items {
		msg.Items = append(msg.Items, OrderItemMessage{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	body, err := json.Marshal(&msg)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		orderEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
