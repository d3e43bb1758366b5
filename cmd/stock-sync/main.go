package main

import (
	"context"
	"encoding/json"
	"fmt"

	radix "github.com/mediocregopher/radix/v3"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/infra/redis"
	"github.com/example/goshop/internal/logger"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

const (
	orderEventsQueue    = "order_events"
	redisStockStatusKey = "stock:status:%d" // productID
)

// stockStatusFor 根据剩余数量推导粗粒度库存状态
func stockStatusFor(quantity, lowThreshold int64) string {
	switch {
	case quantity <= 0:
		return product.StockStatusOutOfStock
	case quantity <= lowThreshold:
		return product.StockStatusLowStock
	default:
		return product.StockStatusInStock
	}
}

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		panic(err)
	}
	if err := logger.Init(true); err != nil {
		panic(err)
	}

	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)
	redisClient := redis.Init(&cfg.Redis)

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(orderEventsQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// 手动确认模式（auto-ack=false），处理失败的消息重新入队
	msgs, err := ch.Consume(orderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	zap.L().Info("stock-sync worker started, waiting for order events...")

	for d := range msgs {
		var m service.OrderCreatedMessage
		if err := json.Unmarshal(d.Body, &m); err != nil {
			zap.L().Warn("invalid message", zap.Error(err))
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}
		handleMessage(context.Background(), db, redisClient, cfg.Stock.LowStockThreshold, &m, d)
	}
}

func handleMessage(ctx context.Context, db *gorm.DB, redisClient radix.Client, lowThreshold int64, m *service.OrderCreatedMessage, d amqp.Delivery) {
	for _, item := range m.Items {
		var p product.Product
		if err := db.WithContext(ctx).First(&p, item.ProductID).Error; err != nil {
			zap.L().Warn("product not found, skip",
				zap.Int64("product_id", item.ProductID), zap.Error(err))
			continue
		}

		status := stockStatusFor(p.StockQuantity, lowThreshold)
		if status != p.StockStatus {
			if err := db.WithContext(ctx).Model(&product.Product{}).
				Where("id = ?", p.ID).
				Update("stock_status", status).Error; err != nil {
				service.GetMonitor().RecordDBError()
				service.GetMonitor().RecordWorkerFailed()
				zap.L().Error("failed to update stock status", zap.Int64("product_id", p.ID), zap.Error(err))
				// 数据库写失败，重新入队等待重试
				_ = d.Nack(false, true)
				return
			}
			zap.L().Info("stock status updated",
				zap.Int64("product_id", p.ID),
				zap.String("status", status),
				zap.Int64("quantity", p.StockQuantity))
		}

		// 状态镜像写入 Redis，供前台快速展示
		key := fmt.Sprintf(redisStockStatusKey, p.ID)
		if err := redisClient.Do(radix.Cmd(nil, "SET", key, status)); err != nil {
			service.GetMonitor().RecordRedisError()
			zap.L().Warn("failed to mirror stock status to redis", zap.Int64("product_id", p.ID), zap.Error(err))
		}
	}

	service.GetMonitor().RecordWorkerProcessed()
	_ = d.Ack(false)
}
