package service

import (
	"context"
	"fmt"

	"github.com/example/goshop/internal/datamodels/order"
)

// OrderService 订单历史查询与状态流转
type OrderService struct {
	repo order.Repository
}

// NewOrderService 创建订单服务
func NewOrderService(repo order.Repository) *OrderService {
	return &OrderService{repo: repo}
}

// ListByUser 用户订单历史，按时间倒序分页（每页 10 条）
func (s *OrderService) ListByUser(ctx context.Context, userID int64, page int) ([]*order.Order, int64, error) {
	return s.repo.ListByUser(ctx, userID, page, 10)
}

// GetForUser 订单详情（含行快照），校验归属
func (s *OrderService) GetForUser(ctx context.Context, id, userID int64) (*order.Order, error) {
	return s.repo.GetForUser(ctx, id, userID)
}

// ListRecent 后台：最近订单
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	return s.repo.ListRecent(ctx, limit)
}

// ListByStatus 后台：按状态筛选
func (s *OrderService) ListByStatus(ctx context.Context, status string, limit int) ([]*order.Order, error) {
	return s.repo.ListByStatus(ctx, status, limit)
}

// Get 后台：任意订单详情
func (s *OrderService) Get(ctx context.Context, id int64) (*order.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// Transition 状态流转，只允许向前。取消有专门的规则：
// 已送达返回 ErrAlreadyDelivered，已发货同样不可取消。
func (s *OrderService) Transition(ctx context.Context, id int64, to string) (*order.Order, error) {
	if !order.ValidStatus(to) {
		return nil, fmt.Errorf("%w：未知状态 %q", ErrInvalidTransition, to)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if to == order.StatusCancelled && o.Status == order.StatusDelivered {
		return nil, ErrAlreadyDelivered
	}
	if !order.CanTransition(o.Status, to) {
		return nil, fmt.Errorf("%w：%s -> %s", ErrInvalidTransition, o.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, o.ID, to); err != nil {
		return nil, err
	}
	o.Status = to
	return o, nil
}

// MarkProcessing 开始处理
func (s *OrderService) MarkProcessing(ctx context.Context, id int64) (*order.Order, error) {
	return s.Transition(ctx, id, order.StatusProcessing)
}

// MarkShipped 已发货
func (s *OrderService) MarkShipped(ctx context.Context, id int64) (*order.Order, error) {
	return s.Transition(ctx, id, order.StatusShipped)
}

// MarkDelivered 已送达
func (s *OrderService) MarkDelivered(ctx context.Context, id int64) (*order.Order, error) {
	return s.Transition(ctx, id, order.StatusDelivered)
}

// Cancel 取消订单，仅限 pending / processing
func (s *OrderService) Cancel(ctx context.Context, id int64) (*order.Order, error) {
	return s.Transition(ctx, id, order.StatusCancelled)
}
