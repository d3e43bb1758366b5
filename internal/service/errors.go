package service

import (
	"errors"
	"fmt"
)

// 业务错误哨兵，调用方用 errors.Is 判断后映射为 HTTP 状态码。
// 所有错误都可在请求边界恢复，核心不做任何自动重试。
var (
	ErrEmptyCart         = errors.New("购物车为空，无法结算")
	ErrInvalidAddress    = errors.New("收货地址不存在或不属于当前用户")
	ErrInsufficientStock = errors.New("库存不足")
	ErrAlreadyDelivered  = errors.New("订单已送达，无法取消")
	ErrInvalidTransition = errors.New("订单状态不允许该变更")
	ErrAddressInUse      = errors.New("地址已被订单引用，无法删除")
	ErrCategoryInUse     = errors.New("分类仍被使用，无法删除")
	ErrProductInUse      = errors.New("商品已被订单引用，无法删除")
	ErrCategoryCycle     = errors.New("分类的父级设置会形成循环")
)

// ValidationError 字段级校验错误，返回给调用方修正后重试
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// IsValidationError 判断是否字段校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
