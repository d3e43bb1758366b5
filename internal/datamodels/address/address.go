package address

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PostalCodeRE 加拿大邮编格式（允许中间一个空格，保存前会被归一化去掉）
var PostalCodeRE = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z] ?\d[A-Za-z]\d$`)

// Address 收货地址，归属于单个用户
type Address struct {
	ID            int64  `gorm:"primaryKey"`
	UserID        int64  `gorm:"index;not null"`
	StreetAddress string `gorm:"size:200;not null"`
	City          string `gorm:"size:100;not null"`
	Province      string `gorm:"size:100;not null"`
	PostalCode    string `gorm:"size:6;not null"`
	IsDefault     bool   `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NormalizePostalCode 邮编转大写并去除所有空白
func NormalizePostalCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

// FullAddress 拼接完整地址串
func (a *Address) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", a.StreetAddress, a.City, a.Province, a.PostalCode)
}

// Repository 地址仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Address, error)
	ListByUser(ctx context.Context, userID int64) ([]*Address, error)
	DefaultForUser(ctx context.Context, userID int64) (*Address, error)
	Delete(ctx context.Context, id int64) error
}
