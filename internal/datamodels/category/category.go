package category

import (
	"context"
	"time"
)

// Category 商品分类，支持自引用的父子树
type Category struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:100;not null"`
	Description string `gorm:"size:1000"`
	ParentID    *int64 `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TopLevel 是否顶级分类
func (c *Category) TopLevel() bool {
	return c.ParentID == nil
}

// Repository 分类仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Category, error)
	ListAll(ctx context.Context) ([]*Category, error)
	ListTopLevel(ctx context.Context) ([]*Category, error)
	ListChildren(ctx context.Context, parentID int64) ([]*Category, error)
	CountChildren(ctx context.Context, parentID int64) (int64, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
}
