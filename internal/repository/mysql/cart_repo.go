package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/goshop/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) scope(ctx context.Context, id cart.Identity) (*gorm.DB, error) {
	q := r.db.WithContext(ctx)
	if id.UserID > 0 {
		return q.Where("user_id = ?", id.UserID), nil
	}
	if id.SessionToken != "" {
		return q.Where("session_token = ?", id.SessionToken), nil
	}
	return nil, errors.New("购物车必须归属于用户或匿名会话")
}

// GetOrCreate 首次访问时惰性创建购物车
func (r *cartRepo) GetOrCreate(ctx context.Context, id cart.Identity) (*cart.Cart, error) {
	q, err := r.scope(ctx, id)
	if err != nil {
		return nil, err
	}

	var c cart.Cart
	err = q.First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if id.UserID > 0 {
		c = cart.Cart{UserID: &id.UserID}
	} else {
		token := id.SessionToken
		c = cart.Cart{SessionToken: &token}
	}
	// 并发首次访问时忽略唯一键冲突，随后重查
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&c).Error; err != nil {
		return nil, err
	}
	if c.ID != 0 {
		return &c, nil
	}
	q, _ = r.scope(ctx, id)
	if err := q.First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepo) Find(ctx context.Context, id cart.Identity) (*cart.Cart, error) {
	q, err := r.scope(ctx, id)
	if err != nil {
		return nil, err
	}
	var c cart.Cart
	if err := q.First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepo) ListItems(ctx context.Context, cartID int64) ([]*cart.Item, error) {
	var list []*cart.Item
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *cartRepo) FindItemByProduct(ctx context.Context, cartID, productID int64) (*cart.Item, error) {
	var item cart.Item
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) GetItem(ctx context.Context, cartID, itemID int64) (*cart.Item, error) {
	var item cart.Item
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		First(&item, itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) SaveItem(ctx context.Context, item *cart.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *cartRepo) DeleteItem(ctx context.Context, item *cart.Item) error {
	return r.db.WithContext(ctx).Delete(item).Error
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&cart.Item{}).Error
}

// DeleteItemsByProduct 商品被删除时清理所有购物车中的对应行
func (r *cartRepo) DeleteItemsByProduct(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&cart.Item{}).Error
}
