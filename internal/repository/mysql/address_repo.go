package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/address"
)

type addressRepo struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(db *gorm.DB) address.Repository {
	return &addressRepo{db: db}
}

func (r *addressRepo) GetByID(ctx context.Context, id int64) (*address.Address, error) {
	var a address.Address
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepo) ListByUser(ctx context.Context, userID int64) ([]*address.Address, error) {
	var list []*address.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// DefaultForUser 查询默认地址，不存在时返回 nil
func (r *addressRepo) DefaultForUser(ctx context.Context, userID int64) (*address.Address, error) {
	var a address.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&address.Address{}, id).Error
}
