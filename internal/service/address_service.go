package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/address"
	"github.com/example/goshop/internal/datamodels/order"
)

// AddressInput 创建/更新地址的入参
type AddressInput struct {
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
	IsDefault     bool   `json:"is_default"`
}

// AddressService 地址簿：每个用户至多一个默认地址
type AddressService struct {
	db          *gorm.DB
	addressRepo address.Repository
	orderRepo   order.Repository
}

// NewAddressService 创建地址服务
func NewAddressService(db *gorm.DB, addressRepo address.Repository, orderRepo order.Repository) *AddressService {
	return &AddressService{db: db, addressRepo: addressRepo, orderRepo: orderRepo}
}

func validateAddressInput(in *AddressInput) error {
	if n := len(in.StreetAddress); n < 5 || n > 200 {
		return &ValidationError{Field: "street_address", Message: "长度需在 5 到 200 之间"}
	}
	if n := len(in.City); n < 2 || n > 100 {
		return &ValidationError{Field: "city", Message: "长度需在 2 到 100 之间"}
	}
	if n := len(in.Province); n < 2 || n > 100 {
		return &ValidationError{Field: "province", Message: "长度需在 2 到 100 之间"}
	}
	if !address.PostalCodeRE.MatchString(in.PostalCode) {
		return &ValidationError{Field: "postal_code", Message: "必须是合法的加拿大邮编"}
	}
	return nil
}

// Create 新建地址。设置默认时在同一事务里用一条 UPDATE 取消其余
// 地址的默认标记，避免出现零个或两个默认地址。
func (s *AddressService) Create(ctx context.Context, userID int64, in *AddressInput) (*address.Address, error) {
	if err := validateAddressInput(in); err != nil {
		return nil, err
	}
	a := &address.Address{
		UserID:        userID,
		StreetAddress: in.StreetAddress,
		City:          in.City,
		Province:      in.Province,
		PostalCode:    address.NormalizePostalCode(in.PostalCode),
		IsDefault:     in.IsDefault,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		return s.undefaultSiblings(tx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Update 更新地址字段
func (s *AddressService) Update(ctx context.Context, userID, id int64, in *AddressInput) (*address.Address, error) {
	if err := validateAddressInput(in); err != nil {
		return nil, err
	}
	a, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	a.StreetAddress = in.StreetAddress
	a.City = in.City
	a.Province = in.Province
	a.PostalCode = address.NormalizePostalCode(in.PostalCode)
	a.IsDefault = in.IsDefault

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(a).Error; err != nil {
			return err
		}
		return s.undefaultSiblings(tx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// SetDefault 将指定地址设为默认
func (s *AddressService) SetDefault(ctx context.Context, userID, id int64) (*address.Address, error) {
	a, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	a.IsDefault = true
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(a).Error; err != nil {
			return err
		}
		return s.undefaultSiblings(tx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) undefaultSiblings(tx *gorm.DB, a *address.Address) error {
	if !a.IsDefault {
		return nil
	}
	return tx.Model(&address.Address{}).
		Where("user_id = ? AND id <> ?", a.UserID, a.ID).
		Update("is_default", false).Error
}

// Destroy 删除地址，被订单引用时拒绝并带上引用数
func (s *AddressService) Destroy(ctx context.Context, userID, id int64) error {
	a, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	n, err := s.orderRepo.CountByAddress(ctx, a.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w（%d 个订单）", ErrAddressInUse, n)
	}
	return s.addressRepo.Delete(ctx, a.ID)
}

// ListByUser 用户的全部地址，默认地址排最前
func (s *AddressService) ListByUser(ctx context.Context, userID int64) ([]*address.Address, error) {
	return s.addressRepo.ListByUser(ctx, userID)
}

// Get 取单个地址并校验归属
func (s *AddressService) Get(ctx context.Context, userID, id int64) (*address.Address, error) {
	return s.getOwned(ctx, userID, id)
}

// DefaultOrFirst 结算页预选地址：默认地址优先，否则取第一个，没有则为 nil
func (s *AddressService) DefaultOrFirst(ctx context.Context, userID int64) (*address.Address, error) {
	a, err := s.addressRepo.DefaultForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}
	list, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *AddressService) getOwned(ctx context.Context, userID, id int64) (*address.Address, error) {
	a, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrInvalidAddress
	}
	if a.UserID != userID {
		return nil, ErrInvalidAddress
	}
	return a, nil
}
