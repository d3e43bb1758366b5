package mysql

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/product"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) ListByIDs(ctx context.Context, ids []int64) ([]*product.Product, error) {
	var list []*product.Product
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// List 组合筛选条件查询商品，返回当前页数据与总数
func (r *productRepo) List(ctx context.Context, f product.ListFilter) ([]*product.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&product.Product{})

	if f.CategoryID > 0 {
		query = query.Where("category_id = ?", f.CategoryID)
	}
	if f.OnSale {
		query = query.Where("on_sale = ?", true)
	}
	if f.NewArrivals {
		query = query.Where("is_new = ?", true)
	}
	if f.RecentlyUpdated {
		query = query.Where("updated_at > ?", time.Now().AddDate(0, 0, -7)).
			Order("updated_at DESC")
	}
	if f.Keyword != "" {
		// 大小写不敏感的子串匹配，名称或描述任一命中即可
		kw := "%" + strings.ToLower(f.Keyword) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	var list []*product.Product
	if err := query.
		Offset((page - 1) * product.PageSize).
		Limit(product.PageSize).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// UpdateFlags 批量更新促销/上新/库存状态等标记字段
func (r *productRepo) UpdateFlags(ctx context.Context, ids []int64, updates map[string]interface{}) (int64, error) {
	if len(ids) == 0 || len(updates) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&product.Product{}).
		Where("id IN ?", ids).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&product.Product{}, id).Error
}

func (r *productRepo) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&product.Product{}).
		Where("category_id = ?", categoryID).
		Count(&n).Error
	return n, err
}
