package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/page"
)

type pageRepo struct {
	db *gorm.DB
}

// NewPageRepository 创建静态页面仓储
func NewPageRepository(db *gorm.DB) page.Repository {
	return &pageRepo{db: db}
}

func (r *pageRepo) GetByID(ctx context.Context, id int64) (*page.Page, error) {
	var p page.Page
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pageRepo) GetBySlug(ctx context.Context, slug string) (*page.Page, error) {
	var p page.Page
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pageRepo) ListPublished(ctx context.Context) ([]*page.Page, error) {
	var list []*page.Page
	if err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("title").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *pageRepo) ListAll(ctx context.Context) ([]*page.Page, error) {
	var list []*page.Page
	if err := r.db.WithContext(ctx).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *pageRepo) Create(ctx context.Context, p *page.Page) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pageRepo) Update(ctx context.Context, p *page.Page) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *pageRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&page.Page{}, id).Error
}
