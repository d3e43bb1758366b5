package service

import (
	"context"

	"github.com/example/goshop/internal/datamodels/page"
)

// PageService 静态页面（关于我们、联系方式等）
type PageService struct {
	repo page.Repository
}

// NewPageService 创建页面服务
func NewPageService(repo page.Repository) *PageService {
	return &PageService{repo: repo}
}

func (s *PageService) validate(p *page.Page) error {
	if n := len(p.Title); n < 2 || n > 200 {
		return &ValidationError{Field: "title", Message: "长度需在 2 到 200 之间"}
	}
	if p.Slug == "" {
		p.Slug = page.Slugify(p.Title)
	}
	if !page.ValidSlug(p.Slug) {
		return &ValidationError{Field: "slug", Message: "仅允许小写字母、数字和连字符"}
	}
	if p.Content == "" {
		return &ValidationError{Field: "content", Message: "不能为空"}
	}
	return nil
}

// GetPublished 前台按 slug 取已发布页面
func (s *PageService) GetPublished(ctx context.Context, slug string) (*page.Page, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, nil
	}
	return p, nil
}

// ListPublished 前台页面列表
func (s *PageService) ListPublished(ctx context.Context) ([]*page.Page, error) {
	return s.repo.ListPublished(ctx)
}

// ListAll 后台全部页面（含草稿）
func (s *PageService) ListAll(ctx context.Context) ([]*page.Page, error) {
	return s.repo.ListAll(ctx)
}

// Get 后台按 id 取页面
func (s *PageService) Get(ctx context.Context, id int64) (*page.Page, error) {
	return s.repo.GetByID(ctx, id)
}

// Create 新建页面，slug 为空时由标题生成
func (s *PageService) Create(ctx context.Context, p *page.Page) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

// Update 更新页面
func (s *PageService) Update(ctx context.Context, p *page.Page) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// Delete 删除页面
func (s *PageService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
