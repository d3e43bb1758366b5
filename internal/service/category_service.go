package service

import (
	"context"
	"fmt"

	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/product"
)

// CategoryService 分类树维护
type CategoryService struct {
	categoryRepo category.Repository
	productRepo  product.Repository
}

// NewCategoryService 创建分类服务
func NewCategoryService(categoryRepo category.Repository, productRepo product.Repository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, productRepo: productRepo}
}

func validateCategory(c *category.Category) error {
	if n := len(c.Name); n < 2 || n > 100 {
		return &ValidationError{Field: "name", Message: "长度需在 2 到 100 之间"}
	}
	if len(c.Description) > 1000 {
		return &ValidationError{Field: "description", Message: "不能超过 1000 个字符"}
	}
	return nil
}

// checkParent 沿父链上溯，拒绝任意长度的环
func (s *CategoryService) checkParent(ctx context.Context, c *category.Category) error {
	if c.ParentID == nil {
		return nil
	}
	if c.ID != 0 && *c.ParentID == c.ID {
		return ErrCategoryCycle
	}
	cur := *c.ParentID
	for {
		parent, err := s.categoryRepo.GetByID(ctx, cur)
		if err != nil {
			return &ValidationError{Field: "parent_id", Message: "父分类不存在"}
		}
		if parent.ParentID == nil {
			return nil
		}
		cur = *parent.ParentID
		if c.ID != 0 && cur == c.ID {
			return ErrCategoryCycle
		}
	}
}

// Get 分类详情
func (s *CategoryService) Get(ctx context.Context, id int64) (*category.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

// ListAll 全部分类
func (s *CategoryService) ListAll(ctx context.Context) ([]*category.Category, error) {
	return s.categoryRepo.ListAll(ctx)
}

// ListTopLevel 顶级分类
func (s *CategoryService) ListTopLevel(ctx context.Context) ([]*category.Category, error) {
	return s.categoryRepo.ListTopLevel(ctx)
}

// ListChildren 子分类
func (s *CategoryService) ListChildren(ctx context.Context, parentID int64) ([]*category.Category, error) {
	return s.categoryRepo.ListChildren(ctx, parentID)
}

// Create 新建分类
func (s *CategoryService) Create(ctx context.Context, c *category.Category) error {
	if err := validateCategory(c); err != nil {
		return err
	}
	if err := s.checkParent(ctx, c); err != nil {
		return err
	}
	return s.categoryRepo.Create(ctx, c)
}

// Update 更新分类，父级变更同样要过环检测
func (s *CategoryService) Update(ctx context.Context, c *category.Category) error {
	if err := validateCategory(c); err != nil {
		return err
	}
	if err := s.checkParent(ctx, c); err != nil {
		return err
	}
	return s.categoryRepo.Update(ctx, c)
}

// Delete 删除分类：仍有商品或子分类时拒绝，并带上阻塞数量
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	products, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	children, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if products > 0 || children > 0 {
		return fmt.Errorf("%w（%d 个商品，%d 个子分类）", ErrCategoryInUse, products, children)
	}
	return s.categoryRepo.Delete(ctx, id)
}
