package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/repository/mysql"
)

func newCategoryService(t *testing.T) (*CategoryService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewCategoryService(mysql.NewCategoryRepository(db), mysql.NewProductRepository(db))
	return svc, db
}

func TestCategoryTree(t *testing.T) {
	svc, _ := newCategoryService(t)
	ctx := context.Background()

	root := &category.Category{Name: "Apparel"}
	require.NoError(t, svc.Create(ctx, root))
	child := &category.Category{Name: "Outerwear", ParentID: &root.ID}
	require.NoError(t, svc.Create(ctx, child))

	top, err := svc.ListTopLevel(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, root.ID, top[0].ID)

	children, err := svc.ListChildren(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)
}

func TestCategoryRejectsSelfParent(t *testing.T) {
	svc, _ := newCategoryService(t)
	ctx := context.Background()

	c := &category.Category{Name: "Apparel"}
	require.NoError(t, svc.Create(ctx, c))

	c.ParentID = &c.ID
	assert.ErrorIs(t, svc.Update(ctx, c), ErrCategoryCycle)
}

func TestCategoryRejectsDeepCycle(t *testing.T) {
	svc, _ := newCategoryService(t)
	ctx := context.Background()

	a := &category.Category{Name: "A-level"}
	require.NoError(t, svc.Create(ctx, a))
	b := &category.Category{Name: "B-level", ParentID: &a.ID}
	require.NoError(t, svc.Create(ctx, b))
	c := &category.Category{Name: "C-level", ParentID: &b.ID}
	require.NoError(t, svc.Create(ctx, c))

	// a -> b -> c 之后把 a 挂到 c 下面会成环
	a.ParentID = &c.ID
	assert.ErrorIs(t, svc.Update(ctx, a), ErrCategoryCycle)
}

func TestCategoryRejectsUnknownParent(t *testing.T) {
	svc, _ := newCategoryService(t)
	ctx := context.Background()

	missing := int64(99999)
	c := &category.Category{Name: "Orphan", ParentID: &missing}
	assert.True(t, IsValidationError(svc.Create(ctx, c)))
}

func TestCategoryDeleteRules(t *testing.T) {
	svc, db := newCategoryService(t)
	ctx := context.Background()

	withProducts := seedCategory(t, db, "Apparel")
	seedProduct(t, db, withProducts.ID, "Tee", 1000, 10)
	assert.ErrorIs(t, svc.Delete(ctx, withProducts.ID), ErrCategoryInUse)

	parent := &category.Category{Name: "Parent"}
	require.NoError(t, svc.Create(ctx, parent))
	child := &category.Category{Name: "Child", ParentID: &parent.ID}
	require.NoError(t, svc.Create(ctx, child))
	assert.ErrorIs(t, svc.Delete(ctx, parent.ID), ErrCategoryInUse)

	// 先删子再删父
	require.NoError(t, svc.Delete(ctx, child.ID))
	require.NoError(t, svc.Delete(ctx, parent.ID))
	_, err := svc.Get(ctx, parent.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
