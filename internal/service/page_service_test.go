package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/goshop/internal/datamodels/page"
	"github.com/example/goshop/internal/repository/mysql"
)

func newPageService(t *testing.T) *PageService {
	t.Helper()
	return NewPageService(mysql.NewPageRepository(newTestDB(t)))
}

func TestPageSlugGeneratedFromTitle(t *testing.T) {
	svc := newPageService(t)
	ctx := context.Background()

	p := &page.Page{Title: "About Us!", Content: "hello", Published: true}
	require.NoError(t, svc.Create(ctx, p))
	assert.Equal(t, "about-us", p.Slug)

	got, err := svc.GetPublished(ctx, "about-us")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
}

func TestPageExplicitSlugValidated(t *testing.T) {
	svc := newPageService(t)
	ctx := context.Background()

	p := &page.Page{Title: "Contact", Slug: "Contact Page", Content: "hello"}
	assert.True(t, IsValidationError(svc.Create(ctx, p)))

	p = &page.Page{Title: "Contact", Slug: "contact-2026", Content: "hello"}
	require.NoError(t, svc.Create(ctx, p))
}

func TestPageRejectsEmptyContent(t *testing.T) {
	svc := newPageService(t)
	assert.True(t, IsValidationError(svc.Create(context.Background(), &page.Page{Title: "Empty"})))
}

func TestUnpublishedPageHiddenFromStorefront(t *testing.T) {
	svc := newPageService(t)
	ctx := context.Background()

	draft := &page.Page{Title: "Holiday Sale", Content: "coming soon", Published: false}
	require.NoError(t, svc.Create(ctx, draft))

	got, err := svc.GetPublished(ctx, draft.Slug)
	require.NoError(t, err)
	assert.Nil(t, got)

	// 后台不区分发布状态
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	published, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)
}
