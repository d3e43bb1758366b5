package page

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Page 静态页面（关于我们、联系方式等），通过 slug 访问
type Page struct {
	ID        int64  `gorm:"primaryKey"`
	Title     string `gorm:"size:200;not null"`
	Slug      string `gorm:"uniqueIndex;size:200;not null"` // 仅小写字母、数字和连字符
	Content   string `gorm:"type:text;not null"`
	Published bool   `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

var slugStripRE = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 由标题生成 slug：小写化，非字母数字折叠为连字符
func Slugify(title string) string {
	s := slugStripRE.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// ValidSlug 校验 slug 格式
var ValidSlug = regexp.MustCompile(`^[a-z0-9-]+$`).MatchString

// Repository 静态页面仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	ListPublished(ctx context.Context) ([]*Page, error)
	ListAll(ctx context.Context) ([]*Page, error)
	Create(ctx context.Context, p *Page) error
	Update(ctx context.Context, p *Page) error
	Delete(ctx context.Context, id int64) error
}
