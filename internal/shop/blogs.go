package shop

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/swadbest/shopctl/internal/cache"
)

// BlogService reads content posts through a TTL cache
type BlogService struct {
	gw     Gateway
	latest *cache.Slot[[]Blog]
	bySlug *cache.Keyed[Blog]
	text   *TextSanitizer
}

// NewBlogService creates a blog service. ttl <= 0 uses cache.DefaultTTL; now may be nil.
func NewBlogService(gw Gateway, ttl time.Duration, now func() time.Time) *BlogService {
	return &BlogService{
		gw:     gw,
		latest: cache.NewSlot[[]Blog](ttl, now),
		bySlug: cache.NewKeyed[Blog](ttl, now),
		text:   NewTextSanitizer(),
	}
}

type blogsResponse struct {
	Blogs []Blog `json:"blogs"`
}

type blogResponse struct {
	Blog Blog `json:"blog"`
}

// Latest returns the newest posts, served from cache while fresh
func (s *BlogService) Latest(ctx context.Context) ([]Blog, error) {
	blogs, err := s.latest.Get(ctx, func(ctx context.Context) ([]Blog, error) {
		var resp blogsResponse
		if err := s.gw.Get(ctx, "/api/blogs/latest", nil, &resp); err != nil {
			return nil, err
		}
		return resp.Blogs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading latest blogs: %w", err)
	}
	return blogs, nil
}

// BySlug returns one post, cached per slug
func (s *BlogService) BySlug(ctx context.Context, slug string) (*Blog, error) {
	if slug == "" {
		return nil, ErrMissingID
	}
	b, err := s.bySlug.Get(ctx, slug, func(ctx context.Context) (Blog, error) {
		var resp blogResponse
		if err := s.gw.Get(ctx, "/api/blogs/"+url.PathEscape(slug), nil, &resp); err != nil {
			return Blog{}, err
		}
		return resp.Blog, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading blog %s: %w", slug, err)
	}
	return &b, nil
}

// PlainText renders the post body for a terminal
func (s *BlogService) PlainText(b Blog) string {
	return s.text.Text(b.Content)
}

// CacheStats reports hits and misses of the latest-posts cache
func (s *BlogService) CacheStats() cache.Stats {
	return s.latest.Stats()
}

// Invalidate drops every cached post
func (s *BlogService) Invalidate() {
	s.latest.Invalidate()
	s.bySlug.Clear()
}

var (
	blockBreak = regexp.MustCompile(`(?i)<\s*(br\s*/?|/p|/div|/h[1-6]|/li|/tr|/blockquote)\s*>`)
	listItem   = regexp.MustCompile(`(?i)<\s*li(\s[^>]*)?>`)
	spaces     = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// TextSanitizer turns backend HTML into plain text
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer creates a sanitizer that strips every tag
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Text strips markup, keeps paragraph breaks and decodes entities
func (t *TextSanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	s := listItem.ReplaceAllString(raw, "\n- ")
	s = blockBreak.ReplaceAllString(s, "\n")
	s = html.UnescapeString(t.policy.Sanitize(s))

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaces.ReplaceAllString(line, " "))
	}
	s = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}
