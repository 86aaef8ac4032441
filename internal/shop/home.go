package shop

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// HomeFeed is what the landing view shows
type HomeFeed struct {
	Products []Product
	Blogs    []Blog
}

// HomeService assembles the landing view
type HomeService struct {
	catalog *CatalogService
	blogs   *BlogService
	logger  *slog.Logger
	limit   int
}

// NewHomeService creates a home service showing up to limit products
func NewHomeService(catalog *CatalogService, blogs *BlogService, limit int, logger *slog.Logger) *HomeService {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 8
	}
	return &HomeService{catalog: catalog, blogs: blogs, limit: limit, logger: logger}
}

// Load fetches products and blogs concurrently. A blog failure hides the
// section instead of failing the feed.
func (s *HomeService) Load(ctx context.Context) (*HomeFeed, error) {
	var feed HomeFeed
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		page, err := s.catalog.ListProducts(gctx, ProductQuery{Limit: s.limit})
		if err != nil {
			return err
		}
		feed.Products = page.Products
		return nil
	})

	g.Go(func() error {
		blogs, err := s.blogs.Latest(gctx)
		if err != nil {
			s.logger.Debug("hiding blog section", "error", err)
			return nil
		}
		feed.Blogs = blogs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &feed, nil
}
