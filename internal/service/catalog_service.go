package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"storebot/internal/domain"
	"storebot/internal/models"

	"github.com/rs/zerolog"
)

// CatalogService держит каталог и список категорий в памяти и
// перечитывает их из базы после каждого изменения.
type CatalogService struct {
	repo   domain.CatalogRepository
	logger *zerolog.Logger

	mu         sync.RWMutex
	loaded     bool
	products   []models.Product
	byName     map[string]models.Product
	byID       map[int64]models.Product
	categories []string
}

func NewCatalogService(repo domain.CatalogRepository, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
		byName: make(map[string]models.Product),
		byID:   make(map[int64]models.Product),
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *CatalogService) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Refresh(ctx)
}

func (s *CatalogService) Refresh(ctx context.Context) error {
	products, err := s.repo.GetProducts(ctx, models.ProductFilter{SortBy: models.SortByName})
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	categories, err := s.repo.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("refresh categories: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make([]models.Product, 0, len(products))
	s.byName = make(map[string]models.Product, len(products))
	s.byID = make(map[int64]models.Product, len(products))
	for _, p := range products {
		s.products = append(s.products, *p)
		s.byName[nameKey(p.Name)] = *p
		s.byID[p.ID] = *p
	}
	s.categories = categories
	s.loaded = true

	s.logger.Debug().Int("products", len(s.products)).Int("categories", len(categories)).Msg("catalog refreshed")
	return nil
}

// GetProducts lists cached products, optionally for one category.
func (s *CatalogService) GetProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]*models.Product, 0, len(s.products))
	for i := range s.products {
		p := s.products[i]
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, &p)
	}
	s.mu.RUnlock()

	models.SortProducts(out, filter.SortBy)
	return out, nil
}

// Search matches query against product names and descriptions, ignoring case.
func (s *CatalogService) Search(ctx context.Context, query string) ([]*models.Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Product
	for i := range s.products {
		p := s.products[i]
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, name string) (*models.Product, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byName[nameKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrProductNotFound, name)
	}
	return &p, nil
}

func (s *CatalogService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", models.ErrProductNotFound, id)
	}
	return &p, nil
}

// Categories returns distinct non-empty categories in alphabetical order.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.categories...), nil
}

// Snapshot returns the pricing view of the catalog keyed by product name.
func (s *CatalogService) Snapshot(ctx context.Context) (map[string]models.Product, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Product, len(s.products))
	for _, p := range s.products {
		out[p.Name] = p
	}
	return out, nil
}

// AddProduct inserts or replaces a product by name and refreshes the cache.
func (s *CatalogService) AddProduct(ctx context.Context, product *models.Product) (bool, error) {
	replaced, err := s.repo.AddProduct(ctx, product)
	if err != nil {
		return false, err
	}
	return replaced, s.Refresh(ctx)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, name string) error {
	if err := s.repo.DeleteProduct(ctx, name); err != nil {
		return err
	}
	return s.Refresh(ctx)
}
