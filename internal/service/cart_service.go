package service

import (
	"context"

	"storebot/internal/domain"
	"storebot/internal/models"

	"github.com/rs/zerolog"
)

// CartService loads and saves carts around the Cart operations. It never
// touches stock; stock is only checked when an order is committed.
type CartService struct {
	repo    domain.CartRepository
	catalog domain.CatalogService
	logger  *zerolog.Logger
}

func NewCartService(repo domain.CartRepository, catalog domain.CatalogService, logger *zerolog.Logger) *CartService {
	return &CartService{repo: repo, catalog: catalog, logger: logger}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load cart")
		return nil, err
	}
	if cart == nil {
		cart = models.NewCart(userID)
	}
	return cart, nil
}

func (s *CartService) mutate(ctx context.Context, userID int64, fn func(c *models.Cart) error) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.repo.SaveCart(ctx, cart); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to save cart")
		return nil, err
	}
	return cart, nil
}

// AddToCart adds qty of a catalog product. Buttons for products deleted
// in the meantime resolve to ErrProductNotFound.
func (s *CartService) AddToCart(ctx context.Context, userID int64, name string, qty int) (*models.Cart, error) {
	product, err := s.catalog.GetProduct(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		return c.Add(product.Name, qty)
	})
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID int64, name string) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		c.Remove(name)
		return nil
	})
}

// UpdateQuantity sets the quantity of name; qty <= 0 removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, userID int64, name string, qty int) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		if qty > 0 && c.Quantity(name) == 0 {
			product, err := s.catalog.GetProduct(ctx, name)
			if err != nil {
				return err
			}
			name = product.Name
		}
		c.UpdateQuantity(name, qty)
		return nil
	})
}

func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	return s.repo.ClearCart(ctx, userID)
}

// Total prices the cart against the current catalog.
func (s *CartService) Total(ctx context.Context, userID int64) (int64, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return cart.TotalPrice(snapshot), nil
}
