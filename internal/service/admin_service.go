package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storebot/internal/domain"
	"storebot/internal/events"
	"storebot/internal/flow"
	"storebot/internal/models"

	"github.com/rs/zerolog"
)

// AdminService runs the product management dialogue for allow-listed users.
type AdminService struct {
	admins   map[int64]bool
	state    domain.StateManager
	catalog  domain.CatalogService
	promos   domain.PromoRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewAdminService(
	admins []int64,
	state domain.StateManager,
	catalog domain.CatalogService,
	promos domain.PromoRepository,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *AdminService {
	adminsMap := make(map[int64]bool, len(admins))
	for _, id := range admins {
		adminsMap[id] = true
	}
	return &AdminService{
		admins:   adminsMap,
		state:    state,
		catalog:  catalog,
		promos:   promos,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *AdminService) IsAdmin(userID int64) bool {
	return s.admins[userID]
}

func (s *AdminService) authorize(userID int64) error {
	if !s.IsAdmin(userID) {
		s.logger.Warn().Int64("user_id", userID).Msg("admin action denied")
		return models.ErrForbidden
	}
	return nil
}

func (s *AdminService) begin(ctx context.Context, userID int64, step flow.Step) error {
	if err := s.authorize(userID); err != nil {
		return err
	}
	return s.state.SaveState(ctx, &models.UserState{UserID: userID, Step: step})
}

func (s *AdminService) BeginAdd(ctx context.Context, userID int64) error {
	return s.begin(ctx, userID, flow.StepAdminAddName)
}

func (s *AdminService) BeginDelete(ctx context.Context, userID int64) error {
	return s.begin(ctx, userID, flow.StepAdminDeleteName)
}

// ParsePrice accepts whole amounts written with optional spaces or
// underscores between digit groups.
func ParsePrice(raw string) (int64, error) {
	cleaned := strings.NewReplacer(" ", "", "_", "").Replace(strings.TrimSpace(raw))
	price, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidPrice, raw)
	}
	return price, nil
}

// HandleInput consumes one text message for the current admin step. A bad
// price leaves the session untouched so the admin can retype it.
func (s *AdminService) HandleInput(ctx context.Context, userID int64, text string) (*models.Outcome, error) {
	if err := s.authorize(userID); err != nil {
		return nil, err
	}
	state, err := s.state.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Step.Kind() != flow.KindAdmin {
		return nil, models.ErrNoActiveFlow
	}
	next, ok := flow.Next(state.Step, flow.EventText)
	if !ok {
		return nil, fmt.Errorf("%w: text at %s", models.ErrUnexpectedInput, state.Step)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty text at %s", models.ErrUnexpectedInput, state.Step)
	}

	switch state.Step {
	case flow.StepAdminAddName:
		state.Set(models.ScratchAdminName, text)
	case flow.StepAdminAddPrice:
		price, err := ParsePrice(text)
		if err != nil {
			return nil, err
		}
		state.Set(models.ScratchAdminPrice, strconv.FormatInt(price, 10))
	case flow.StepAdminAddDescription:
		state.Set(models.ScratchAdminDescription, text)
	case flow.StepAdminAddImage:
		if strings.EqualFold(text, models.ImageNone) || text == "-" {
			text = ""
		}
		state.Set(models.ScratchAdminImage, text)
	case flow.StepAdminAddCategory:
		price, _ := strconv.ParseInt(state.GetString(models.ScratchAdminPrice), 10, 64)
		product := &models.Product{
			Name:        state.GetString(models.ScratchAdminName),
			Price:       price,
			Description: state.GetString(models.ScratchAdminDescription),
			ImageURL:    state.GetString(models.ScratchAdminImage),
			Category:    text,
		}
		if err := s.AddProduct(ctx, userID, product); err != nil {
			return nil, err
		}
		return &models.Outcome{Step: flow.StepIdle, Product: product}, s.state.ClearState(ctx, userID)
	case flow.StepAdminDeleteName:
		err := s.DeleteProduct(ctx, userID, text)
		if clearErr := s.state.ClearState(ctx, userID); clearErr != nil {
			err = errors.Join(err, clearErr)
		}
		if err != nil {
			return nil, err
		}
		return &models.Outcome{Step: flow.StepIdle, Deleted: text}, nil
	}

	state.Step = next
	if err := s.state.SaveState(ctx, state); err != nil {
		return nil, err
	}
	return &models.Outcome{Step: next}, nil
}

// AddProduct inserts a product or silently replaces the one with the same name.
func (s *AdminService) AddProduct(ctx context.Context, userID int64, product *models.Product) error {
	if err := s.authorize(userID); err != nil {
		return err
	}
	if err := product.Validate(); err != nil {
		return err
	}
	replaced, err := s.catalog.AddProduct(ctx, product)
	if err != nil {
		return err
	}
	if replaced {
		s.logger.Warn().Int64("admin_id", userID).Str("product", product.Name).Msg("existing product overwritten")
	}
	s.publish(events.EventProductAdded, events.ProductEventPayload{
		Name:     product.Name,
		Price:    product.Price,
		Category: product.Category,
		Replaced: replaced,
		AdminID:  userID,
	})
	return nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, userID int64, name string) error {
	if err := s.authorize(userID); err != nil {
		return err
	}
	if err := s.catalog.DeleteProduct(ctx, name); err != nil {
		return err
	}
	s.publish(events.EventProductDeleted, events.ProductEventPayload{Name: name, AdminID: userID})
	return nil
}

// AddPromoCode creates or updates an active promo code.
func (s *AdminService) AddPromoCode(ctx context.Context, userID int64, code string, discount int) (*models.PromoCode, error) {
	if err := s.authorize(userID); err != nil {
		return nil, err
	}
	promo := &models.PromoCode{Code: code, Discount: discount, Active: true}
	if models.NormalizePromoCode(code) == "" || !promo.Usable() {
		return nil, fmt.Errorf("%w: %q with discount %d", models.ErrInvalidPromoCode, code, discount)
	}
	if err := s.promos.AddPromoCode(ctx, promo); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("admin_id", userID).Str("code", promo.Code).Int("discount", discount).Msg("promo code saved")
	return promo, nil
}

func (s *AdminService) publish(eventType string, payload events.ProductEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("product", payload.Name).Msg("publish event error")
	}
}
