package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storebot/internal/domain"
	"storebot/internal/events"
	"storebot/internal/flow"
	"storebot/internal/metrics"
	"storebot/internal/models"

	"github.com/rs/zerolog"
)

// OrderService drives the checkout dialogue and commits orders.
type OrderService struct {
	state    domain.StateManager
	carts    domain.CartManager
	catalog  domain.CatalogService
	orders   domain.OrderRepository
	promos   domain.PromoRepository
	users    domain.UserService
	eventBus domain.EventPublisher
	topN     int
	logger   *zerolog.Logger
	now      func() time.Time
}

type OrderServiceDeps struct {
	State    domain.StateManager
	Carts    domain.CartManager
	Catalog  domain.CatalogService
	Orders   domain.OrderRepository
	Promos   domain.PromoRepository
	Users    domain.UserService
	EventBus domain.EventPublisher
	TopN     int
}

func NewOrderService(deps OrderServiceDeps, logger *zerolog.Logger) *OrderService {
	topN := deps.TopN
	if topN <= 0 {
		topN = models.DefaultTopProducts
	}
	return &OrderService{
		state:    deps.State,
		carts:    deps.Carts,
		catalog:  deps.Catalog,
		orders:   deps.Orders,
		promos:   deps.Promos,
		users:    deps.Users,
		eventBus: deps.EventBus,
		topN:     topN,
		logger:   logger,
		now:      time.Now,
	}
}

// StartOrder opens the checkout for a non-empty cart. externalID is the
// Telegram username or numeric id used to reach the customer.
func (s *OrderService) StartOrder(ctx context.Context, userID int64, externalID string) error {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	if cart.IsEmpty() {
		return models.ErrEmptyCart
	}

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return err
	}
	next, _ := flow.Next(flow.StepIdle, flow.EventStart)
	state.Step = next
	state.Target = ""
	state.Set(models.ScratchExternalID, externalID)
	return s.state.SaveState(ctx, state)
}

func (s *OrderService) loadState(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.state.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &models.UserState{UserID: userID}
	}
	return state, nil
}

func (s *OrderService) activeState(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.state.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Step.Kind() != flow.KindOrder {
		return nil, models.ErrNoActiveFlow
	}
	return state, nil
}

// HandleInput consumes one message for the current checkout step.
func (s *OrderService) HandleInput(ctx context.Context, userID int64, in models.Input) (*models.Outcome, error) {
	switch in.Event {
	case flow.EventBack:
		return &models.Outcome{Step: flow.StepIdle}, s.Cancel(ctx, userID)
	case flow.EventSubmit:
		return s.Submit(ctx, userID)
	case flow.EventConfirmYes, flow.EventConfirmNo:
		return s.Confirm(ctx, userID, in.Event == flow.EventConfirmYes)
	}

	state, err := s.activeState(ctx, userID)
	if err != nil {
		return nil, err
	}
	next, ok := flow.Next(state.Step, in.Event)
	if !ok {
		return nil, fmt.Errorf("%w: %s at %s", models.ErrUnexpectedInput, in.Event, state.Step)
	}

	text := strings.TrimSpace(in.Text)
	switch {
	case in.Event == flow.EventText && text == "":
		return nil, fmt.Errorf("%w: empty text at %s", models.ErrUnexpectedInput, state.Step)
	case state.Step == flow.StepOrderName:
		state.Set(models.ScratchName, text)
	case state.Step == flow.StepOrderPhone && in.Event == flow.EventContact:
		state.Set(models.ScratchPhone, in.Phone)
	case state.Step == flow.StepOrderPhone:
		state.Set(models.ScratchPhone, text)
	case state.Step == flow.StepOrderLocation && in.Event == flow.EventLocation:
		state.Set(models.ScratchLocation, in.LocationString())
	case state.Step == flow.StepOrderLocation && in.Event == flow.EventContact:
		// контакт на этом шаге заменяет телефон, а место доставки так и остаётся пустым
		state.Set(models.ScratchPhone, in.Phone)
	case state.Step == flow.StepOrderLocation:
		state.Set(models.ScratchAddress, text)
	}

	if next == flow.StepDone {
		if err := s.state.SaveState(ctx, state); err != nil {
			return nil, err
		}
		order, err := s.ConfirmOrder(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &models.Outcome{Step: flow.StepIdle, Order: order}, nil
	}

	state.Step = next
	if err := s.state.SaveState(ctx, state); err != nil {
		return nil, err
	}
	out := &models.Outcome{Step: next}
	if next == flow.StepAwaitingSubmit {
		out.Missing = deliveryInfo(state).Missing()
	}
	return out, nil
}

func deliveryInfo(state *models.UserState) models.DeliveryInfo {
	return models.DeliveryInfo{
		Name:       state.GetString(models.ScratchName),
		Phone:      state.GetString(models.ScratchPhone),
		Location:   state.GetString(models.ScratchLocation),
		Address:    state.GetString(models.ScratchAddress),
		ExternalID: state.GetString(models.ScratchExternalID),
	}
}

// Submit checks the collected delivery info and moves to the confirmation
// prompt. Missing fields send the user back to the location step.
func (s *OrderService) Submit(ctx context.Context, userID int64) (*models.Outcome, error) {
	state, err := s.activeState(ctx, userID)
	if err != nil {
		return nil, err
	}
	next, ok := flow.Next(state.Step, flow.EventSubmit)
	if !ok {
		return nil, fmt.Errorf("%w: submit at %s", models.ErrUnexpectedInput, state.Step)
	}

	if missing := deliveryInfo(state).Missing(); len(missing) > 0 {
		state.Step = flow.StepOrderLocation
		if err := s.state.SaveState(ctx, state); err != nil {
			return nil, err
		}
		return &models.Outcome{Step: flow.StepOrderLocation, Missing: missing},
			fmt.Errorf("%w: missing %s", models.ErrIncompleteDelivery, strings.Join(missing, ", "))
	}

	state.Step = next
	if err := s.state.SaveState(ctx, state); err != nil {
		return nil, err
	}
	return &models.Outcome{Step: next}, nil
}

// Confirm answers the confirmation prompt.
func (s *OrderService) Confirm(ctx context.Context, userID int64, yes bool) (*models.Outcome, error) {
	state, err := s.activeState(ctx, userID)
	if err != nil {
		return nil, err
	}
	event := flow.EventConfirmNo
	if yes {
		event = flow.EventConfirmYes
	}
	next, ok := flow.Next(state.Step, event)
	if !ok {
		return nil, fmt.Errorf("%w: %s at %s", models.ErrUnexpectedInput, event, state.Step)
	}

	if next == flow.StepDone {
		order, err := s.ConfirmOrder(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &models.Outcome{Step: flow.StepIdle, Order: order}, nil
	}

	state.Step = next
	if err := s.state.SaveState(ctx, state); err != nil {
		return nil, err
	}
	return &models.Outcome{Step: next, Missing: deliveryInfo(state).Missing()}, nil
}

// ConfirmOrder turns the cart into an immutable order. Nothing is written
// when the cart is empty, delivery info is incomplete or stock runs out.
func (s *OrderService) ConfirmOrder(ctx context.Context, userID int64) (*models.Order, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	items := make(models.OrderItems, len(cart.Items))
	for name, qty := range cart.Items {
		if _, ok := snapshot[name]; !ok {
			s.logger.Warn().Int64("user_id", userID).Str("product", name).Msg("dropping product missing from catalog")
			continue
		}
		items[name] = qty
	}
	if len(items) == 0 {
		metrics.IncOrderRejected("empty_cart")
		if err := s.state.ClearState(ctx, userID); err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to clear state")
		}
		return nil, models.ErrEmptyCart
	}

	info := deliveryInfo(state)
	if missing := info.Missing(); len(missing) > 0 {
		metrics.IncOrderRejected("incomplete_delivery")
		state.Step = flow.StepOrderLocation
		if err := s.state.SaveState(ctx, state); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing %s", models.ErrIncompleteDelivery, strings.Join(missing, ", "))
	}

	total := cart.TotalPrice(snapshot)
	promoCode := state.GetString(models.ScratchPromoCode)
	promoDiscount := state.GetInt(models.ScratchPromoDiscount)
	if promoCode != "" {
		total = models.ApplyPromo(total, promoDiscount)
	}

	order := &models.Order{
		UserID:        userID,
		Items:         items,
		TotalPrice:    total,
		PromoCode:     promoCode,
		PromoDiscount: promoDiscount,
		Info:          info,
		Status:        models.OrderStatusPending,
		CreatedAt:     s.now(),
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, models.ErrOutOfStock) {
			metrics.IncOrderRejected("out_of_stock")
		}
		return nil, err
	}

	s.afterOrder(ctx, order, snapshot)
	return order, nil
}

func (s *OrderService) afterOrder(ctx context.Context, order *models.Order, snapshot map[string]models.Product) {
	l := s.logger.With().Int64("user_id", order.UserID).Int64("order_id", order.ID).Logger()

	if err := s.carts.ClearCart(ctx, order.UserID); err != nil {
		l.Error().Err(err).Msg("failed to clear cart after order")
	}
	if err := s.state.ClearState(ctx, order.UserID); err != nil {
		l.Error().Err(err).Msg("failed to clear state after order")
	}
	if s.users != nil {
		if err := s.users.UpdateUserPhone(ctx, order.UserID, order.Info.Phone); err != nil {
			l.Warn().Err(err).Msg("failed to update user phone")
		}
	}

	for name := range order.Items {
		if snapshot[name].TracksStock() {
			if err := s.catalog.Refresh(ctx); err != nil {
				l.Error().Err(err).Msg("failed to refresh catalog after stock change")
			}
			break
		}
	}

	metrics.ObserveOrder(order.TotalPrice)
	l.Info().Int64("total", order.TotalPrice).Str("promo", order.PromoCode).Msg("order created")

	if s.eventBus == nil {
		return
	}
	payload := events.OrderEventPayload{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Items:      order.Items,
		TotalPrice: order.TotalPrice,
		PromoCode:  order.PromoCode,
		CreatedAt:  order.CreatedAt,
	}
	if err := s.eventBus.PublishJSON(events.EventOrderCreated, payload); err != nil {
		l.Error().Err(err).Str("event_type", events.EventOrderCreated).Msg("publish event error")
	}
}

// ApplyPromoCode stages a cart-wide discount for the next confirmation.
// Nothing is persisted; the discount lives in the session.
func (s *OrderService) ApplyPromoCode(ctx context.Context, userID int64, code string) (*models.PromoCode, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, models.ErrEmptyCart
	}

	promo, err := s.promos.GetPromoCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !promo.Usable() {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidPromoCode, promo.Code)
	}

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state.Step == flow.StepPromoCode {
		state.Step = state.AfterBrowse()
		state.Target = ""
	}
	state.Set(models.ScratchPromoCode, promo.Code)
	state.Set(models.ScratchPromoDiscount, strconv.Itoa(promo.Discount))
	if err := s.state.SaveState(ctx, state); err != nil {
		return nil, err
	}
	return promo, nil
}

// Cancel abandons whatever the user was doing, staged data included.
func (s *OrderService) Cancel(ctx context.Context, userID int64) error {
	return s.state.ClearState(ctx, userID)
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user id is required")
	}
	return s.orders.GetOrders(ctx, userID)
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	return s.orders.GetOrders(ctx, 0)
}

// TopProducts ranks products over every order ever placed.
func (s *OrderService) TopProducts(ctx context.Context, n int) ([]models.ProductCount, error) {
	if n <= 0 {
		n = s.topN
	}
	orders, err := s.orders.GetOrders(ctx, 0)
	if err != nil {
		return nil, err
	}
	return TopProducts(orders, n), nil
}
