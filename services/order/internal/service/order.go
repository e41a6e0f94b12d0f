package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pharmacy_shop/pkg/events"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/analytics"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/transport"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrForbidden  = errors.New("forbidden")  // 403

	ErrProductNotFound   = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrValidation)
	ErrInvalidStatus     = fmt.Errorf("%w: invalid status", ErrValidation)
)

var hundred = decimal.NewFromInt(100)

// InsufficientStockError names the first product whose cumulative requested quantity
// exceeds its stock.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

type Ledger interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	PlaceOrder(ctx context.Context, productIDs []uint, build repo.BuildFunc) (*models.Order, error)
	UpdateOrder(ctx context.Context, id uint, fn func(o *models.Order) error) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, userID *uint) ([]models.Order, error)
	Customers(ctx context.Context, ids []uint) (map[uint]models.Customer, error)
	Snapshot(ctx context.Context) (analytics.Snapshot, error)

	GetCart(ctx context.Context, userID uint) ([]models.CartItem, error)
	AddToCart(ctx context.Context, item *models.CartItem) error
	DeleteOneFromCart(ctx context.Context, userID, productID uint) (bool, *models.CartItem, error)
	ClearCart(ctx context.Context, userID uint) error
}

type OrderService struct {
	Ledger Ledger
	Events events.Publisher
	// Policy decides which status changes are legal. Nil accepts any change.
	Policy TransitionPolicy
}

type OrderEvent struct {
	OrderID        uint             `json:"orderId"`
	UserID         uint             `json:"userId"`
	Status         string           `json:"status"`
	PreviousStatus string           `json:"previousStatus,omitempty"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	Items          []OrderEventItem `json:"items,omitempty"`
}

type OrderEventItem struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// PlaceOrder validates, prices and commits an order in one atomic ledger step. Either
// every line's stock is decremented and the order exists, or nothing changed.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place_order", "user_id", userID)

	if err := validateLines(req.Items); err != nil {
		l.Warn("place_order_error", "status", 400, "reason", err.Error())
		return nil, err
	}

	ids := make([]uint, 0, len(req.Items))
	for _, ln := range req.Items {
		ids = append(ids, ln.ProductID)
	}

	order, err := s.Ledger.PlaceOrder(ctx, ids, buildOrder(userID, req))
	if err != nil {
		if errors.Is(err, repo.ErrStockConflict) {
			err = fmt.Errorf("%w: %v", ErrInsufficientStock, err)
		}
		l.Warn("place_order_error", "error", err)
		return nil, err
	}

	l.Info("order_placed", "order_id", order.ID, "total", order.TotalAmount.String(), "items", len(order.Items))
	s.publish(ctx, events.OrderCreated, order, "")
	return order, nil
}

func validateLines(lines []transport.OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	for i, ln := range lines {
		if ln.ProductID < 1 {
			return fmt.Errorf("%w: items[%d].productId must be >= 1", ErrValidation, i)
		}
		if ln.Quantity < 1 {
			return fmt.Errorf("%w: items[%d].quantity must be >= 1", ErrValidation, i)
		}
	}
	return nil
}

// buildOrder resolves every line, then checks stock cumulatively across the whole
// batch, and only then prices the items. Lines repeating a product stay separate items.
func buildOrder(userID uint, req transport.CreateOrderRequest) repo.BuildFunc {
	return func(products map[uint]models.Product) (*models.Order, error) {
		for _, ln := range req.Items {
			p, ok := products[ln.ProductID]
			if !ok || !p.Enabled {
				return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, ln.ProductID)
			}
		}

		requested := make(map[uint]int, len(products))
		for _, ln := range req.Items {
			p := products[ln.ProductID]
			requested[p.ID] += ln.Quantity
			if requested[p.ID] > p.StockQuantity {
				return nil, &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   requested[p.ID],
					Available:   p.StockQuantity,
				}
			}
		}

		order := &models.Order{
			UserID:      userID,
			Status:      models.StatusPending,
			TotalAmount: decimal.Zero,
			Shipping:    req.Shipping,
			Items:       make([]models.OrderItem, 0, len(req.Items)),
		}
		for _, ln := range req.Items {
			p := products[ln.ProductID]
			price := UnitPrice(p)
			total := price.Mul(decimal.NewFromInt(int64(ln.Quantity)))
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    ln.Quantity,
				Price:       price,
				Total:       total,
			})
			order.TotalAmount = order.TotalAmount.Add(total)
		}
		return order, nil
	}
}

// UnitPrice applies the product discount percentage and rounds to cents.
func UnitPrice(p models.Product) decimal.Decimal {
	if p.Discount == nil || p.Discount.IsZero() {
		return p.Price
	}
	factor := decimal.NewFromInt(1).Sub(p.Discount.Div(hundred))
	return p.Price.Mul(factor).Round(2)
}

func (s *OrderService) MyOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Ledger.ListOrders(ctx, &userID)
}

// GetOrder returns the order to its owner or to an admin. Admins also get the buyer's
// details.
func (s *OrderService) GetOrder(ctx context.Context, userID uint, admin bool, id uint) (*transport.OrderView, error) {
	o, err := s.Ledger.GetOrder(ctx, id)
	if err != nil {
		return nil, mapLedgerErr(err)
	}
	if !admin {
		if o.UserID != userID {
			return nil, fmt.Errorf("%w: order %d belongs to another user", ErrForbidden, id)
		}
		return &transport.OrderView{Order: *o}, nil
	}
	return s.withCustomer(ctx, *o)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]transport.OrderView, error) {
	orders, err := s.Ledger.ListOrders(ctx, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.UserID)
	}
	customers, err := s.Ledger.Customers(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]transport.OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, transport.WithCustomer(o, customers))
	}
	return out, nil
}

func (s *OrderService) Snapshot(ctx context.Context) (analytics.Snapshot, error) {
	return s.Ledger.Snapshot(ctx)
}

func (s *OrderService) withCustomer(ctx context.Context, o models.Order) (*transport.OrderView, error) {
	customers, err := s.Ledger.Customers(ctx, []uint{o.UserID})
	if err != nil {
		return nil, err
	}
	v := transport.WithCustomer(o, customers)
	return &v, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, o *models.Order, previous string) {
	if s.Events == nil {
		return
	}
	ev := OrderEvent{
		OrderID:        o.ID,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: previous,
		TotalAmount:    o.TotalAmount,
	}
	if eventType == events.OrderCreated {
		for _, it := range o.Items {
			ev.Items = append(ev.Items, OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity})
		}
	}
	key := strconv.FormatUint(uint64(o.ID), 10)
	if err := s.Events.Publish(ctx, events.TopicOrderEvents, key, eventType, ev); err != nil {
		logging.FromContext(ctx).Error("publish_event_error", "event_type", eventType, "order_id", o.ID, "error", err)
	}
}

func mapLedgerErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrOrderNotFound):
		return ErrOrderNotFound
	case errors.Is(err, repo.ErrProductNotFound):
		return ErrProductNotFound
	case errors.Is(err, repo.ErrCartItemNotFound):
		return fmt.Errorf("cart item %w", ErrNotFound)
	default:
		return err
	}
}
