package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/transport"
)

func (s *OrderService) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Ledger.GetCart(ctx, userID)
}

func (s *OrderService) AddToCart(ctx context.Context, userID uint, req transport.CartItemRequest) (*models.CartItem, error) {
	if req.ProductID < 1 {
		return nil, fmt.Errorf("%w: productId must be >= 1", ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}
	if _, err := s.Ledger.GetProduct(ctx, req.ProductID); err != nil {
		return nil, mapLedgerErr(err)
	}

	item := models.CartItem{UserID: userID, ProductID: req.ProductID, Quantity: req.Quantity}
	if err := s.Ledger.AddToCart(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveOneFromCart decrements a cart line by one. deleted reports that the line is gone.
func (s *OrderService) RemoveOneFromCart(ctx context.Context, userID, productID uint) (deleted bool, item *models.CartItem, err error) {
	deleted, item, err = s.Ledger.DeleteOneFromCart(ctx, userID, productID)
	if err != nil {
		return false, nil, mapLedgerErr(err)
	}
	return deleted, item, nil
}

func (s *OrderService) ClearCart(ctx context.Context, userID uint) error {
	return s.Ledger.ClearCart(ctx, userID)
}

// Checkout places an order for the whole cart and empties it. Payment is not taken
// here; the order starts PENDING.
func (s *OrderService) Checkout(ctx context.Context, userID uint, shipping models.Shipping) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	items, err := s.Ledger.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	req := transport.CreateOrderRequest{Shipping: shipping}
	for _, it := range items {
		req.Items = append(req.Items, transport.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := s.PlaceOrder(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if err := s.Ledger.ClearCart(ctx, userID); err != nil {
		l.Error("clear_cart_error", "order_id", order.ID, "error", err)
	}
	return order, nil
}
