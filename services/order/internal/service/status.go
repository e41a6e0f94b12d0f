package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Skotchmaster/pharmacy_shop/pkg/events"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/transport"
)

const (
	PolicyAny    = "any"
	PolicyStrict = "strict"
)

// TransitionPolicy reports whether an order may move from one status to another.
type TransitionPolicy func(from, to string) bool

// AnyTransition accepts every change between known statuses.
func AnyTransition(_, _ string) bool { return true }

var strictNext = map[string][]string{
	models.StatusPending:    {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing: {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:    {models.StatusDelivered},
}

// StrictTransition follows PENDING -> PROCESSING -> SHIPPED -> DELIVERED, with
// CANCELLED reachable from PENDING and PROCESSING.
func StrictTransition(from, to string) bool {
	return slices.Contains(strictNext[from], to)
}

func PolicyByName(name string) (TransitionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyAny:
		return AnyTransition, nil
	case PolicyStrict:
		return StrictTransition, nil
	default:
		return nil, fmt.Errorf("unknown order status policy %q", name)
	}
}

// UpdateOrderStatus changes the status only. Items and totals never change after
// placement.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status string) (*transport.OrderView, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", id)

	if !models.ValidStatus(status) {
		l.Warn("update_status_error", "status", 400, "reason", "unknown status", "value", status)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	policy := s.Policy
	if policy == nil {
		policy = AnyTransition
	}

	var previous string
	o, err := s.Ledger.UpdateOrder(ctx, id, func(o *models.Order) error {
		if !policy(o.Status, status) {
			return fmt.Errorf("%w: %s -> %s is not allowed", ErrInvalidStatus, o.Status, status)
		}
		previous = o.Status
		o.Status = status
		return nil
	})
	if err != nil {
		err = mapLedgerErr(err)
		l.Warn("update_status_error", "error", err)
		return nil, err
	}

	l.Info("order_status_changed", "from", previous, "to", status)
	s.publish(ctx, events.OrderStatusChanged, o, previous)
	return s.withCustomer(ctx, *o)
}
