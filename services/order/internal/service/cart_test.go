package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/transport"
)

func TestCart_AddRemoveClear(t *testing.T) {
	t.Parallel()
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			svc := &OrderService{Ledger: l}
			ctx := context.Background()
			p := l.add(t, drug("Aspirin 100mg", "2.00", 10))
			q := l.add(t, drug("Vitamin D3", "3.00", 10))

			item, err := svc.AddToCart(ctx, 4, transport.CartItemRequest{ProductID: p.ID, Quantity: 2})
			require.NoError(t, err)
			assert.Equal(t, 2, item.Quantity)
			item, err = svc.AddToCart(ctx, 4, transport.CartItemRequest{ProductID: p.ID, Quantity: 1})
			require.NoError(t, err)
			assert.Equal(t, 3, item.Quantity)
			_, err = svc.AddToCart(ctx, 4, transport.CartItemRequest{ProductID: q.ID, Quantity: 1})
			require.NoError(t, err)

			items, err := svc.GetCart(ctx, 4)
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, p.ID, items[0].ProductID)

			deleted, item, err := svc.RemoveOneFromCart(ctx, 4, p.ID)
			require.NoError(t, err)
			assert.False(t, deleted)
			assert.Equal(t, 2, item.Quantity)

			deleted, _, err = svc.RemoveOneFromCart(ctx, 4, q.ID)
			require.NoError(t, err)
			assert.True(t, deleted)

			_, _, err = svc.RemoveOneFromCart(ctx, 4, q.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, svc.ClearCart(ctx, 4))
			items, err = svc.GetCart(ctx, 4)
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestCart_AddValidation(t *testing.T) {
	t.Parallel()
	l := memoryLedger()
	svc := &OrderService{Ledger: l}
	p := l.add(t, drug("Aspirin 100mg", "2.00", 10))

	_, err := svc.AddToCart(context.Background(), 1, transport.CartItemRequest{ProductID: p.ID})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddToCart(context.Background(), 1, transport.CartItemRequest{Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddToCart(context.Background(), 1, transport.CartItemRequest{ProductID: 77, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCheckout(t *testing.T) {
	t.Parallel()
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			svc := &OrderService{Ledger: l}
			ctx := context.Background()
			p := l.add(t, drug("Aspirin 100mg", "2.00", 3))
			ship := models.Shipping{ShippingAddress: "1 Main St", ShippingCity: "Giza"}

			_, err := svc.Checkout(ctx, 8, ship)
			assert.ErrorIs(t, err, ErrValidation)

			_, err = svc.AddToCart(ctx, 8, transport.CartItemRequest{ProductID: p.ID, Quantity: 5})
			require.NoError(t, err)
			_, err = svc.Checkout(ctx, 8, ship)
			assert.ErrorIs(t, err, ErrInsufficientStock)
			items, err := svc.GetCart(ctx, 8)
			require.NoError(t, err)
			assert.Len(t, items, 1, "a failed checkout keeps the cart")

			_, _, err = svc.RemoveOneFromCart(ctx, 8, p.ID)
			require.NoError(t, err)
			_, _, err = svc.RemoveOneFromCart(ctx, 8, p.ID)
			require.NoError(t, err)

			o, err := svc.Checkout(ctx, 8, ship)
			require.NoError(t, err)
			assert.Equal(t, "Giza", o.ShippingCity)
			assert.True(t, o.TotalAmount.Equal(dec("6.00")))
			assert.Equal(t, 0, stockOf(t, l, p.ID))

			items, err = svc.GetCart(ctx, 8)
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}
