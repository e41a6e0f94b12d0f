package repo

import (
	"errors"

	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrStockConflict means a guarded decrement found less stock than the order
	// validated against. The whole placement is rolled back.
	ErrStockConflict = errors.New("stock changed during placement")
)

// BuildFunc turns the locked products into the order to commit. It runs while the
// ledger holds its lock and must not call back into the ledger.
type BuildFunc func(products map[uint]models.Product) (*models.Order, error)
