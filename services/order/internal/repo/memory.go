package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/analytics"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
)

// MemoryLedger keeps products, orders and carts in process. One lock covers the whole
// validate and commit step of an order placement.
type MemoryLedger struct {
	mu        sync.RWMutex
	products  map[uint]models.Product
	orders    map[uint]models.Order
	customers map[uint]models.Customer
	carts     map[uint]map[uint]models.CartItem

	nextProduct uint
	nextOrder   uint
	nextItem    uint
	nextCart    uint

	now func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		products:    make(map[uint]models.Product),
		orders:      make(map[uint]models.Order),
		customers:   make(map[uint]models.Customer),
		carts:       make(map[uint]map[uint]models.CartItem),
		nextProduct: 1,
		nextOrder:   1,
		nextItem:    1,
		nextCart:    1,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// PutProduct inserts or replaces p, assigning the next id when p.ID is zero. It is
// how products reach an in-process ledger; a deployed ledger reads the catalog's
// products table instead.
func (l *MemoryLedger) PutProduct(p models.Product) models.Product {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p.ID == 0 {
		p.ID = l.nextProduct
	}
	if p.ID >= l.nextProduct {
		l.nextProduct = p.ID + 1
	}
	now := l.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if cur, ok := l.products[p.ID]; ok {
		p.CreatedAt = cur.CreatedAt
	}
	l.products[p.ID] = cloneProduct(p)
	return p
}

// AddCustomer registers a user account. Only registered customers count as users.
func (l *MemoryLedger) AddCustomer(c models.Customer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.customers[c.ID] = c
}

func (l *MemoryLedger) GetProduct(_ context.Context, id uint) (*models.Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.products[id]
	if !ok || !p.Enabled {
		return nil, ErrProductNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (l *MemoryLedger) PlaceOrder(_ context.Context, productIDs []uint, build BuildFunc) (*models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	locked := make(map[uint]models.Product, len(productIDs))
	for _, id := range productIDs {
		if p, ok := l.products[id]; ok {
			locked[id] = cloneProduct(p)
		}
	}

	order, err := build(locked)
	if err != nil {
		return nil, err
	}

	// Apply every decrement to a scratch copy first so a shortfall leaves no trace.
	stock := make(map[uint]int, len(locked))
	for id, p := range locked {
		stock[id] = p.StockQuantity
	}
	for _, it := range order.Items {
		left, ok := stock[it.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if left < it.Quantity {
			return nil, ErrStockConflict
		}
		stock[it.ProductID] = left - it.Quantity
	}

	now := l.now()
	for id, left := range stock {
		p := l.products[id]
		if p.StockQuantity != left {
			p.StockQuantity = left
			p.UpdatedAt = now
			l.products[id] = p
		}
	}

	order.ID = l.nextOrder
	l.nextOrder++
	order.CreatedAt, order.UpdatedAt = now, now
	for i := range order.Items {
		order.Items[i].ID = l.nextItem
		order.Items[i].OrderID = order.ID
		l.nextItem++
	}
	l.orders[order.ID] = cloneOrder(*order)

	out := cloneOrder(*order)
	return &out, nil
}

func (l *MemoryLedger) UpdateOrder(_ context.Context, id uint, fn func(o *models.Order) error) (*models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o = cloneOrder(o)
	if err := fn(&o); err != nil {
		return nil, err
	}
	o.UpdatedAt = l.now()
	l.orders[id] = cloneOrder(o)
	return &o, nil
}

func (l *MemoryLedger) GetOrder(_ context.Context, id uint) (*models.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	o, ok := l.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

// ListOrders returns the orders of userID, or every order when userID is nil, newest
// first.
func (l *MemoryLedger) ListOrders(_ context.Context, userID *uint) ([]models.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []models.Order{}
	for _, o := range l.orders {
		if userID == nil || o.UserID == *userID {
			out = append(out, cloneOrder(o))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (l *MemoryLedger) Customers(_ context.Context, ids []uint) (map[uint]models.Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[uint]models.Customer, len(ids))
	for _, id := range ids {
		if c, ok := l.customers[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (l *MemoryLedger) Snapshot(_ context.Context) (analytics.Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := analytics.Snapshot{
		Orders:    make([]models.Order, 0, len(l.orders)),
		Products:  make([]models.Product, 0, len(l.products)),
		UserCount: int64(len(l.customers)),
	}
	for _, o := range l.orders {
		s.Orders = append(s.Orders, cloneOrder(o))
	}
	for _, p := range l.products {
		s.Products = append(s.Products, cloneProduct(p))
	}
	sort.Slice(s.Orders, func(i, j int) bool { return s.Orders[i].ID < s.Orders[j].ID })
	sort.Slice(s.Products, func(i, j int) bool { return s.Products[i].ID < s.Products[j].ID })
	return s, nil
}

func (l *MemoryLedger) GetCart(_ context.Context, userID uint) ([]models.CartItem, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []models.CartItem{}
	for _, it := range l.carts[userID] {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddToCart adds item.Quantity to the user's line for the product, creating it when
// absent. item is updated to the stored line.
func (l *MemoryLedger) AddToCart(_ context.Context, item *models.CartItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cart, ok := l.carts[item.UserID]
	if !ok {
		cart = make(map[uint]models.CartItem)
		l.carts[item.UserID] = cart
	}
	now := l.now()
	if cur, ok := cart[item.ProductID]; ok {
		cur.Quantity += item.Quantity
		cur.UpdatedAt = now
		cart[item.ProductID] = cur
		*item = cur
		return nil
	}
	item.ID = l.nextCart
	l.nextCart++
	item.CreatedAt, item.UpdatedAt = now, now
	cart[item.ProductID] = *item
	return nil
}

// DeleteOneFromCart decrements the line by one and removes it at zero.
func (l *MemoryLedger) DeleteOneFromCart(_ context.Context, userID, productID uint) (bool, *models.CartItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.carts[userID][productID]
	if !ok {
		return false, nil, ErrCartItemNotFound
	}
	if cur.Quantity > 1 {
		cur.Quantity--
		cur.UpdatedAt = l.now()
		l.carts[userID][productID] = cur
		return false, &cur, nil
	}
	delete(l.carts[userID], productID)
	return true, &cur, nil
}

func (l *MemoryLedger) ClearCart(_ context.Context, userID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.carts, userID)
	return nil
}

func sortNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

func cloneProduct(p models.Product) models.Product {
	if p.Discount != nil {
		d := *p.Discount
		p.Discount = &d
	}
	return p
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	return o
}
