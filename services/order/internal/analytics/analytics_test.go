package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func placed(id uint, status string, at time.Time, items ...models.OrderItem) models.Order {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total)
	}
	return models.Order{ID: id, Status: status, CreatedAt: at, TotalAmount: total, Items: items}
}

func item(productID uint, name string, qty int, price string) models.OrderItem {
	p := dec(price)
	return models.OrderItem{ProductID: productID, ProductName: name, Quantity: qty, Price: p, Total: p.Mul(decimal.NewFromInt(int64(qty)))}
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 15, 12, 0, 0, 0, time.UTC)
}

func TestEmptySnapshot(t *testing.T) {
	t.Parallel()
	var s Snapshot

	stats := Stats(s)
	assert.Zero(t, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.NotNil(t, MonthlyRevenue(s))
	assert.Empty(t, MonthlyRevenue(s))
	assert.Empty(t, TopProducts(s, 5))
	assert.Empty(t, OrderStatusCounts(s))
	assert.NotNil(t, LowStockProducts(s, 10))
	assert.Empty(t, LowStockProducts(s, 10))
}

func TestStats(t *testing.T) {
	t.Parallel()
	now := month(2024, time.May)
	s := Snapshot{
		UserCount: 4,
		Orders: []models.Order{
			placed(1, models.StatusPending, now, item(1, "A", 1, "10.00")),
			placed(2, models.StatusPending, now, item(1, "A", 2, "10.00")),
			placed(3, models.StatusShipped, now, item(2, "B", 1, "5.50")),
			placed(4, models.StatusCancelled, now, item(2, "B", 1, "5.50")),
		},
	}
	got := Stats(s)
	assert.EqualValues(t, 4, got.TotalUsers)
	assert.Equal(t, 4, got.TotalOrders)
	assert.True(t, got.TotalRevenue.Equal(dec("41.00")), got.TotalRevenue.String())
	assert.Equal(t, 2, got.PendingOrders)
	assert.Equal(t, 0, got.ProcessingOrders)
	assert.Equal(t, 1, got.ShippedOrders)
	assert.Equal(t, 0, got.DeliveredOrders)
}

func TestMonthlyRevenue_KeepsLatestTwelveAscending(t *testing.T) {
	t.Parallel()
	var orders []models.Order
	start := month(2023, time.January)
	for i := 0; i < 14; i++ {
		orders = append(orders, placed(uint(i+1), models.StatusDelivered, start.AddDate(0, i, 0), item(1, "A", 1, "1.00")))
	}
	// Two orders in the same month add up.
	orders = append(orders, placed(99, models.StatusDelivered, month(2024, time.February), item(1, "A", 1, "2.50")))

	got := MonthlyRevenue(Snapshot{Orders: orders})
	require.Len(t, got, 12)
	assert.Equal(t, "2023-03", got[0].Month)
	assert.Equal(t, "2024-02", got[11].Month)
	assert.True(t, got[11].Revenue.Equal(dec("3.50")))
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Month, got[i].Month)
	}
}

func TestMonthlyRevenue_UsesUTC(t *testing.T) {
	t.Parallel()
	cairo := time.FixedZone("EET", 2*60*60)
	// 00:30 on 1 March in Cairo is still February in UTC.
	at := time.Date(2024, time.March, 1, 0, 30, 0, 0, cairo)
	got := MonthlyRevenue(Snapshot{Orders: []models.Order{placed(1, models.StatusPending, at, item(1, "A", 1, "1.00"))}})
	require.Len(t, got, 1)
	assert.Equal(t, "2024-02", got[0].Month)
}

func TestTopProducts(t *testing.T) {
	t.Parallel()
	now := month(2024, time.May)
	s := Snapshot{Orders: []models.Order{
		placed(1, models.StatusPending, now, item(3, "Aspirin", 2, "10.00"), item(5, "Zinc", 1, "20.00")),
		placed(2, models.StatusDelivered, now, item(3, "Aspirin", 1, "10.00"), item(7, "Iron", 4, "1.00")),
		placed(3, models.StatusDelivered, now, item(4, "Omega", 1, "20.00")),
	}}

	got := TopProducts(s, 3)
	require.Len(t, got, 3)
	assert.EqualValues(t, 3, got[0].ProductID)
	assert.Equal(t, 3, got[0].TotalSales)
	assert.True(t, got[0].TotalRevenue.Equal(dec("30.00")))
	// 20.00 ties break on the lower product id.
	assert.EqualValues(t, 4, got[1].ProductID)
	assert.EqualValues(t, 5, got[2].ProductID)

	assert.Len(t, TopProducts(s, 0), 4)
	assert.Len(t, TopProducts(s, 1), 1)
}

func TestOrderStatusCounts_CanonicalOrder(t *testing.T) {
	t.Parallel()
	now := month(2024, time.May)
	s := Snapshot{Orders: []models.Order{
		placed(1, models.StatusCancelled, now),
		placed(2, models.StatusPending, now),
		placed(3, models.StatusDelivered, now),
		placed(4, models.StatusPending, now),
	}}
	assert.Equal(t, []StatusCount{
		{Status: models.StatusPending, Count: 2},
		{Status: models.StatusDelivered, Count: 1},
		{Status: models.StatusCancelled, Count: 1},
	}, OrderStatusCounts(s))
}

func TestLowStockProducts(t *testing.T) {
	t.Parallel()
	s := Snapshot{Products: []models.Product{
		{ID: 3, Name: "C", StockQuantity: 15, Enabled: true},
		{ID: 1, Name: "A", StockQuantity: 0, Enabled: true},
		{ID: 2, Name: "B", StockQuantity: 5, Enabled: true},
		{ID: 4, Name: "Hidden", StockQuantity: 1, Enabled: false},
	}}

	got := LowStockProducts(s, 10)
	assert.Equal(t, []LowStockProduct{
		{ID: 1, Name: "A", StockQuantity: 0, Threshold: 10},
		{ID: 2, Name: "B", StockQuantity: 5, Threshold: 10},
	}, got)

	def := LowStockProducts(s, 0)
	require.Len(t, def, 3)
	assert.Equal(t, DefaultLowStockThreshold, def[0].Threshold)
}

func TestFunctionsDoNotMutate(t *testing.T) {
	t.Parallel()
	now := month(2024, time.May)
	s := Snapshot{
		Orders:   []models.Order{placed(2, models.StatusPending, now, item(9, "X", 1, "1.00")), placed(1, models.StatusShipped, now)},
		Products: []models.Product{{ID: 2, StockQuantity: 1, Enabled: true}, {ID: 1, StockQuantity: 1, Enabled: true}},
	}
	_ = Stats(s)
	_ = MonthlyRevenue(s)
	_ = TopProducts(s, 1)
	_ = OrderStatusCounts(s)
	_ = LowStockProducts(s, 5)

	assert.EqualValues(t, 2, s.Orders[0].ID)
	assert.EqualValues(t, 2, s.Products[0].ID)
	assert.Len(t, s.Orders[0].Items, 1)
}
