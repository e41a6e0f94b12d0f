// Package analytics computes the admin dashboard figures. Every function is a pure
// read over a Snapshot and returns empty collections for an empty ledger.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
)

const (
	DefaultTopProducts       = 10
	DefaultLowStockThreshold = 50
	revenueMonths            = 12
)

type Snapshot struct {
	Orders    []models.Order
	Products  []models.Product
	UserCount int64
}

type DashboardStats struct {
	TotalUsers       int64           `json:"totalUsers"`
	TotalOrders      int             `json:"totalOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	PendingOrders    int             `json:"pendingOrders"`
	ProcessingOrders int             `json:"processingOrders"`
	ShippedOrders    int             `json:"shippedOrders"`
	DeliveredOrders  int             `json:"deliveredOrders"`
}

type MonthRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductSales struct {
	ProductID    uint            `json:"productId"`
	ProductName  string          `json:"productName"`
	TotalSales   int             `json:"totalSales"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type LowStockProduct struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	StockQuantity int    `json:"stockQuantity"`
	Threshold     int    `json:"threshold"`
}

func Stats(s Snapshot) DashboardStats {
	out := DashboardStats{
		TotalUsers:   s.UserCount,
		TotalOrders:  len(s.Orders),
		TotalRevenue: decimal.Zero,
	}
	for _, o := range s.Orders {
		out.TotalRevenue = out.TotalRevenue.Add(o.TotalAmount)
		switch o.Status {
		case models.StatusPending:
			out.PendingOrders++
		case models.StatusProcessing:
			out.ProcessingOrders++
		case models.StatusShipped:
			out.ShippedOrders++
		case models.StatusDelivered:
			out.DeliveredOrders++
		}
	}
	return out
}

// MonthlyRevenue groups order totals by UTC creation month and returns the twelve most
// recent months that have orders, oldest first.
func MonthlyRevenue(s Snapshot) []MonthRevenue {
	byMonth := make(map[string]decimal.Decimal)
	for _, o := range s.Orders {
		m := o.CreatedAt.UTC().Format("2006-01")
		byMonth[m] = byMonth[m].Add(o.TotalAmount)
	}

	out := make([]MonthRevenue, 0, len(byMonth))
	for m, rev := range byMonth {
		out = append(out, MonthRevenue{Month: m, Revenue: rev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > revenueMonths {
		out = out[len(out)-revenueMonths:]
	}
	return out
}

// TopProducts ranks products by revenue across all order items. n <= 0 means the
// default of 10.
func TopProducts(s Snapshot, n int) []ProductSales {
	if n <= 0 {
		n = DefaultTopProducts
	}

	byProduct := make(map[uint]*ProductSales)
	for _, o := range s.Orders {
		for _, it := range o.Items {
			ps, ok := byProduct[it.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, ProductName: it.ProductName, TotalRevenue: decimal.Zero}
				byProduct[it.ProductID] = ps
			}
			ps.TotalSales += it.Quantity
			ps.TotalRevenue = ps.TotalRevenue.Add(it.Total)
		}
	}

	out := make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalRevenue.Cmp(out[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// OrderStatusCounts returns the histogram in canonical status order, skipping
// statuses with no orders.
func OrderStatusCounts(s Snapshot) []StatusCount {
	counts := make(map[string]int)
	for _, o := range s.Orders {
		counts[o.Status]++
	}
	out := make([]StatusCount, 0, len(counts))
	for _, st := range models.Statuses {
		if n := counts[st]; n > 0 {
			out = append(out, StatusCount{Status: st, Count: n})
		}
	}
	return out
}

// LowStockProducts lists enabled products with stock at or below threshold, by id.
// threshold <= 0 means the default of 50.
func LowStockProducts(s Snapshot, threshold int) []LowStockProduct {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	out := []LowStockProduct{}
	for _, p := range s.Products {
		if p.Enabled && p.StockQuantity <= threshold {
			out = append(out, LowStockProduct{ID: p.ID, Name: p.Name, StockQuantity: p.StockQuantity, Threshold: threshold})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
