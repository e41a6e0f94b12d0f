package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusShipped    = "SHIPPED"
	StatusDelivered  = "DELIVERED"
	StatusCancelled  = "CANCELLED"
)

// Statuses lists every order status in canonical order.
var Statuses = []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

type Shipping struct {
	ShippingAddress string `gorm:"not null;default:''" json:"shippingAddress,omitempty"`
	ShippingCity    string `gorm:"not null;default:''" json:"shippingCity,omitempty"`
	ShippingState   string `gorm:"not null;default:''" json:"shippingState,omitempty"`
	ShippingZipCode string `gorm:"not null;default:''" json:"shippingZipCode,omitempty"`
	ShippingCountry string `gorm:"not null;default:''" json:"shippingCountry,omitempty"`
}

type Order struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"           json:"id"`
	UserID      uint            `gorm:"index;not null"                     json:"userId"`
	Status      string          `gorm:"not null;size:16;index"             json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"        json:"totalAmount"`
	Shipping    `gorm:"embedded"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID"                 json:"items"`
	CreatedAt   time.Time       `gorm:"index"                              json:"createdAt"`
	UpdatedAt   time.Time       `                                          json:"updatedAt"`
}

// OrderItem snapshots the product name and unit price at placement time.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID     uint            `gorm:"index;not null"              json:"orderId"`
	ProductID   uint            `gorm:"index;not null"              json:"productId"`
	ProductName string          `gorm:"not null;size:255"           json:"productName"`
	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
}

// Product is the order service's view of the catalog's products table.
type Product struct {
	ID            uint             `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name          string           `gorm:"not null;size:255"           json:"name"`
	Price         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	Discount      *decimal.Decimal `gorm:"type:numeric(5,2)"           json:"discount,omitempty"`
	StockQuantity int              `gorm:"not null;default:0"          json:"stockQuantity"`
	Enabled       bool             `gorm:"not null;default:true;index" json:"enabled"`
	CreatedAt     time.Time        `                                   json:"createdAt"`
	UpdatedAt     time.Time        `                                   json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// Customer is a read-only view of the auth service's users table.
type Customer struct {
	ID       uint   `gorm:"primaryKey"`
	Email    string `gorm:"uniqueIndex;size:255"`
	FullName string `gorm:"size:255"`
}

func (Customer) TableName() string { return "users" }

type CartItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                        json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product"      json:"userId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product"      json:"productId"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"           json:"quantity"`
	CreatedAt time.Time `                                                       json:"createdAt"`
	UpdatedAt time.Time `                                                       json:"updatedAt"`
}
