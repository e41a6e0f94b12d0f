package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name        string    `gorm:"not null;size:255"             json:"name"`
	Description string    `gorm:"not null;default:''"           json:"description"`
	Image       string    `gorm:"not null;default:''"           json:"image,omitempty"`
	Enabled     bool      `gorm:"not null;default:true;index"   json:"enabled"`
	CreatedAt   time.Time `                                     json:"createdAt"`
	UpdatedAt   time.Time `                                     json:"updatedAt"`
}

type Product struct {
	ID            uint             `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name          string           `gorm:"not null;size:255"           json:"name"`
	Description   string           `gorm:"not null;default:''"         json:"description"`
	Price         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	Discount      *decimal.Decimal `gorm:"type:numeric(5,2)"           json:"discount,omitempty"`
	StockQuantity int              `gorm:"not null;default:0"          json:"stockQuantity"`
	Brand         string           `gorm:"not null;default:''"         json:"brand,omitempty"`
	Images        []string         `gorm:"serializer:json"             json:"images"`
	CategoryID    *uint            `gorm:"index"                       json:"categoryId,omitempty"`
	RatingAvg     float64          `gorm:"not null;default:0"          json:"ratingAvg"`
	Enabled       bool             `gorm:"not null;default:true;index" json:"enabled"`
	CreatedAt     time.Time        `                                   json:"createdAt"`
	UpdatedAt     time.Time        `                                   json:"updatedAt"`
}
