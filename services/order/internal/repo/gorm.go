package repo

import (
	"context"
	"errors"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/analytics"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
)

type GormLedger struct {
	DB *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{DB: db}
}

// Migrate creates the order tables. The products table belongs to the catalog service
// and is only created here when the catalog has not done so yet; users belongs to auth
// and is never migrated here.
func (r *GormLedger) Migrate(ctx context.Context) error {
	db := r.DB.WithContext(ctx)
	if !db.Migrator().HasTable(&models.Product{}) {
		if err := db.AutoMigrate(&models.Product{}); err != nil {
			return err
		}
	}
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.CartItem{})
}

func (r *GormLedger) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("id = ? AND enabled = ?", id, true).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// PlaceOrder locks the requested product rows in ascending id order, lets build
// validate and price the order, then decrements stock with a guarded update per item
// and inserts the order. Any failure rolls the whole transaction back.
func (r *GormLedger) PlaceOrder(ctx context.Context, productIDs []uint, build BuildFunc) (*models.Order, error) {
	ids := slices.Clone(productIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var order *models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id ASC").
			Find(&rows).Error; err != nil {
			return err
		}
		locked := make(map[uint]models.Product, len(rows))
		for _, p := range rows {
			locked[p.ID] = p
		}

		o, err := build(locked)
		if err != nil {
			return err
		}

		for _, it := range o.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", it.ProductID, it.Quantity).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStockConflict
			}
		}

		if err := tx.Create(o).Error; err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormLedger) UpdateOrder(ctx context.Context, id uint, fn func(o *models.Order) error) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&o, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if err := fn(&o); err != nil {
			return err
		}
		// Items and totals are write-once.
		return tx.Model(&o).Omit(clause.Associations).Select("status", "updated_at").Updates(&o).Error
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormLedger) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items", orderItemsByID).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *GormLedger) ListOrders(ctx context.Context, userID *uint) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Preload("Items", orderItemsByID)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	orders := []models.Order{}
	if err := q.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Customers reads names and emails from the auth service's users table. A missing table
// yields no customers.
func (r *GormLedger) Customers(ctx context.Context, ids []uint) (map[uint]models.Customer, error) {
	out := make(map[uint]models.Customer, len(ids))
	db := r.DB.WithContext(ctx)
	if len(ids) == 0 || !db.Migrator().HasTable(&models.Customer{}) {
		return out, nil
	}
	var rows []models.Customer
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, c := range rows {
		out[c.ID] = c
	}
	return out, nil
}

func (r *GormLedger) Snapshot(ctx context.Context) (analytics.Snapshot, error) {
	var s analytics.Snapshot
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items", orderItemsByID).Order("id ASC").Find(&s.Orders).Error; err != nil {
			return err
		}
		if err := tx.Order("id ASC").Find(&s.Products).Error; err != nil {
			return err
		}
		if tx.Migrator().HasTable(&models.Customer{}) {
			return tx.Model(&models.Customer{}).Count(&s.UserCount).Error
		}
		return nil
	})
	return s, err
}

func (r *GormLedger) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items := []models.CartItem{}
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormLedger) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(item).Error
		}
		return tx.Create(item).Error
	})
}

func (r *GormLedger) DeleteOneFromCart(ctx context.Context, userID, productID uint) (bool, *models.CartItem, error) {
	var item models.CartItem
	deleted := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}
		if item.Quantity > 1 {
			if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
				return err
			}
			return tx.First(&item, item.ID).Error
		}
		deleted = true
		return tx.Delete(&item).Error
	})
	if err != nil {
		return false, nil, err
	}
	return deleted, &item, nil
}

func (r *GormLedger) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

func orderItemsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
