package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/pharmacy_shop/pkg/db"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/repo"
)

// setStock edits stock the way the catalog's admin update does: row lock, then save.
func setStock(t *testing.T, catalogDB *gorm.DB, id uint, qty int) {
	t.Helper()
	err := catalogDB.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
			return err
		}
		p.StockQuantity = qty
		return tx.Save(&p).Error
	})
	require.NoError(t, err)
}

func TestPlaceOrder_SharesProductsWithCatalog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "shop.db")

	ordersDB, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(ordersDB) })
	ledger := repo.NewGormLedger(ordersDB)
	require.NoError(t, ledger.Migrate(ctx))

	catalogDB, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(catalogDB) })

	svc := &OrderService{Ledger: ledger}

	// created by the catalog after the order service started
	p := drug("Amoxicillin 500mg", "12.00", 5)
	require.NoError(t, catalogDB.Create(&p).Error)

	_, err = svc.PlaceOrder(ctx, 7, order(line(p.ID, 2)))
	require.NoError(t, err)

	var seen models.Product
	require.NoError(t, catalogDB.First(&seen, p.ID).Error)
	assert.Equal(t, 3, seen.StockQuantity)

	setStock(t, catalogDB, p.ID, 1)
	_, err = svc.PlaceOrder(ctx, 7, order(line(p.ID, 2)))
	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 1, short.Available)

	setStock(t, catalogDB, p.ID, 10)
	_, err = svc.PlaceOrder(ctx, 7, order(line(p.ID, 10)))
	require.NoError(t, err)
	require.NoError(t, catalogDB.First(&seen, p.ID).Error)
	assert.Zero(t, seen.StockQuantity)

	require.NoError(t, catalogDB.Model(&models.Product{}).Where("id = ?", p.ID).Update("enabled", false).Error)
	setStock(t, catalogDB, p.ID, 10)
	_, err = svc.PlaceOrder(ctx, 7, order(line(p.ID, 1)))
	assert.ErrorIs(t, err, ErrProductNotFound)
}
