package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/pkg/db"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/repo"
)

// testLedger pairs a Ledger with the catalog-side writes the tests need.
type testLedger struct {
	Ledger
	add    func(t *testing.T, p models.Product) models.Product
	rename func(t *testing.T, id uint, name string, price decimal.Decimal)
}

func memoryLedger() testLedger {
	ml := repo.NewMemoryLedger()
	return testLedger{
		Ledger: ml,
		add: func(_ *testing.T, p models.Product) models.Product {
			return ml.PutProduct(p)
		},
		rename: func(t *testing.T, id uint, name string, price decimal.Decimal) {
			p, err := ml.GetProduct(context.Background(), id)
			require.NoError(t, err)
			p.Name, p.Price = name, price
			ml.PutProduct(*p)
		},
	}
}

func gormLedger(t *testing.T) testLedger {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "order.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) })

	gl := repo.NewGormLedger(gdb)
	require.NoError(t, gl.Migrate(context.Background()))
	return testLedger{
		Ledger: gl,
		add: func(t *testing.T, p models.Product) models.Product {
			enabled := p.Enabled
			require.NoError(t, gdb.Create(&p).Error)
			// gorm skips a false bool in favour of the column default
			if !enabled {
				require.NoError(t, gdb.Model(&p).Update("enabled", false).Error)
				p.Enabled = false
			}
			return p
		},
		rename: func(t *testing.T, id uint, name string, price decimal.Decimal) {
			require.NoError(t, gdb.Model(&models.Product{}).Where("id = ?", id).
				Updates(map[string]any{"name": name, "price": price}).Error)
		},
	}
}

func ledgers(t *testing.T) map[string]testLedger {
	return map[string]testLedger{
		"memory": memoryLedger(),
		"gorm":   gormLedger(t),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func drug(name, price string, stock int) models.Product {
	return models.Product{Name: name, Price: dec(price), StockQuantity: stock, Enabled: true}
}

func stockOf(t *testing.T, l Ledger, id uint) int {
	t.Helper()
	p, err := l.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}
