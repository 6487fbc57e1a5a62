package dashboard

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-hull/inventory-console/internal/inventory"
)

func snapshot() Snapshot {
	cat := func(id, name string) inventory.Category {
		return inventory.Category{Base: inventory.Base{ID: id}, Name: name}
	}
	wh := func(id, name string, capacity int) inventory.Warehouse {
		return inventory.Warehouse{Base: inventory.Base{ID: id}, Name: name, Capacity: capacity}
	}
	product := func(id, name, category, warehouse, price string, qty, reorder int) inventory.Product {
		return inventory.Product{
			Base:         inventory.Base{ID: id},
			Name:         name,
			SKU:          "SKU-" + id,
			CategoryID:   category,
			WarehouseID:  warehouse,
			Price:        decimal.RequireFromString(price),
			Quantity:     qty,
			ReorderLevel: reorder,
		}
	}

	return Snapshot{
		Categories: []inventory.Category{cat("c1", "Tools"), cat("c2", "Paint"), cat("c3", "Garden")},
		Warehouses: []inventory.Warehouse{wh("w1", "North", 200), wh("w2", "South", 0)},
		Vendors:    []inventory.Vendor{{Name: "Acme"}},
		Units:      []inventory.Unit{{Name: "Each", Symbol: "ea"}, {Name: "Litre", Symbol: "l"}},
		Products: []inventory.Product{
			product("p1", "Hammer", "c1", "w1", "12.50", 10, 5),
			product("p2", "Saw", "c1", "w1", "20.00", 2, 5),
			product("p3", "Emulsion", "c2", "w2", "0.10", 30, 0),
			product("p4", "Mystery box", "c9", "w9", "3.33", 0, 0),
		},
	}
}

func TestDerive(t *testing.T) {
	summary := Derive(snapshot())

	assert.Equal(t, map[inventory.Kind]int{
		inventory.Products:   4,
		inventory.Categories: 3,
		inventory.Vendors:    1,
		inventory.Warehouses: 2,
		inventory.Units:      2,
	}, summary.Counts)

	assert.Equal(t, map[string]int{
		"Tools":       2,
		"Paint":       1,
		"Garden":      0,
		Uncategorised: 1,
	}, summary.ProductsPerCategory)

	assert.Equal(t, 42, summary.TotalUnits)
	assert.Equal(t, "168", summary.TotalValue.String())
	assert.Equal(t, "8.98", summary.AveragePrice.StringFixed(2))

	require.Contains(t, summary.StockPerWarehouse, "North")
	north := summary.StockPerWarehouse["North"]
	assert.Equal(t, 12, north.Units)
	assert.Equal(t, "165", north.Value.String())
	assert.InDelta(t, 6.0, north.Utilisation, 0.001)

	south := summary.StockPerWarehouse["South"]
	assert.Equal(t, 30, south.Units)
	assert.Zero(t, south.Utilisation)

	unassigned := summary.StockPerWarehouse[Unassigned]
	assert.Equal(t, 0, unassigned.Units)
	assert.True(t, unassigned.Value.IsZero())

	require.Len(t, summary.LowStock, 2)
	assert.Equal(t, "Saw", summary.LowStock[0].Name)
	assert.Equal(t, "Mystery box", summary.LowStock[1].Name)
}

func TestDeriveEmpty(t *testing.T) {
	summary := Derive(Snapshot{})

	assert.Zero(t, summary.TotalUnits)
	assert.True(t, summary.TotalValue.IsZero())
	assert.True(t, summary.AveragePrice.IsZero())
	assert.NotNil(t, summary.LowStock)
	assert.Empty(t, summary.ProductsPerCategory)
}

func TestDeriveDisambiguatesNames(t *testing.T) {
	summary := Derive(Snapshot{
		Categories: []inventory.Category{
			{Base: inventory.Base{ID: "c1"}, Name: Uncategorised},
			{Base: inventory.Base{ID: "c2"}, Name: "Tools"},
			{Base: inventory.Base{ID: "c3"}, Name: "Tools"},
		},
		Warehouses: []inventory.Warehouse{
			{Base: inventory.Base{ID: "w1"}, Name: "Depot", Capacity: 100},
			{Base: inventory.Base{ID: "w2"}, Name: "Depot", Capacity: 10},
		},
		Products: []inventory.Product{
			{Base: inventory.Base{ID: "p1"}, CategoryID: "c1", WarehouseID: "w1", Price: decimal.NewFromInt(1), Quantity: 50},
			{Base: inventory.Base{ID: "p2"}, CategoryID: "c3", WarehouseID: "w2", Price: decimal.NewFromInt(1), Quantity: 5},
			{Base: inventory.Base{ID: "p3"}, CategoryID: "gone", Price: decimal.NewFromInt(1), Quantity: 1},
		},
	})

	assert.Equal(t, map[string]int{
		Uncategorised:           1,
		Uncategorised + " [c1]": 1,
		"Tools":                 0,
		"Tools [c3]":            1,
	}, summary.ProductsPerCategory)

	first := summary.StockPerWarehouse["Depot"]
	assert.Equal(t, 50, first.Units)
	assert.Equal(t, 100, first.Capacity)
	assert.InDelta(t, 50.0, first.Utilisation, 0.001)

	second := summary.StockPerWarehouse["Depot [w2]"]
	assert.Equal(t, 5, second.Units)
	assert.Equal(t, 10, second.Capacity)

	assert.Equal(t, 1, summary.StockPerWarehouse[Unassigned].Units)
}
