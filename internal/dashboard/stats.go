package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rm-hull/inventory-console/internal/inventory"
)

const Uncategorised = "(uncategorised)"
const Unassigned = "(unassigned)"

// Snapshot is the raw data the dashboard is derived from.
type Snapshot struct {
	Products   []inventory.Product
	Categories []inventory.Category
	Vendors    []inventory.Vendor
	Warehouses []inventory.Warehouse
	Units      []inventory.Unit
}

type LowStockItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorderLevel"`
}

type WarehouseStock struct {
	Units    int             `json:"units"`
	Value    decimal.Decimal `json:"value"`
	Capacity int             `json:"capacity"`
	// Utilisation is units over capacity as a percentage; zero when the
	// capacity is unknown.
	Utilisation float64 `json:"utilisation"`
}

type Summary struct {
	Counts              map[inventory.Kind]int    `json:"counts"`
	ProductsPerCategory map[string]int            `json:"productsPerCategory"`
	StockPerWarehouse   map[string]WarehouseStock `json:"stockPerWarehouse"`
	TotalUnits          int                       `json:"totalUnits"`
	TotalValue          decimal.Decimal           `json:"totalValue"`
	AveragePrice        decimal.Decimal           `json:"averagePrice"`
	LowStock            []LowStockItem            `json:"lowStock"`
}

// Derive builds the chart series shown on the dashboard. Products that
// reference a category or warehouse that no longer exists are grouped under
// Uncategorised / Unassigned.
func Derive(snap Snapshot) *Summary {
	summary := &Summary{
		Counts: map[inventory.Kind]int{
			inventory.Products:   len(snap.Products),
			inventory.Categories: len(snap.Categories),
			inventory.Vendors:    len(snap.Vendors),
			inventory.Warehouses: len(snap.Warehouses),
			inventory.Units:      len(snap.Units),
		},
		ProductsPerCategory: make(map[string]int),
		StockPerWarehouse:   make(map[string]WarehouseStock),
		TotalValue:          decimal.Zero,
		AveragePrice:        decimal.Zero,
		LowStock:            []LowStockItem{},
	}

	categoryNames := make(map[string]string, len(snap.Categories))
	categoryLabels := newLabeller(Uncategorised)
	for _, c := range snap.Categories {
		label := categoryLabels.label(c.Name, c.ID)
		categoryNames[c.ID] = label
		summary.ProductsPerCategory[label] = 0
	}

	warehouses := make(map[string]inventory.Warehouse, len(snap.Warehouses))
	warehouseLabels := newLabeller(Unassigned)
	for _, w := range snap.Warehouses {
		w.Name = warehouseLabels.label(w.Name, w.ID)
		warehouses[w.ID] = w
		summary.StockPerWarehouse[w.Name] = WarehouseStock{Value: decimal.Zero, Capacity: w.Capacity}
	}

	priceSum := decimal.Zero
	for _, p := range snap.Products {
		category, ok := categoryNames[p.CategoryID]
		if !ok {
			category = Uncategorised
		}
		summary.ProductsPerCategory[category]++

		warehouseName := Unassigned
		if w, ok := warehouses[p.WarehouseID]; ok {
			warehouseName = w.Name
		}
		stock, ok := summary.StockPerWarehouse[warehouseName]
		if !ok {
			stock.Value = decimal.Zero
		}
		value := p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
		stock.Units += p.Quantity
		stock.Value = stock.Value.Add(value)
		summary.StockPerWarehouse[warehouseName] = stock

		summary.TotalUnits += p.Quantity
		summary.TotalValue = summary.TotalValue.Add(value)
		priceSum = priceSum.Add(p.Price)

		if p.LowStock() {
			summary.LowStock = append(summary.LowStock, LowStockItem{
				ID:           p.ID,
				Name:         p.Name,
				SKU:          p.SKU,
				Quantity:     p.Quantity,
				ReorderLevel: p.ReorderLevel,
			})
		}
	}

	for name, stock := range summary.StockPerWarehouse {
		if stock.Capacity > 0 {
			pct := decimal.NewFromInt(int64(stock.Units)).
				Div(decimal.NewFromInt(int64(stock.Capacity))).
				Mul(decimal.NewFromInt(100)).
				Round(1)
			stock.Utilisation = pct.InexactFloat64()
			summary.StockPerWarehouse[name] = stock
		}
	}

	if len(snap.Products) > 0 {
		summary.AveragePrice = priceSum.Div(decimal.NewFromInt(int64(len(snap.Products)))).Round(2)
	}

	// Most urgent first: the furthest below the reorder level.
	slices.SortStableFunc(summary.LowStock, func(a, b LowStockItem) int {
		if d := (a.Quantity - a.ReorderLevel) - (b.Quantity - b.ReorderLevel); d != 0 {
			return d
		}
		return strings.Compare(a.Name, b.Name)
	})

	return summary
}

// labeller hands out series labels that are unique within one chart. A name
// already taken, or equal to the reserved sentinel, is suffixed with its id.
type labeller map[string]struct{}

func newLabeller(reserved string) labeller {
	return labeller{reserved: {}}
}

func (l labeller) label(name, id string) string {
	label := name
	if _, taken := l[label]; taken {
		label = name + " [" + id + "]"
	}
	for n := 2; ; n++ {
		if _, taken := l[label]; !taken {
			break
		}
		label = fmt.Sprintf("%s [%s#%d]", name, id, n)
	}
	l[label] = struct{}{}
	return label
}
