package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	Products   Kind = "products"
	Categories Kind = "categories"
	Vendors    Kind = "vendors"
	Warehouses Kind = "warehouses"
	Units      Kind = "units"
)

var Kinds = []Kind{Products, Categories, Vendors, Warehouses, Units}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == strings.ToLower(s) {
			return k, true
		}
	}
	return "", false
}

// ValidationError is returned before any request is sent when a record is
// missing required fields or holds out-of-range values.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

func nonNegative(field string, value int) error {
	if value < 0 {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("cannot be negative, got %d", value)}
	}
	return nil
}

type Base struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Category struct {
	Base
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c Category) Validate() error {
	return required("name", c.Name)
}

type Unit struct {
	Base
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

func (u Unit) Validate() error {
	if err := required("name", u.Name); err != nil {
		return err
	}
	return required("symbol", u.Symbol)
}

type Vendor struct {
	Base
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (v Vendor) Validate() error {
	if err := required("name", v.Name); err != nil {
		return err
	}
	if v.Email != "" && !strings.Contains(v.Email, "@") {
		return &ValidationError{Field: "email", Reason: "must be an email address"}
	}
	return nil
}

type Warehouse struct {
	Base
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Capacity int    `json:"capacity"`
}

func (w Warehouse) Validate() error {
	if err := required("name", w.Name); err != nil {
		return err
	}
	return nonNegative("capacity", w.Capacity)
}

type Product struct {
	Base
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Description  string          `json:"description,omitempty"`
	CategoryID   string          `json:"categoryId,omitempty"`
	VendorID     string          `json:"vendorId,omitempty"`
	WarehouseID  string          `json:"warehouseId,omitempty"`
	UnitID       string          `json:"unitId,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorderLevel"`
}

func (p Product) Validate() error {
	if err := required("name", p.Name); err != nil {
		return err
	}
	if err := required("sku", p.SKU); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "cannot be negative, got " + p.Price.String()}
	}
	if err := nonNegative("quantity", p.Quantity); err != nil {
		return err
	}
	return nonNegative("reorderLevel", p.ReorderLevel)
}

// LowStock reports whether the product has reached its reorder level.
func (p Product) LowStock() bool {
	return p.Quantity <= p.ReorderLevel
}
