package inventory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Listable records can be searched and sorted by the list views.
type Listable interface {
	SearchText() []string
	// SortValue returns a string, int, decimal.Decimal or time.Time.
	SortValue(field string) (any, bool)
}

type Query struct {
	Search   string
	SortBy   string
	Desc     bool
	Page     int
	PageSize int
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Apply filters, sorts and paginates an already-fetched slice. The input is
// left untouched.
func Apply[T Listable](items []T, q Query) Page[T] {
	filtered := Filter(items, q.Search)
	if q.SortBy != "" {
		SortBy(filtered, q.SortBy, q.Desc)
	}
	return Paginate(filtered, q.Page, q.PageSize)
}

// Filter keeps the records where any searchable field contains term,
// ignoring case.
func Filter[T Listable](items []T, term string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if term == "" || matches(item, term) {
			out = append(out, item)
		}
	}
	return out
}

func matches[T Listable](item T, term string) bool {
	for _, text := range item.SearchText() {
		if strings.Contains(strings.ToLower(text), term) {
			return true
		}
	}
	return false
}

// SortBy sorts items in place; records without the field keep their
// relative order at the end.
func SortBy[T Listable](items []T, field string, desc bool) {
	slices.SortStableFunc(items, func(a, b T) int {
		av, aok := a.SortValue(field)
		bv, bok := b.SortValue(field)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := compare(av, bv)
		if desc {
			return -c
		}
		return c
	})
}

func compare(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
		}
	case int:
		if bv, ok := b.(int); ok {
			return cmp.Compare(av, bv)
		}
	case decimal.Decimal:
		if bv, ok := b.(decimal.Decimal); ok {
			return av.Cmp(bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return 0
}

func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)
	if page <= 0 {
		page = 1
	}

	total := len(items)
	result := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	if page > result.TotalPages {
		return result
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	result.Items = items[start:end]
	return result
}

func baseSortValue(b Base, field string) (any, bool) {
	switch field {
	case "id":
		return b.ID, true
	case "createdAt":
		return b.CreatedAt, true
	case "updatedAt":
		return b.UpdatedAt, true
	}
	return nil, false
}

func (c Category) SearchText() []string {
	return []string{c.Name, c.Description}
}

func (c Category) SortValue(field string) (any, bool) {
	if field == "name" {
		return c.Name, true
	}
	return baseSortValue(c.Base, field)
}

func (u Unit) SearchText() []string {
	return []string{u.Name, u.Symbol}
}

func (u Unit) SortValue(field string) (any, bool) {
	switch field {
	case "name":
		return u.Name, true
	case "symbol":
		return u.Symbol, true
	}
	return baseSortValue(u.Base, field)
}

func (v Vendor) SearchText() []string {
	return []string{v.Name, v.Email, v.Phone, v.Address}
}

func (v Vendor) SortValue(field string) (any, bool) {
	switch field {
	case "name":
		return v.Name, true
	case "email":
		return v.Email, true
	}
	return baseSortValue(v.Base, field)
}

func (w Warehouse) SearchText() []string {
	return []string{w.Name, w.Location}
}

func (w Warehouse) SortValue(field string) (any, bool) {
	switch field {
	case "name":
		return w.Name, true
	case "location":
		return w.Location, true
	case "capacity":
		return w.Capacity, true
	}
	return baseSortValue(w.Base, field)
}

func (p Product) SearchText() []string {
	return []string{p.Name, p.SKU, p.Description}
}

func (p Product) SortValue(field string) (any, bool) {
	switch field {
	case "name":
		return p.Name, true
	case "sku":
		return p.SKU, true
	case "price":
		return p.Price, true
	case "quantity":
		return p.Quantity, true
	case "reorderLevel":
		return p.ReorderLevel, true
	}
	return baseSortValue(p.Base, field)
}
