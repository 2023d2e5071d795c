package domain

import (
	"math"
	"strings"
)

const (
	MaxProductPageSize = 100
	defaultSortOrder   = "desc"
)

// Product is a catalog entry as listed to buyers. Stock is nil when the
// market API did not report it.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Price       float64  `json:"price"`
	Stock       *int     `json:"stock,omitempty"`
	Organic     bool     `json:"organic"`
	Location    string   `json:"location,omitempty"`
	HarvestDate string   `json:"harvest_date,omitempty"`
	FarmerName  string   `json:"farmer_name,omitempty"`
	Images      []string `json:"images"`
}

// ProductFilter narrows a catalog listing. Zero values mean "no constraint".
type ProductFilter struct {
	Category  string
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	Organic   *bool
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

var productSortFields = map[string]bool{
	"price":     true,
	"name":      true,
	"createdAt": true,
	"stock":     true,
}

// Normalize trims text fields and rejects filters the market API would
// misinterpret.
func (f ProductFilter) Normalize() (ProductFilter, error) {
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)
	f.SortBy = strings.TrimSpace(f.SortBy)
	f.SortOrder = strings.ToLower(strings.TrimSpace(f.SortOrder))

	for _, p := range []*float64{f.MinPrice, f.MaxPrice} {
		if p != nil && (*p < 0 || math.IsNaN(*p) || math.IsInf(*p, 0)) {
			return ProductFilter{}, NewError(KindValidation, "price bounds must be non-negative numbers", nil)
		}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return ProductFilter{}, NewError(KindValidation, "min price must not exceed max price", nil)
	}
	if f.SortBy != "" && !productSortFields[f.SortBy] {
		return ProductFilter{}, NewError(KindValidation, "sort_by must be one of price, name, createdAt, stock", nil)
	}
	switch f.SortOrder {
	case "":
		if f.SortBy != "" {
			f.SortOrder = defaultSortOrder
		}
	case "asc", "desc":
	default:
		return ProductFilter{}, NewError(KindValidation, "sort_order must be asc or desc", nil)
	}
	if f.Page < 0 || f.Limit < 0 {
		return ProductFilter{}, NewError(KindValidation, "page and limit must not be negative", nil)
	}
	if f.Limit > MaxProductPageSize {
		f.Limit = MaxProductPageSize
	}
	return f, nil
}
