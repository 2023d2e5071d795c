package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

type wireCatalogProduct struct {
	ID          string     `json:"id"`
	MongoID     string     `json:"_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Stock       *int       `json:"stock"`
	Organic     bool       `json:"organic"`
	Location    string     `json:"location"`
	HarvestDate string     `json:"harvestDate"`
	Farmer      wireRef    `json:"farmer"`
	Image       string     `json:"image"`
	Images      wireImages `json:"images"`
}

func (p wireCatalogProduct) toDomain() domain.Product {
	images := []string(p.Images)
	if len(images) == 0 && p.Image != "" {
		images = []string{p.Image}
	}
	if images == nil {
		images = []string{}
	}
	return domain.Product{
		ID:          firstNonEmpty(p.ID, p.MongoID),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Organic:     p.Organic,
		Location:    p.Location,
		HarvestDate: p.HarvestDate,
		FarmerName:  p.Farmer.Name,
		Images:      images,
	}
}

// productQuery encodes only the constraints that are set, using the market
// API's parameter names.
func productQuery(f domain.ProductFilter) url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.Organic != nil {
		q.Set("organic", strconv.FormatBool(*f.Organic))
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
		q.Set("sortOrder", f.SortOrder)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// decodeProducts accepts a bare array or {"products": [...]}. Entries
// without an id are skipped.
func decodeProducts(raw json.RawMessage) ([]domain.Product, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.Product{}, nil
	}

	var list []wireCatalogProduct
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	} else {
		var env struct {
			Products []wireCatalogProduct `json:"products"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		list = env.Products
	}

	products := make([]domain.Product, 0, len(list))
	for _, wp := range list {
		p := wp.toDomain()
		if p.ID == "" {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (cl *Client) ListProducts(ctx context.Context, token string, filter domain.ProductFilter) ([]domain.Product, error) {
	path := "/products"
	if q := productQuery(filter); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var raw json.RawMessage
	if err := cl.do(ctx, call{method: http.MethodGet, path: path, endpoint: "/products", token: token}, &raw); err != nil {
		return nil, err
	}
	products, err := decodeProducts(raw)
	if err != nil {
		return nil, domain.NewError(domain.KindServer, "invalid products response from market api", err)
	}
	return products, nil
}
