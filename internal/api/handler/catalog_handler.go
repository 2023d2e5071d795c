package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// CatalogHandler serves the product catalog and the buyer's past orders.
type CatalogHandler struct {
	catalog ports.CatalogService
	orders  ports.OrderService
}

func NewCatalogHandler(catalog ports.CatalogService, orders ports.OrderService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, orders: orders}
}

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// bindProductFilter reads the catalog filter from the query string. Bounds
// and the organic flag stay nil when their parameter is absent.
func bindProductFilter(c echo.Context) (domain.ProductFilter, error) {
	var (
		f                  domain.ProductFilter
		minPrice, maxPrice float64
		organic            bool
	)
	err := echo.QueryParamsBinder(c).
		String("category", &f.Category).
		String("search", &f.Search).
		Float64("min_price", &minPrice).
		Float64("max_price", &maxPrice).
		Bool("organic", &organic).
		String("sort_by", &f.SortBy).
		String("sort_order", &f.SortOrder).
		Int("page", &f.Page).
		Int("limit", &f.Limit).
		BindError()
	if err != nil {
		return domain.ProductFilter{}, err
	}

	if c.QueryParam("min_price") != "" {
		f.MinPrice = &minPrice
	}
	if c.QueryParam("max_price") != "" {
		f.MaxPrice = &maxPrice
	}
	if c.QueryParam("organic") != "" {
		f.Organic = &organic
	}
	return f, nil
}

// Products lists the catalog.
//
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        category    query     string  false  "Category"
// @Param        search      query     string  false  "Free text search"
// @Param        min_price   query     number  false  "Lowest price"
// @Param        max_price   query     number  false  "Highest price"
// @Param        organic     query     bool    false  "Organic only"
// @Param        sort_by     query     string  false  "price, name, createdAt or stock"
// @Param        sort_order  query     string  false  "asc or desc"
// @Param        page        query     int     false  "Page"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Success      200         {object}  productsResponse
// @Failure      400         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /api/products [get]
func (h *CatalogHandler) Products(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	filter, err := bindProductFilter(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	products, err := h.catalog.Products(c.Request().Context(), sess, filter)
	if err != nil {
		return err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return c.JSON(http.StatusOK, productsResponse{Products: products})
}

// Orders lists the buyer's orders, newest first.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ordersResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/orders [get]
func (h *CatalogHandler) Orders(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	orders, err := h.orders.List(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}
