package marketapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

func TestClient_ListProducts_EncodesFilter(t *testing.T) {
	minPrice, organic := 1.5, true
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Vegetables", q.Get("category"))
		assert.Equal(t, "1.5", q.Get("minPrice"))
		assert.Equal(t, "true", q.Get("organic"))
		assert.Equal(t, "price", q.Get("sortBy"))
		assert.Equal(t, "asc", q.Get("sortOrder"))
		assert.Equal(t, "2", q.Get("page"))
		assert.False(t, q.Has("maxPrice"))
		assert.False(t, q.Has("search"))

		writeJSON(w, http.StatusOK, `{"products":[
			{"_id":"p1","name":"Kale","price":3,"stock":12,"category":"Vegetables","organic":true,
			 "images":[{"url":"k.jpg","public_id":"x"}],"farmer":{"_id":"f1","name":"Wanjiru"}},
			{"name":"orphan","price":1},
			{"_id":"p2","name":"Honey","price":8,"farmer":"f2"}
		]}`)
	})

	products, err := cl.ListProducts(context.Background(), "tok", domain.ProductFilter{
		Category: "Vegetables", MinPrice: &minPrice, Organic: &organic,
		SortBy: "price", SortOrder: "asc", Page: 2,
	})
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, domain.Product{
		ID: "p1", Name: "Kale", Category: "Vegetables", Price: 3, Stock: domain.KnownStock(12),
		Organic: true, FarmerName: "Wanjiru", Images: []string{"k.jpg"},
	}, products[0])
	assert.Nil(t, products[1].Stock)
	assert.Equal(t, []string{}, products[1].Images)
}

func TestClient_ListProducts_NoFilterNoQuery(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, `[{"id":"p1","name":"Eggs","price":0.3,"image":"e.jpg"}]`)
	})

	products, err := cl.ListProducts(context.Background(), "tok", domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, []string{"e.jpg"}, products[0].Images)
}

func TestClient_ListOrders(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"orders":[{
			"_id":"o1","status":"Completed","total":7.5,"createdAt":"2024-05-02T10:00:00Z",
			"products":[
				{"product":{"_id":"p1","name":"Kale","price":2.5,"images":[{"url":"k.jpg"}]},"quantity":3},
				{"product":null,"quantity":1}
			]
		}]}`)
	})

	orders, err := cl.ListOrders(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, domain.OrderCompleted, o.Status)
	assert.Equal(t, 7.5, o.Total)
	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), o.CreatedAt)
	assert.Equal(t, []domain.OrderLine{{ProductID: "p1", Name: "Kale", UnitPrice: 2.5, Quantity: 3, Image: "k.jpg"}}, o.Lines)
}

func TestClient_ListOrders_EmptyBody(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	orders, err := cl.ListOrders(context.Background(), "tok")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestClient_ClearCart(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/cart/clear", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"message":"Cart cleared","cart":{"products":[],"total":0}}`)
	})

	cart, err := cl.ClearCart(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}
