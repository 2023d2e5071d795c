package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

// toDomain maps a placed order. Lines go through the same normalisation as
// cart lines, so deleted products are dropped the same way.
func (o wireOrder) toDomain() domain.Order {
	raw := o.Products
	if len(raw) == 0 {
		raw = o.Items
	}

	order := domain.Order{
		ID:        firstNonEmpty(o.ID, o.MongoID),
		Lines:     make([]domain.OrderLine, 0, len(raw)),
		Total:     o.total(),
		Status:    domain.OrderStatus(strings.ToLower(o.Status)),
		CreatedAt: o.CreatedAt,
	}
	for _, wl := range raw {
		line, ok := normalizeLine(wl)
		if !ok {
			continue
		}
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Image:     line.Image,
		})
	}
	return order
}

// decodeOrders accepts a bare array or {"orders": [...]}.
func decodeOrders(raw json.RawMessage) ([]domain.Order, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.Order{}, nil
	}

	var list []wireOrder
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	} else {
		var env struct {
			Orders []wireOrder `json:"orders"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		list = env.Orders
	}

	orders := make([]domain.Order, 0, len(list))
	for _, wo := range list {
		orders = append(orders, wo.toDomain())
	}
	return orders, nil
}

func (cl *Client) ListOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var raw json.RawMessage
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/orders", endpoint: "/orders", token: token}, &raw); err != nil {
		return nil, err
	}
	orders, err := decodeOrders(raw)
	if err != nil {
		return nil, domain.NewError(domain.KindServer, "invalid orders response from market api", err)
	}
	return orders, nil
}
