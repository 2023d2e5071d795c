package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// wireRef is a reference to another document: an id string, a populated
// document with _id/id and name, or null.
type wireRef struct {
	ID   string
	Name string
}

func (r *wireRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*r = wireRef{}
		return nil
	case b[0] == '"':
		return json.Unmarshal(b, &r.ID)
	}

	var doc struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	r.ID = firstNonEmpty(doc.ID, doc.MongoID)
	r.Name = doc.Name
	return nil
}

type wireTrade struct {
	ID        string    `json:"id"`
	MongoID   string    `json:"_id"`
	Product   wireRef   `json:"product"`
	Buyer     wireRef   `json:"buyer"`
	Quantity  int       `json:"quantity"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t wireTrade) toDomain() domain.Trade {
	return domain.Trade{
		ID:          firstNonEmpty(t.ID, t.MongoID),
		ProductID:   t.Product.ID,
		ProductName: t.Product.Name,
		BuyerID:     t.Buyer.ID,
		BuyerName:   t.Buyer.Name,
		Quantity:    t.Quantity,
		Amount:      t.Amount,
		Status:      domain.TradeStatus(strings.ToLower(t.Status)),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// tradeEnvelope accepts {"trade": {...}} as well as a bare trade.
type tradeEnvelope struct {
	Trade *wireTrade `json:"trade"`
	wireTrade
}

func (e tradeEnvelope) toDomain() *domain.Trade {
	wt := e.wireTrade
	if e.Trade != nil {
		wt = *e.Trade
	}
	t := wt.toDomain()
	return &t
}

// decodeTrades accepts a bare array or {"trades": [...]}.
func decodeTrades(raw json.RawMessage) ([]domain.Trade, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.Trade{}, nil
	}

	var list []wireTrade
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	} else {
		var env struct {
			Trades []wireTrade `json:"trades"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		list = env.Trades
	}

	trades := make([]domain.Trade, 0, len(list))
	for _, wt := range list {
		trades = append(trades, wt.toDomain())
	}
	return trades, nil
}

type createTradeRequest struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

type updateTradeStatusRequest struct {
	Status string `json:"status"`
}

func (cl *Client) ListTrades(ctx context.Context, token string) ([]domain.Trade, error) {
	var raw json.RawMessage
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/trades", endpoint: "/trades", token: token}, &raw); err != nil {
		return nil, err
	}
	trades, err := decodeTrades(raw)
	if err != nil {
		return nil, domain.NewError(domain.KindServer, "invalid trades response from market api", err)
	}
	return trades, nil
}

func (cl *Client) CreateTrade(ctx context.Context, token string, in ports.NewTradeInput) (*domain.Trade, error) {
	var resp tradeEnvelope
	err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/trades",
		endpoint: "/trades",
		token:    token,
		body:     createTradeRequest{Product: in.ProductID, Quantity: in.Quantity, Amount: in.Amount},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

func (cl *Client) UpdateTradeStatus(ctx context.Context, token, tradeID string, status domain.TradeStatus) (*domain.Trade, error) {
	var resp tradeEnvelope
	err := cl.do(ctx, call{
		method:   http.MethodPut,
		path:     "/trades/" + url.PathEscape(tradeID) + "/status",
		endpoint: "/trades/{id}/status",
		token:    token,
		body:     updateTradeStatusRequest{Status: string(status)},
	}, &resp)
	if err != nil {
		return nil, err
	}

	trade := resp.toDomain()
	if trade.ID == "" {
		trade.ID = tradeID
	}
	if trade.Status == "" {
		trade.Status = status
	}
	return trade, nil
}
