package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

const collectionCartEvents = "cart_events"

// CartEventRepository implements ports.CartEventRepository using MongoDB.
type CartEventRepository struct {
	col *mongo.Collection
	now func() time.Time
}

var _ ports.CartEventRepository = (*CartEventRepository)(nil)

func NewCartEventRepository(db *mongo.Database) *CartEventRepository {
	return &CartEventRepository{col: db.Collection(collectionCartEvents), now: time.Now}
}

type cartEventDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	BuyerID    string             `bson:"buyer_id"`
	Action     string             `bson:"action"`
	ProductID  string             `bson:"product_id,omitempty"`
	Quantity   int                `bson:"quantity"`
	Total      float64            `bson:"total"`
	OrderID    string             `bson:"order_id,omitempty"`
	At         time.Time          `bson:"at"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

// EnsureIndexes creates the indexes the history query relies on.
func (r *CartEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("create cart_events indexes: %w", err)
	}
	return nil
}

// InsertEvent appends a cart event to the audit trail.
func (r *CartEventRepository) InsertEvent(ctx context.Context, event *domain.CartEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := cartEventDoc{
		BuyerID:    event.BuyerID,
		Action:     string(event.Action),
		ProductID:  event.ProductID,
		Quantity:   event.Quantity,
		Total:      event.Total,
		OrderID:    event.OrderID,
		At:         event.At.UTC(),
		RecordedAt: r.now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert cart event: %w", err)
	}
	return nil
}

// ListByBuyer returns up to limit events for buyerID, newest first.
func (r *CartEventRepository) ListByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.CartEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"buyer_id": buyerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find cart events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []cartEventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode cart events: %w", err)
	}

	events := make([]domain.CartEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, domain.CartEvent{
			BuyerID:   d.BuyerID,
			Action:    domain.CartAction(d.Action),
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			Total:     d.Total,
			OrderID:   d.OrderID,
			At:        d.At,
		})
	}
	return events, nil
}
