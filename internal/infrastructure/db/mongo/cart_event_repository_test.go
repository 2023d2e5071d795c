package mongo

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

func TestCartEventRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewCartEventRepository(mt.DB)

		err := repo.InsertEvent(context.Background(), &domain.CartEvent{
			BuyerID:   "b1",
			Action:    domain.CartActionAdd,
			ProductID: "p1",
			Quantity:  2,
			Total:     5,
			At:        time.Now(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	mt.Run("insert failure is wrapped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		repo := NewCartEventRepository(mt.DB)

		if err := repo.InsertEvent(context.Background(), &domain.CartEvent{BuyerID: "b1"}); err == nil {
			t.Fatal("expected error")
		}
	})

	mt.Run("list by buyer", func(mt *mtest.T) {
		at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
		ns := mt.DB.Name() + "." + collectionCartEvents
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{
					{Key: "buyer_id", Value: "b1"},
					{Key: "action", Value: "checkout"},
					{Key: "quantity", Value: 0},
					{Key: "total", Value: 12.5},
					{Key: "order_id", Value: "o-1"},
					{Key: "at", Value: at},
				},
				bson.D{
					{Key: "buyer_id", Value: "b1"},
					{Key: "action", Value: "add"},
					{Key: "product_id", Value: "p1"},
					{Key: "quantity", Value: 2},
					{Key: "total", Value: 12.5},
					{Key: "at", Value: at.Add(-time.Minute)},
				},
			),
		)
		repo := NewCartEventRepository(mt.DB)

		events, err := repo.ListByBuyer(context.Background(), "b1", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Action != domain.CartActionCheckout || events[0].OrderID != "o-1" || !events[0].At.Equal(at) {
			t.Errorf("unexpected first event %+v", events[0])
		}
		if events[1].ProductID != "p1" || events[1].Quantity != 2 {
			t.Errorf("unexpected second event %+v", events[1])
		}
	})
}
