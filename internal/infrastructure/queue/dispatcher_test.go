package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.CartEvent
	block  chan struct{}
	err    error
}

func (r *recordingRepo) InsertEvent(_ context.Context, e *domain.CartEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return r.err
}

func (r *recordingRepo) ListByBuyer(context.Context, string, int) ([]domain.CartEvent, error) {
	return nil, nil
}

func (r *recordingRepo) byBuyer(buyerID string) []domain.CartEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CartEvent
	for _, e := range r.events {
		if e.BuyerID == buyerID {
			out = append(out, e)
		}
	}
	return out
}

func TestAuditDispatcher_PreservesPerBuyerOrder(t *testing.T) {
	repo := &recordingRepo{}
	d := NewAuditDispatcher(3, repo, zerolog.Nop())
	d.Start(context.Background())

	buyers := []string{"b1", "b2", "b3", "b4"}
	for q := 1; q <= 20; q++ {
		for _, b := range buyers {
			d.Record(domain.CartEvent{BuyerID: b, Action: domain.CartActionUpdate, Quantity: q})
		}
	}
	d.Close()

	for _, b := range buyers {
		events := repo.byBuyer(b)
		require.Len(t, events, 20, "buyer %s", b)
		for i, e := range events {
			assert.Equal(t, i+1, e.Quantity, "buyer %s out of order", b)
		}
	}
}

func TestAuditDispatcher_SameBuyerSameShard(t *testing.T) {
	d := NewAuditDispatcher(8, &recordingRepo{}, zerolog.Nop())

	first := d.shardIndex("buyer-42")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("buyer-42"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}

func TestAuditDispatcher_RecordNeverBlocks(t *testing.T) {
	repo := &recordingRepo{block: make(chan struct{})}
	d := newAuditDispatcher(1, 1, repo, zerolog.Nop())
	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Record(domain.CartEvent{BuyerID: "b1", Quantity: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	close(repo.block)
	d.Close()
	assert.Less(t, len(repo.byBuyer("b1")), 10, "overflowing events must be dropped")
}

func TestAuditDispatcher_WriteFailureDoesNotStopWorker(t *testing.T) {
	repo := &recordingRepo{err: errors.New("mongo unavailable")}
	d := NewAuditDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	d.Record(domain.CartEvent{BuyerID: "b1", Quantity: 1})
	d.Record(domain.CartEvent{BuyerID: "b1", Quantity: 2})
	d.Close()

	assert.Len(t, repo.byBuyer("b1"), 2)
}

func TestAuditDispatcher_RecordAfterCloseIsDropped(t *testing.T) {
	repo := &recordingRepo{}
	d := NewAuditDispatcher(2, repo, zerolog.Nop())
	d.Start(context.Background())
	d.Close()
	d.Close()

	assert.NotPanics(t, func() {
		d.Record(domain.CartEvent{BuyerID: "b1"})
	})
	assert.Empty(t, repo.byBuyer("b1"))
}
