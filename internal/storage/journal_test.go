package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
	"github.com/junah201/coincheatkey-position-bot/internal/event"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_SaveEvent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	ev := event.OrderTradeEvent{
		BaseEvent: event.BaseEvent{Seq: 1, Ts: 1700000000000000},
		Fill: domain.FillEvent{
			Symbol:      "BTCUSDT",
			Side:        domain.SideBuy,
			Quantity:    decimal.RequireFromString("0.5"),
			OrderStatus: domain.OrderStatusFilled,
			ExecType:    domain.ExecTypeTrade,
		},
	}
	if err := j.SaveEvent(ctx, ev); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}
	if err := j.SaveEvent(ctx, event.FlushEvent{BaseEvent: event.BaseEvent{Seq: 2}, Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}

	count, err := j.EventCount(ctx)
	if err != nil {
		t.Fatalf("EventCount: %v", err)
	}
	if count != 2 {
		t.Errorf("EventCount = %d, want 2", count)
	}
}

func TestJournal_Notifications(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.SaveNotification(ctx, "id-1", "first", 100); err != nil {
		t.Fatalf("SaveNotification: %v", err)
	}
	if err := j.SaveNotification(ctx, "id-2", "second", 200); err != nil {
		t.Fatalf("SaveNotification: %v", err)
	}

	bodies, err := j.RecentNotifications(ctx, 10)
	if err != nil {
		t.Fatalf("RecentNotifications: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("RecentNotifications = %d rows, want 2", len(bodies))
	}
	if bodies[0] != "second" {
		t.Errorf("newest first: got %q", bodies[0])
	}
}

func TestJournal_DuplicateDeliveryIDRejected(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.SaveNotification(ctx, "dup", "a", 1); err != nil {
		t.Fatalf("SaveNotification: %v", err)
	}
	if err := j.SaveNotification(ctx, "dup", "b", 2); err == nil {
		t.Error("duplicate delivery_id should fail")
	}
}
