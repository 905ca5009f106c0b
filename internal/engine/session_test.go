package engine

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
	"github.com/junah201/coincheatkey-position-bot/internal/event"
	"github.com/junah201/coincheatkey-position-bot/internal/ledger"
)

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
	ch   chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan string, 16)}
}

func (n *fakeNotifier) Send(_ context.Context, text string) error {
	n.mu.Lock()
	n.msgs = append(n.msgs, text)
	n.mu.Unlock()
	n.ch <- text
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

func (n *fakeNotifier) waitOne(t *testing.T, timeout time.Duration) string {
	t.Helper()
	select {
	case msg := <-n.ch:
		return msg
	case <-time.After(timeout):
		t.Fatal("timed out waiting for notification")
		return ""
	}
}

func startSession(t *testing.T, window time.Duration, notifier Notifier) (*Session, context.CancelFunc) {
	t.Helper()
	s := NewSession(64, Config{Window: window, Multiplier: decimal.NewFromInt(1)}, ledger.New(), notifier, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	return s, cancel
}

func tradeEvent(fill domain.FillEvent) event.OrderTradeEvent {
	return event.OrderTradeEvent{
		BaseEvent: event.BaseEvent{Ts: time.Now().UnixMicro()},
		Fill:      fill,
	}
}

func TestSession_DebounceBatchesBurst(t *testing.T) {
	notifier := newFakeNotifier()
	s, cancel := startSession(t, 50*time.Millisecond, notifier)
	defer cancel()

	// Ledger sees the post-fill balance update within the window.
	s.Inbox() <- event.BalanceUpdateEvent{
		Positions: []domain.PositionSnapshot{{Symbol: "ABCUSDT", Amount: d("6"), EntryPrice: d("13.33")}},
	}

	for _, f := range []struct{ qty, price string }{
		{"1", "10"}, {"2", "20"}, {"3", "10"},
	} {
		s.Inbox() <- tradeEvent(buyFill(f.qty, f.price, "0"))
	}

	msg := notifier.waitOne(t, time.Second)

	if !strings.Contains(msg, "[Entry]") {
		t.Errorf("expected opening classification, got %q", msg)
	}
	if !strings.Contains(msg, "Qty: 6") {
		t.Errorf("expected aggregated quantity 6, got %q", msg)
	}

	// The whole burst produced exactly one notification.
	time.Sleep(3 * s.cfg.Window)
	if got := notifier.count(); got != 1 {
		t.Errorf("notifications = %d, want exactly 1 per buffering episode", got)
	}
}

func TestSession_SeparateBurstsNotifySeparately(t *testing.T) {
	notifier := newFakeNotifier()
	s, cancel := startSession(t, 30*time.Millisecond, notifier)
	defer cancel()

	s.Inbox() <- tradeEvent(buyFill("1", "10", "0"))
	notifier.waitOne(t, time.Second)

	s.Inbox() <- tradeEvent(buyFill("2", "11", "0"))
	notifier.waitOne(t, time.Second)

	if got := notifier.count(); got != 2 {
		t.Errorf("notifications = %d, want 2", got)
	}
}

func TestSession_StaleFlushIsNoop(t *testing.T) {
	notifier := newFakeNotifier()
	s, cancel := startSession(t, 30*time.Millisecond, notifier)
	defer cancel()

	// Flush with nothing buffered: the double-fire race.
	s.Inbox() <- event.FlushEvent{Symbol: "ABCUSDT"}

	time.Sleep(100 * time.Millisecond)
	if got := notifier.count(); got != 0 {
		t.Errorf("notifications = %d, want 0 for empty flush", got)
	}
}

func TestSession_RejectedFillsNeverBuffer(t *testing.T) {
	notifier := newFakeNotifier()
	s, cancel := startSession(t, 30*time.Millisecond, notifier)
	defer cancel()

	fill := buyFill("1", "10", "0")
	fill.OrderStatus = "NEW"
	fill.ExecType = "NEW"
	s.Inbox() <- tradeEvent(fill)

	time.Sleep(120 * time.Millisecond)
	if got := notifier.count(); got != 0 {
		t.Errorf("notifications = %d, want 0 for rejected fill", got)
	}
}

func TestSession_BalanceUpdateMergesLedger(t *testing.T) {
	notifier := newFakeNotifier()
	s, cancel := startSession(t, 30*time.Millisecond, notifier)
	defer cancel()

	s.Inbox() <- event.BalanceUpdateEvent{
		Positions: []domain.PositionSnapshot{
			{Symbol: "BTCUSDT", Amount: d("0.5"), EntryPrice: d("50000")},
			{Symbol: "ETHUSDT", Amount: d("-2"), EntryPrice: d("3000")},
		},
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(s.OpenPositions()) == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	p := s.Position("BTCUSDT")
	if !p.Amount.Equal(d("0.5")) || !p.EntryPrice.Equal(d("50000")) {
		t.Errorf("Position(BTCUSDT) = %+v", p)
	}
	if got := len(s.OpenPositions()); got != 2 {
		t.Errorf("OpenPositions = %d, want 2", got)
	}
}

func TestSession_FullCloseLifecycle(t *testing.T) {
	notifier := newFakeNotifier()
	s, cancel := startSession(t, 40*time.Millisecond, notifier)
	defer cancel()

	// Open position held at 5 @ 100.
	s.Inbox() <- event.BalanceUpdateEvent{
		Positions: []domain.PositionSnapshot{{Symbol: "XYZUSDT", Amount: d("5"), EntryPrice: d("100")}},
	}

	// Closing fill arrives, then the exchange reports the flat balance
	// inside the same quiet window.
	closing := domain.FillEvent{
		Symbol:      "XYZUSDT",
		Side:        domain.SideSell,
		Quantity:    d("5"),
		AvgPrice:    d("110"),
		RealizedPnl: d("50"),
		ReduceOnly:  true,
		OrderStatus: domain.OrderStatusFilled,
		ExecType:    domain.ExecTypeTrade,
	}
	s.Inbox() <- tradeEvent(closing)
	s.Inbox() <- event.BalanceUpdateEvent{
		Positions: []domain.PositionSnapshot{{Symbol: "XYZUSDT", Amount: d("0"), EntryPrice: d("0")}},
	}

	msg := notifier.waitOne(t, time.Second)
	if !strings.Contains(msg, "full close") {
		t.Errorf("expected full close, got %q", msg)
	}
	if !strings.Contains(msg, "$50") {
		t.Errorf("expected realized PnL $50, got %q", msg)
	}
	if got := s.Position("XYZUSDT").RealizedPnl; !got.IsZero() {
		t.Errorf("RealizedPnl after full close = %s, want 0", got)
	}
}

func TestSession_PendingTimerReleasedAfterStop(t *testing.T) {
	base := runtime.NumGoroutine()

	notifier := newFakeNotifier()
	led := ledger.New()
	s := NewSession(1, Config{Window: 20 * time.Millisecond, Multiplier: decimal.NewFromInt(1)}, led, notifier, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	s.Inbox() <- tradeEvent(buyFill("2", "100", "0"))

	// Let the loop consume the fill and arm the flush timer, then stop.
	time.Sleep(5 * time.Millisecond)
	cancel()
	<-stopped

	// Occupy the single inbox slot so an unguarded timer send would block
	// its goroutine forever once the window elapses.
	s.Inbox() <- tradeEvent(buyFill("1", "100", "0"))

	// The timer goroutine must exit instead of parking on the inbox.
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > base {
		if time.Now().After(deadline) {
			t.Fatalf("goroutines = %d, want <= %d (flush timer still parked)", runtime.NumGoroutine(), base)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if notifier.count() != 0 {
		t.Errorf("notifications after stop = %d, want 0", notifier.count())
	}
}
