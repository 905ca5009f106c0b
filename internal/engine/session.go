package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
	"github.com/junah201/coincheatkey-position-bot/internal/event"
	"github.com/junah201/coincheatkey-position-bot/internal/ledger"
)

// Notifier delivers a finished notification payload. Delivery failure is the
// notifier's problem; the session logs and moves on.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Journal records accepted feed events and outbound notifications for
// post-mortem. Optional; a nil journal disables it.
type Journal interface {
	SaveEvent(ctx context.Context, ev event.Event) error
	SaveNotification(ctx context.Context, id, text string, ts int64) error
}

// Config holds the session's tunables.
type Config struct {
	// Window is the debounce quiet window, fixed from the first fill of a
	// burst. Hundreds of milliseconds: long enough for the child fills of
	// one parent order and the matching balance update to arrive.
	Window time.Duration

	// Multiplier is the display-scaling factor applied to quantities,
	// realized PnL and fees. Presentation only; ledger truth is unscaled.
	Multiplier decimal.Decimal
}

// Session is the core event processor. It owns the position ledger and the
// per-symbol debounce buffers, and mutates both only from its single
// goroutine: feed events and timer fires all arrive through the inbox, so
// no per-symbol locking is needed on the hot path. The mutex exists solely
// to let PnL queries read consistent ledger snapshots from outside.
type Session struct {
	inbox   chan event.Event
	ledger  *ledger.Ledger
	buffers map[string][]domain.FillEvent
	pending map[string]bool // symbols with a live flush timer

	cfg      Config
	notifier Notifier
	journal  Journal
	nextSeq  uint64
	done     chan struct{} // closed when Run exits; releases pending timers

	mu sync.RWMutex // external reads only
}

// NewSession creates a session with an inbox of the given capacity.
func NewSession(inboxSize int, cfg Config, led *ledger.Ledger, notifier Notifier, journal Journal) *Session {
	if cfg.Window <= 0 {
		cfg.Window = 500 * time.Millisecond
	}
	if cfg.Multiplier.IsZero() {
		cfg.Multiplier = decimal.NewFromInt(1)
	}
	return &Session{
		inbox:    make(chan event.Event, inboxSize),
		ledger:   led,
		buffers:  make(map[string][]domain.FillEvent),
		pending:  make(map[string]bool),
		cfg:      cfg,
		notifier: notifier,
		journal:  journal,
		done:     make(chan struct{}),
	}
}

// Inbox returns the event channel. Feed workers send events here.
func (s *Session) Inbox() chan<- event.Event {
	return s.inbox
}

// NextSeq stamps a new event sequence number. Safe for concurrent workers.
func (s *Session) NextSeq() uint64 {
	return atomic.AddUint64(&s.nextSeq, 1)
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	slog.Info("Session started (single-thread hotpath)")
	for {
		select {
		case <-ctx.Done():
			slog.Info("Session stopping...")
			return
		case ev := <-s.inbox:
			s.processEvent(ctx, ev)
		}
	}
}

func (s *Session) processEvent(ctx context.Context, ev event.Event) {
	// Audit trail first; journal failure never blocks the feed.
	if s.journal != nil {
		if err := s.journal.SaveEvent(ctx, ev); err != nil {
			slog.Warn("Journal write failed", slog.Any("error", err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case event.BalanceUpdateEvent:
		s.handleBalanceUpdate(e)
	case event.OrderTradeEvent:
		s.handleOrderTrade(e)
	case event.FlushEvent:
		s.handleFlush(ctx, e)
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}
}

func (s *Session) handleBalanceUpdate(e event.BalanceUpdateEvent) {
	for _, snap := range e.Positions {
		s.ledger.MergeUpdate(snap.Symbol, snap.Amount, snap.EntryPrice)
	}
}

func (s *Session) handleOrderTrade(e event.OrderTradeEvent) {
	fill := e.Fill
	if !fill.Accepted() {
		return
	}

	s.buffers[fill.Symbol] = append(s.buffers[fill.Symbol], fill)

	// One non-cancellable timer per buffering episode, fixed from the first
	// fill. Later fills join the batch without extending the window, which
	// bounds notification latency under continuous fill pressure.
	if s.pending[fill.Symbol] {
		return
	}
	s.pending[fill.Symbol] = true

	symbol := fill.Symbol
	time.AfterFunc(s.cfg.Window, func() {
		flush := event.FlushEvent{
			BaseEvent: event.BaseEvent{Seq: s.NextSeq(), Ts: time.Now().UnixMicro()},
			Symbol:    symbol,
		}
		// Abandon the flush if the loop has already exited, so a late
		// timer never parks its goroutine on a full inbox.
		select {
		case s.inbox <- flush:
		case <-s.done:
		}
	})
}

func (s *Session) handleFlush(ctx context.Context, e event.FlushEvent) {
	fills := s.buffers[e.Symbol]
	delete(s.buffers, e.Symbol)
	delete(s.pending, e.Symbol)

	// Stale double-fire against a drained buffer.
	if len(fills) == 0 {
		return
	}

	batch := Aggregate(e.Symbol, fills, s.cfg.Multiplier)
	summary := Classify(s.ledger, batch, s.cfg.Multiplier)
	text := FormatSummary(summary)

	deliveryID := uuid.NewString()
	slog.Info("Trade summarized",
		slog.String("symbol", e.Symbol),
		slog.String("kind", summary.Kind.String()),
		slog.Int("fills", len(fills)),
		slog.String("delivery_id", deliveryID))

	if s.journal != nil {
		if err := s.journal.SaveNotification(ctx, deliveryID, text, time.Now().UnixMicro()); err != nil {
			slog.Warn("Journal write failed", slog.Any("error", err))
		}
	}

	// Fire-and-forget: delivery must never stall the event loop, and a
	// failed send does not touch ledger state.
	go func() {
		if err := s.notifier.Send(context.Background(), text); err != nil {
			slog.Warn("Notification delivery failed",
				slog.String("delivery_id", deliveryID),
				slog.Any("error", err))
		}
	}()
}

// Position returns a copy of the symbol's ledger record (external read).
func (s *Session) Position(symbol string) domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Snapshot(symbol)
}

// OpenPositions returns copies of every non-flat position (external read).
func (s *Session) OpenPositions() []domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := s.ledger.OpenSymbols()
	positions := make([]domain.Position, 0, len(symbols))
	for _, symbol := range symbols {
		positions = append(positions, s.ledger.Snapshot(symbol))
	}
	return positions
}
