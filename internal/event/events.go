package event

import (
	"github.com/junah201/coincheatkey-position-bot/internal/domain"
)

// Type defines the type of event.
type Type uint16

const (
	EvBalanceUpdate Type = iota + 1
	EvOrderTrade
	EvFlush
)

// Event is the unit passed through the session inbox. Everything that
// mutates per-symbol state arrives here, including debounce timer fires,
// so the processing loop stays single-threaded.
type Event interface {
	GetSeq() uint64
	GetTs() int64 // Unix microseconds
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"`
}

func (e BaseEvent) GetSeq() uint64 { return e.Seq }
func (e BaseEvent) GetTs() int64   { return e.Ts }

// BalanceUpdateEvent carries the per-symbol position snapshots embedded in
// an account/balance feed record.
type BalanceUpdateEvent struct {
	BaseEvent
	Positions []domain.PositionSnapshot `json:"positions"`
}

func (e BalanceUpdateEvent) GetType() Type { return EvBalanceUpdate }

// OrderTradeEvent carries a single accepted fill.
type OrderTradeEvent struct {
	BaseEvent
	Fill domain.FillEvent `json:"fill"`
}

func (e OrderTradeEvent) GetType() Type { return EvOrderTrade }

// FlushEvent is emitted by a debounce timer when a symbol's quiet window
// elapses. Firing on an already-drained buffer is a no-op.
type FlushEvent struct {
	BaseEvent
	Symbol string `json:"symbol"`
}

func (e FlushEvent) GetType() Type { return EvFlush }
