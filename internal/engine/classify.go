package engine

import (
	"github.com/shopspring/decimal"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
	"github.com/junah201/coincheatkey-position-bot/internal/ledger"
)

// TradeKind is the lifecycle classification of a flushed batch.
type TradeKind int

const (
	KindNewEntry TradeKind = iota + 1
	KindAddition
	KindPartialClose
	KindFullClose
)

func (k TradeKind) String() string {
	switch k {
	case KindNewEntry:
		return "NEW_ENTRY"
	case KindAddition:
		return "ADDITION"
	case KindPartialClose:
		return "PARTIAL_CLOSE"
	case KindFullClose:
		return "FULL_CLOSE"
	default:
		return "UNKNOWN"
	}
}

// epsilon is the "effectively zero" band for scaled quantities. Exchange
// balance snapshots can leave dust below this after a full close.
var epsilon = decimal.RequireFromString("0.00001")

// TradeSummary is a classified batch plus the ledger context needed to
// render a notification.
type TradeSummary struct {
	Kind  TradeKind
	Batch domain.AggregatedBatch

	// Side is the label side: inverted from the fill side for closes
	// (a BUY fill that closes is closing a short).
	Side domain.Side

	// Remaining is the scaled absolute ledger amount after the window.
	Remaining decimal.Decimal

	// RealizedPnl is the cumulative realized PnL at notification time.
	RealizedPnl decimal.Decimal

	// BlendedEntryPrice is the ledger's post-window entry price, shown on
	// additions.
	BlendedEntryPrice decimal.Decimal
}

// Classify decides what a flushed batch means against the ledger's
// post-window state and performs the realized-PnL bookkeeping that must
// happen atomically with the flush: folding a closing batch's PnL in,
// resetting on full close, resetting on a fresh entry from flat.
//
// The caller must hold the session's write side; this is the only place
// outside the ledger package that mutates position truth.
func Classify(led *ledger.Ledger, batch domain.AggregatedBatch, multiplier decimal.Decimal) TradeSummary {
	snap := led.Snapshot(batch.Symbol)
	remaining := snap.Amount.Abs().Mul(multiplier)

	if !batch.TotalRealizedPnl.IsZero() || batch.IsReduce {
		led.AddRealizedPnl(batch.Symbol, batch.TotalRealizedPnl)
		cumulative := led.Snapshot(batch.Symbol).RealizedPnl

		summary := TradeSummary{
			Batch:       batch,
			Side:        batch.Side.Invert(),
			Remaining:   remaining,
			RealizedPnl: cumulative,
		}
		if remaining.LessThan(epsilon) {
			summary.Kind = KindFullClose
			led.ResetRealizedPnl(batch.Symbol)
		} else {
			summary.Kind = KindPartialClose
		}
		return summary
	}

	summary := TradeSummary{
		Batch:             batch,
		Side:              batch.Side,
		Remaining:         remaining,
		BlendedEntryPrice: snap.EntryPrice,
	}
	previous := remaining.Sub(batch.TotalQuantity)
	if previous.LessThan(epsilon) {
		summary.Kind = KindNewEntry
		led.ResetRealizedPnl(batch.Symbol)
	} else {
		summary.Kind = KindAddition
	}
	return summary
}
