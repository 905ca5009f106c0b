package domain

import "github.com/shopspring/decimal"

// Side is the taker side of a fill.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Invert returns the opposite side.
func (s Side) Invert() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Order lifecycle values the aggregator accepts. Everything else
// (NEW, CANCELED, EXPIRED, ...) is acceptance/cancellation noise.
const (
	OrderStatusFilled          = "FILLED"
	OrderStatusPartiallyFilled = "PARTIALLY_FILLED"

	ExecTypeTrade = "TRADE"
)

// FillEvent is one exchange-reported execution, decoded once at the feed
// boundary. Immutable after capture; consumed exactly once by aggregation.
type FillEvent struct {
	Symbol      string
	Side        Side
	Quantity    decimal.Decimal
	AvgPrice    decimal.Decimal
	RealizedPnl decimal.Decimal
	Fee         decimal.Decimal
	ReduceOnly  bool
	OrderStatus string
	ExecType    string
}

// Accepted reports whether the fill should enter the aggregation buffer.
func (f FillEvent) Accepted() bool {
	if f.ExecType != ExecTypeTrade {
		return false
	}
	return f.OrderStatus == OrderStatusFilled || f.OrderStatus == OrderStatusPartiallyFilled
}

// AggregatedBatch is the reduction of one debounce window's fills.
// It is derived, never stored.
type AggregatedBatch struct {
	Symbol           string
	TotalQuantity    decimal.Decimal
	WeightedAvgPrice decimal.Decimal
	TotalRealizedPnl decimal.Decimal
	TotalFee         decimal.Decimal

	// Side comes from the first fill in the batch. Documented assumption:
	// a single debounce window never mixes BUY and SELL fills for one symbol.
	Side Side

	// IsReduce is true if any fill in the batch was reduce-only.
	IsReduce bool
}

// PositionSnapshot is one per-symbol entry of an account/balance update.
type PositionSnapshot struct {
	Symbol     string
	Amount     decimal.Decimal
	EntryPrice decimal.Decimal
}
