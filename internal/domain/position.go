package domain

import "github.com/shopspring/decimal"

// Position is the per-symbol wallet record. Amount is signed: positive for
// Long, negative for Short, zero for flat. RealizedPnl accumulates between
// the last flat state and now; only the ledger resets it.
type Position struct {
	Symbol      string
	Amount      decimal.Decimal
	EntryPrice  decimal.Decimal
	RealizedPnl decimal.Decimal
}

// IsLong checks if the position is Long.
func (p Position) IsLong() bool {
	return p.Amount.IsPositive()
}

// IsShort checks if the position is Short.
func (p Position) IsShort() bool {
	return p.Amount.IsNegative()
}

// IsFlat checks if the position holds no quantity.
func (p Position) IsFlat() bool {
	return p.Amount.IsZero()
}
