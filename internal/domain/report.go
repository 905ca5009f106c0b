package domain

import "github.com/shopspring/decimal"

// PositionReport is one row of an on-demand PnL snapshot: ledger state
// combined with a live mark price. Read-only; producing a report never
// mutates the ledger.
type PositionReport struct {
	Symbol        string
	Side          Side
	Amount        decimal.Decimal // display-scaled, absolute
	EntryPrice    decimal.Decimal
	CurrentPrice  decimal.Decimal
	UnrealizedPnl decimal.Decimal
	RealizedPnl   decimal.Decimal
	ROE           decimal.Decimal // percent
}
