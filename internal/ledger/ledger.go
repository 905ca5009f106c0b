package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
)

// Ledger is the source of truth for per-symbol positions. It is owned by the
// session and mutated only from the session's single-threaded loop; external
// readers go through the session's snapshot accessors.
//
// Entries materialize on first reference with zero values and are never
// removed, only zeroed, matching the exchange's view of a closed position.
type Ledger struct {
	positions map[string]*domain.Position
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{positions: make(map[string]*domain.Position)}
}

func (l *Ledger) entry(symbol string) *domain.Position {
	p, ok := l.positions[symbol]
	if !ok {
		p = &domain.Position{Symbol: symbol}
		l.positions[symbol] = p
	}
	return p
}

// MergeUpdate overwrites amount and entry price for the symbol while
// preserving the accumulated realized PnL. A full record replacement here
// would silently drop realized-PnL bookkeeping between fills and balance
// refreshes, so only the two exchange-owned fields are touched.
func (l *Ledger) MergeUpdate(symbol string, amount, entryPrice decimal.Decimal) {
	p := l.entry(symbol)
	p.Amount = amount
	p.EntryPrice = entryPrice
}

// AddRealizedPnl folds a closing batch's realized PnL into the symbol's
// running total. No-op for a zero delta.
func (l *Ledger) AddRealizedPnl(symbol string, delta decimal.Decimal) {
	if delta.IsZero() {
		return
	}
	p := l.entry(symbol)
	p.RealizedPnl = p.RealizedPnl.Add(delta)
}

// ResetRealizedPnl zeroes the symbol's running realized PnL. Called when a
// flush leaves the position flat, or when a brand-new entry opens from flat.
func (l *Ledger) ResetRealizedPnl(symbol string) {
	l.entry(symbol).RealizedPnl = decimal.Zero
}

// Snapshot returns a copy of the symbol's position. Unknown symbols yield an
// all-zero record rather than an error.
func (l *Ledger) Snapshot(symbol string) domain.Position {
	if p, ok := l.positions[symbol]; ok {
		return *p
	}
	return domain.Position{Symbol: symbol}
}

// OpenSymbols returns every symbol with a non-zero amount, for PnL fan-out.
func (l *Ledger) OpenSymbols() []string {
	symbols := make([]string, 0, len(l.positions))
	for symbol, p := range l.positions {
		if !p.Amount.IsZero() {
			symbols = append(symbols, symbol)
		}
	}
	return symbols
}

// Count returns the number of tracked symbols, open or flat.
func (l *Ledger) Count() int {
	return len(l.positions)
}
