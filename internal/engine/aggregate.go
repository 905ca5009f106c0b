package engine

import (
	"github.com/shopspring/decimal"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
)

// Aggregate reduces one debounce window's fills into a single batch.
// Pure function; the multiplier is the display-scaling factor applied to
// quantities, realized PnL and fees. The weighted average price is left
// unscaled (the multiplier cancels out of the division).
func Aggregate(symbol string, fills []domain.FillEvent, multiplier decimal.Decimal) domain.AggregatedBatch {
	batch := domain.AggregatedBatch{
		Symbol:           symbol,
		TotalQuantity:    decimal.Zero,
		WeightedAvgPrice: decimal.Zero,
		TotalRealizedPnl: decimal.Zero,
		TotalFee:         decimal.Zero,
	}
	if len(fills) == 0 {
		return batch
	}

	// Assumes one window never mixes opposite sides for a symbol.
	batch.Side = fills[0].Side

	totalValue := decimal.Zero
	for _, f := range fills {
		qty := f.Quantity.Mul(multiplier)
		batch.TotalQuantity = batch.TotalQuantity.Add(qty)
		totalValue = totalValue.Add(f.AvgPrice.Mul(qty))
		batch.TotalRealizedPnl = batch.TotalRealizedPnl.Add(f.RealizedPnl.Mul(multiplier))
		batch.TotalFee = batch.TotalFee.Add(f.Fee.Mul(multiplier))
		if f.ReduceOnly {
			batch.IsReduce = true
		}
	}

	// An all-zero-quantity batch yields price 0, not an error.
	if batch.TotalQuantity.IsPositive() {
		batch.WeightedAvgPrice = totalValue.Div(batch.TotalQuantity)
	}
	return batch
}
