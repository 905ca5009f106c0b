package engine

import (
	"fmt"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
	"github.com/junah201/coincheatkey-position-bot/pkg/format"
)

// FormatSummary renders the notification text for a classified batch.
func FormatSummary(s TradeSummary) string {
	direction := "Short"
	if s.Side == domain.SideBuy {
		direction = "Long"
	}

	symbol := s.Batch.Symbol
	price := format.Price(s.Batch.WeightedAvgPrice, symbol)
	qty := format.Quantity(s.Batch.TotalQuantity)

	switch s.Kind {
	case KindFullClose, KindPartialClose:
		var icon, label string
		switch {
		case s.Batch.TotalRealizedPnl.IsPositive():
			icon, label = "💰", "Take Profit"
		case s.Batch.TotalRealizedPnl.IsNegative():
			icon, label = "💧", "Stop Loss"
		default:
			icon, label = "⚖️", "Close"
		}

		if s.Kind == KindFullClose {
			return fmt.Sprintf("%s [%s] %s %s / Avg: %s / Qty: %s (full close)\nRealized PnL: %s",
				icon, label, symbol, direction, price, qty, format.USD(s.RealizedPnl))
		}
		return fmt.Sprintf("%s [Partial %s] %s %s / Avg: %s / Qty: %s / Remaining: %s\nRealized PnL so far: %s",
			icon, label, symbol, direction, price, qty,
			format.Quantity(s.Remaining), format.USD(s.RealizedPnl))

	case KindAddition:
		icon := openIcon(s.Side)
		return fmt.Sprintf("%s [Add] %s %s / Avg: %s / Qty: %s\n➡️ Blended Avg: %s / Total Qty: %s",
			icon, symbol, direction, price, qty,
			format.Price(s.BlendedEntryPrice, symbol), format.Quantity(s.Remaining))

	default: // KindNewEntry
		icon := openIcon(s.Side)
		return fmt.Sprintf("%s [Entry] %s %s / Avg: %s / Qty: %s",
			icon, symbol, direction, price, qty)
	}
}

func openIcon(side domain.Side) string {
	if side == domain.SideBuy {
		return "🟢"
	}
	return "🔴"
}
