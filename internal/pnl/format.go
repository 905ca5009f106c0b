package pnl

import (
	"fmt"
	"strings"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
	"github.com/junah201/coincheatkey-position-bot/pkg/format"
)

// FormatReports renders a /pnl snapshot as one Telegram-ready message.
func FormatReports(reports []domain.PositionReport) string {
	if len(reports) == 0 {
		return "📭 No open positions."
	}

	var b strings.Builder
	b.WriteString("📊 Open Positions\n")

	for _, r := range reports {
		direction := "Short"
		if r.Side == domain.SideBuy {
			direction = "Long"
		}

		icon := "🔻"
		if r.UnrealizedPnl.IsPositive() {
			icon = "🔺"
		} else if r.UnrealizedPnl.IsZero() {
			icon = "➖"
		}

		fmt.Fprintf(&b, "\n%s %s %s / Qty: %s\nEntry: %s → Mark: %s\nUnrealized: %s (ROE %s%%) / Realized: %s\n",
			icon, r.Symbol, direction,
			format.Quantity(r.Amount),
			format.Price(r.EntryPrice, r.Symbol),
			format.Price(r.CurrentPrice, r.Symbol),
			format.USD(r.UnrealizedPnl),
			format.Decimal(r.ROE, 2),
			format.USD(r.RealizedPnl))
	}
	return b.String()
}
