package pnl

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
)

// PriceSource supplies live mark prices. Implemented by the exchange REST
// client; tests stub it.
type PriceSource interface {
	MarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// LedgerView is the read-only window into the session's position ledger.
type LedgerView interface {
	OpenPositions() []domain.Position
}

var hundred = decimal.NewFromInt(100)

// Service answers on-demand PnL queries. It runs entirely off the feed hot
// path: ledger reads are snapshot copies, price fetches are its own HTTP
// round-trips.
type Service struct {
	ledger     LedgerView
	prices     PriceSource
	multiplier decimal.Decimal
}

// NewService creates a query service with the given display multiplier.
func NewService(ledger LedgerView, prices PriceSource, multiplier decimal.Decimal) *Service {
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	return &Service{ledger: ledger, prices: prices, multiplier: multiplier}
}

// Query reports unrealized PnL, ROE and accumulated realized PnL for every
// open position. Any price fetch failure yields an empty result rather than
// a partially-stale report.
func (s *Service) Query(ctx context.Context) []domain.PositionReport {
	positions := s.ledger.OpenPositions()
	reports := make([]domain.PositionReport, 0, len(positions))

	for _, p := range positions {
		current, err := s.prices.MarkPrice(ctx, p.Symbol)
		if err != nil {
			slog.Warn("Mark price fetch failed, dropping PnL report",
				slog.String("symbol", p.Symbol),
				slog.Any("error", err))
			return []domain.PositionReport{}
		}
		reports = append(reports, s.report(p, current))
	}
	return reports
}

func (s *Service) report(p domain.Position, current decimal.Decimal) domain.PositionReport {
	scaledAmount := p.Amount.Mul(s.multiplier)

	unrealized := current.Sub(p.EntryPrice).Mul(scaledAmount)
	entryNotional := p.EntryPrice.Mul(scaledAmount.Abs())

	roe := decimal.Zero
	if !entryNotional.IsZero() {
		roe = unrealized.Div(entryNotional).Mul(hundred)
	}

	side := domain.SideSell
	if p.IsLong() {
		side = domain.SideBuy
	}

	return domain.PositionReport{
		Symbol:        p.Symbol,
		Side:          side,
		Amount:        scaledAmount.Abs(),
		EntryPrice:    p.EntryPrice,
		CurrentPrice:  current,
		UnrealizedPnl: unrealized,
		RealizedPnl:   p.RealizedPnl,
		ROE:           roe,
	}
}
