package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/junah201/coincheatkey-position-bot/internal/app"
	"github.com/junah201/coincheatkey-position-bot/internal/engine"
	"github.com/junah201/coincheatkey-position-bot/internal/event"
	"github.com/junah201/coincheatkey-position-bot/internal/infra"
	"github.com/junah201/coincheatkey-position-bot/internal/infra/binance"
	"github.com/junah201/coincheatkey-position-bot/internal/ledger"
	"github.com/junah201/coincheatkey-position-bot/internal/pnl"
)

func main() {
	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	cfg := bootstrap.Config

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	multiplier := parseMultiplier(cfg.Notify.Multiplier)

	// 3. Session (The Hotpath Loop)
	telegram := infra.NewTelegramClient(cfg.Telegram.Token, cfg.Telegram.ChatID)

	var journal engine.Journal
	if bootstrap.Journal != nil {
		journal = bootstrap.Journal
	}

	session := engine.NewSession(1024, engine.Config{
		Window:     cfg.DebounceWindow(),
		Multiplier: multiplier,
	}, ledger.New(), telegram, journal)

	go session.Run(ctx)
	slog.InfoContext(ctx, "✅ Session (Hotpath) started",
		slog.Duration("window", cfg.DebounceWindow()),
		slog.String("multiplier", multiplier.String()))

	// 4. Startup Account Sync
	rest := binance.NewRestClient(cfg.Binance.RestURL, cfg.Binance.APIKey, cfg.Binance.SecretKey)
	seedPositions(ctx, rest, session)

	// 5. User-Data Stream (Gateway)
	var stream infra.Exchange = binance.NewUserStream(rest, cfg.Binance.WSURL, session.Inbox(), session.NextSeq)
	if err := stream.Start(ctx); err != nil {
		slog.Error("❌ Failed to start user-data stream", slog.Any("error", err))
		os.Exit(1)
	}
	defer stream.Stop()
	slog.InfoContext(ctx, "✅ UserStream started")

	// 6. On-Demand PnL Command Surface
	pnlService := pnl.NewService(session, rest, multiplier)
	poller := infra.NewTelegramPoller(telegram, cfg.Telegram.PollIntervalSec, func(ctx context.Context, command string) string {
		switch command {
		case "/pnl":
			return pnl.FormatReports(pnlService.Query(ctx))
		default:
			return ""
		}
	})
	poller.Start(ctx)
	defer poller.Stop()
	slog.InfoContext(ctx, "✅ Telegram command poller started")

	<-ctx.Done()
	slog.Info("👋 Shutting down...")
}

// seedPositions primes the ledger from a REST account snapshot so PnL queries
// work before the first stream update. Best effort: the first ACCOUNT_UPDATE
// converges the ledger anyway.
func seedPositions(ctx context.Context, rest *binance.RestClient, session *engine.Session) {
	positions, err := rest.AccountPositions(ctx)
	if err != nil {
		slog.Warn("Account snapshot failed, starting with empty ledger", slog.Any("error", err))
		return
	}
	if len(positions) == 0 {
		return
	}
	session.Inbox() <- event.BalanceUpdateEvent{
		BaseEvent: event.BaseEvent{Seq: session.NextSeq(), Ts: time.Now().UnixMicro()},
		Positions: positions,
	}

	slog.Info("Ledger seeded from account snapshot", slog.Int("positions", len(positions)))
}

func parseMultiplier(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.NewFromInt(1)
	}
	m, err := decimal.NewFromString(raw)
	if err != nil || m.IsZero() {
		slog.Warn("Invalid notify.multiplier, falling back to 1", slog.String("value", raw))
		return decimal.NewFromInt(1)
	}
	return m
}
