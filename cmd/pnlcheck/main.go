package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/junah201/coincheatkey-position-bot/internal/infra"
	"github.com/junah201/coincheatkey-position-bot/internal/infra/binance"
	"github.com/junah201/coincheatkey-position-bot/pkg/format"
)

// One-shot connectivity check: pulls the account snapshot and a mark price
// for every open symbol, without starting the stream or the bot.
func main() {
	fmt.Println("=== Position Bot PnL Check ===")
	fmt.Println()

	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		fmt.Printf("❌ config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rest := binance.NewRestClient(cfg.Binance.RestURL, cfg.Binance.APIKey, cfg.Binance.SecretKey)

	positions, err := rest.AccountPositions(ctx)
	if err != nil {
		fmt.Printf("❌ account snapshot: %v\n", err)
		os.Exit(1)
	}
	if len(positions) == 0 {
		fmt.Println("📭 No open positions.")
		return
	}

	for _, p := range positions {
		mark, err := rest.MarkPrice(ctx, p.Symbol)
		if err != nil {
			fmt.Printf("❌ %s mark price: %v\n", p.Symbol, err)
			continue
		}

		unrealized := mark.Sub(p.EntryPrice).Mul(p.Amount)
		fmt.Printf("📊 %s\n", p.Symbol)
		fmt.Printf("   Amount:     %s\n", format.Quantity(p.Amount))
		fmt.Printf("   Entry:      %s\n", format.Price(p.EntryPrice, p.Symbol))
		fmt.Printf("   Mark:       %s\n", format.Price(mark, p.Symbol))
		fmt.Printf("   Unrealized: %s\n", format.USD(unrealized))
		fmt.Println()
	}

	fmt.Println("✅ REST connectivity OK")
}
