package ledger

import (
	"sort"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedger_MergeUpdatePreservesRealizedPnl(t *testing.T) {
	l := New()

	l.MergeUpdate("BTCUSDT", d("1.5"), d("50000"))
	l.AddRealizedPnl("BTCUSDT", d("120.5"))

	// A balance refresh must not erase the running realized PnL.
	l.MergeUpdate("BTCUSDT", d("0.5"), d("51000"))

	p := l.Snapshot("BTCUSDT")
	if !p.Amount.Equal(d("0.5")) {
		t.Errorf("Amount = %s, want 0.5", p.Amount)
	}
	if !p.EntryPrice.Equal(d("51000")) {
		t.Errorf("EntryPrice = %s, want 51000", p.EntryPrice)
	}
	if !p.RealizedPnl.Equal(d("120.5")) {
		t.Errorf("RealizedPnl = %s, want 120.5 (merge must preserve it)", p.RealizedPnl)
	}
}

func TestLedger_AddAndResetRealizedPnl(t *testing.T) {
	l := New()

	l.AddRealizedPnl("ETHUSDT", d("10"))
	l.AddRealizedPnl("ETHUSDT", d("-3.5"))
	if got := l.Snapshot("ETHUSDT").RealizedPnl; !got.Equal(d("6.5")) {
		t.Errorf("RealizedPnl = %s, want 6.5", got)
	}

	l.ResetRealizedPnl("ETHUSDT")
	if got := l.Snapshot("ETHUSDT").RealizedPnl; !got.IsZero() {
		t.Errorf("RealizedPnl after reset = %s, want 0", got)
	}
}

func TestLedger_AddZeroDeltaDoesNotMaterialize(t *testing.T) {
	l := New()
	l.AddRealizedPnl("XRPUSDT", decimal.Zero)
	if l.Count() != 0 {
		t.Errorf("zero delta should be a no-op, got %d entries", l.Count())
	}
}

func TestLedger_SnapshotUnknownSymbol(t *testing.T) {
	l := New()
	p := l.Snapshot("DOGEUSDT")
	if !p.Amount.IsZero() || !p.EntryPrice.IsZero() || !p.RealizedPnl.IsZero() {
		t.Errorf("unknown symbol should be all-zero, got %+v", p)
	}
	if p.Symbol != "DOGEUSDT" {
		t.Errorf("Symbol = %s, want DOGEUSDT", p.Symbol)
	}
}

func TestLedger_OpenSymbols(t *testing.T) {
	l := New()
	l.MergeUpdate("BTCUSDT", d("1"), d("50000"))
	l.MergeUpdate("ETHUSDT", d("-2"), d("3000"))
	l.MergeUpdate("XRPUSDT", d("0"), d("0")) // flat, excluded

	got := l.OpenSymbols()
	sort.Strings(got)
	want := []string{"BTCUSDT", "ETHUSDT"}
	if len(got) != len(want) {
		t.Fatalf("OpenSymbols = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("OpenSymbols[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
