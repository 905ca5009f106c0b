package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPosition_Direction(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		isLong  bool
		isShort bool
		isFlat  bool
	}{
		{"Long", "1.5", true, false, false},
		{"Short", "-0.25", false, true, false},
		{"Flat", "0", false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Position{Amount: decimal.RequireFromString(tt.amount)}
			if got := p.IsLong(); got != tt.isLong {
				t.Errorf("Position.IsLong() = %v, want %v", got, tt.isLong)
			}
			if got := p.IsShort(); got != tt.isShort {
				t.Errorf("Position.IsShort() = %v, want %v", got, tt.isShort)
			}
			if got := p.IsFlat(); got != tt.isFlat {
				t.Errorf("Position.IsFlat() = %v, want %v", got, tt.isFlat)
			}
		})
	}
}

func TestFillEvent_Accepted(t *testing.T) {
	tests := []struct {
		name   string
		status string
		exec   string
		want   bool
	}{
		{"filled trade", OrderStatusFilled, ExecTypeTrade, true},
		{"partial fill trade", OrderStatusPartiallyFilled, ExecTypeTrade, true},
		{"new order", "NEW", "NEW", false},
		{"canceled order", "CANCELED", "CANCELED", false},
		{"filled but not trade exec", OrderStatusFilled, "CALCULATED", false},
		{"trade exec but unfilled status", "NEW", ExecTypeTrade, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FillEvent{OrderStatus: tt.status, ExecType: tt.exec}
			if got := f.Accepted(); got != tt.want {
				t.Errorf("Accepted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSide_Invert(t *testing.T) {
	if SideBuy.Invert() != SideSell {
		t.Error("BUY should invert to SELL")
	}
	if SideSell.Invert() != SideBuy {
		t.Error("SELL should invert to BUY")
	}
}
