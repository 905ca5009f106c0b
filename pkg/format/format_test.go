package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		places int32
		want   string
	}{
		{"strips trailing zeros", "10.50000000", 8, "10.5"},
		{"truncates not rounds", "10.123456789", 8, "10.12345678"},
		{"integer stays integer", "42", 8, "42"},
		{"thousands separator", "1234567.25", 8, "1,234,567.25"},
		{"small fraction", "0.00001", 8, "0.00001"},
		{"negative", "-1234.5", 8, "-1,234.5"},
		{"zero", "0", 8, "0"},
		{"two places", "50123.129999", 2, "50,123.12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decimal(d(tt.in), tt.places); got != tt.want {
				t.Errorf("Decimal(%s, %d) = %s, want %s", tt.in, tt.places, got, tt.want)
			}
		})
	}
}

func TestPrice(t *testing.T) {
	t.Run("major pair uses 2 places", func(t *testing.T) {
		if got := Price(d("65432.123456"), "BTCUSDT"); got != "65,432.12" {
			t.Errorf("Price BTCUSDT = %s", got)
		}
	})

	t.Run("alt keeps full precision", func(t *testing.T) {
		if got := Price(d("0.00012345"), "PEPEUSDT"); got != "0.00012345" {
			t.Errorf("Price PEPEUSDT = %s", got)
		}
	})
}

func TestUSD(t *testing.T) {
	if got := USD(d("50")); got != "$50" {
		t.Errorf("USD(50) = %s", got)
	}
	if got := USD(d("-12.345")); got != "$-12.34" {
		t.Errorf("USD(-12.345) = %s", got)
	}
}
