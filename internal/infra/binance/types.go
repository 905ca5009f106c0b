package binance

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
)

// Futures user-data stream event tags.
const (
	eventAccountUpdate    = "ACCOUNT_UPDATE"
	eventOrderTradeUpdate = "ORDER_TRADE_UPDATE"
)

// userDataFrame is the raw envelope of one user-data stream message.
// Numeric fields arrive as strings; they are parsed into decimals exactly
// once, here at the boundary.
type userDataFrame struct {
	EventType string             `json:"e"`
	Account   *accountUpdateData `json:"a"`
	Order     *orderTradeData    `json:"o"`
}

type accountUpdateData struct {
	Positions []wsPosition `json:"P"`
}

type wsPosition struct {
	Symbol      string `json:"s"`
	PositionAmt string `json:"pa"`
	EntryPrice  string `json:"ep"`
}

type orderTradeData struct {
	Symbol        string `json:"s"`
	Side          string `json:"S"`
	OrderStatus   string `json:"X"`
	ExecType      string `json:"x"`
	LastFilledQty string `json:"l"`
	AvgPrice      string `json:"ap"`
	RealizedPnl   string `json:"rp"`
	Commission    string `json:"n"`
	ReduceOnly    bool   `json:"R"`
}

// RecordKind routes a decoded feed record.
type RecordKind int

const (
	KindIgnored RecordKind = iota
	KindBalanceUpdate
	KindOrderTrade
)

// FeedRecord is one classified feed message.
type FeedRecord struct {
	Kind      RecordKind
	Positions []domain.PositionSnapshot
	Fill      domain.FillEvent
}

// DecodeFeedRecord classifies one raw frame by its event tag. Unknown or
// absent tags are ignored, not errors; order updates that are not actual
// trade executions (acceptance, cancellation noise) are ignored too.
func DecodeFeedRecord(msg []byte) FeedRecord {
	var frame userDataFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		return FeedRecord{Kind: KindIgnored}
	}

	switch frame.EventType {
	case eventAccountUpdate:
		if frame.Account == nil {
			return FeedRecord{Kind: KindIgnored}
		}
		positions := make([]domain.PositionSnapshot, 0, len(frame.Account.Positions))
		for _, p := range frame.Account.Positions {
			positions = append(positions, domain.PositionSnapshot{
				Symbol:     p.Symbol,
				Amount:     dec(p.PositionAmt),
				EntryPrice: dec(p.EntryPrice),
			})
		}
		return FeedRecord{Kind: KindBalanceUpdate, Positions: positions}

	case eventOrderTradeUpdate:
		if frame.Order == nil {
			return FeedRecord{Kind: KindIgnored}
		}
		fill := domain.FillEvent{
			Symbol:      frame.Order.Symbol,
			Side:        domain.Side(frame.Order.Side),
			Quantity:    dec(frame.Order.LastFilledQty),
			AvgPrice:    dec(frame.Order.AvgPrice),
			RealizedPnl: dec(frame.Order.RealizedPnl),
			Fee:         dec(frame.Order.Commission),
			ReduceOnly:  frame.Order.ReduceOnly,
			OrderStatus: frame.Order.OrderStatus,
			ExecType:    frame.Order.ExecType,
		}
		if !fill.Accepted() {
			return FeedRecord{Kind: KindIgnored}
		}
		return FeedRecord{Kind: KindOrderTrade, Fill: fill}

	default:
		return FeedRecord{Kind: KindIgnored}
	}
}

// dec parses an exchange numeric string. Malformed or missing values default
// to zero rather than failing the enclosing event.
func dec(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
