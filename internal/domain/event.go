package domain

import "time"

// Trade event actions
const (
	ActionOpen  = "open"
	ActionClose = "close"
)

// TradeEvent is the payload broadcast to live stream subscribers whenever
// a trade is opened or closed.
type TradeEvent struct {
	Ts          float64  `json:"ts"` // capture time, ms since epoch
	TradeID     int64    `json:"trade_id"`
	Action      string   `json:"action"`
	Symbol      string   `json:"symbol"`
	Side        string   `json:"side"`
	Quantity    float64  `json:"quantity"`
	EntryPrice  float64  `json:"entry_price"`
	ExitPrice   *float64 `json:"exit_price"`
	Commission  float64  `json:"commission"`
	RealizedPnL float64  `json:"realized_pnl"`
}

// NewTradeEvent builds the event payload for a trade state change. The
// timestamp is the capture time, independent of the trade's OpenedAt.
func NewTradeEvent(trade *Trade, action string, capturedAt time.Time) TradeEvent {
	return TradeEvent{
		Ts:          float64(capturedAt.UnixMilli()),
		TradeID:     trade.ID,
		Action:      action,
		Symbol:      trade.Symbol,
		Side:        trade.Side,
		Quantity:    trade.Quantity,
		EntryPrice:  trade.EntryPrice,
		ExitPrice:   trade.ExitPrice,
		Commission:  trade.Commission,
		RealizedPnL: trade.RealizedPnL(),
	}
}
