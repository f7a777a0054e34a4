package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tradewire/internal/domain"
)

// FlexFloat is a float64 that unmarshals from a JSON number or a numeric
// string. Signal sources (TradingView templates in particular) send
// prices both ways.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("invalid numeric value %q", raw)
		}
		*f = FlexFloat(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*f = FlexFloat(value)
	return nil
}

// MissingFieldError reports a required signal field that was absent
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "Missing field: " + e.Field
}

// TradeSignalRequest is the webhook ingress payload
type TradeSignalRequest struct {
	Symbol       string     `json:"symbol"`
	Action       string     `json:"action"`
	Price        *FlexFloat `json:"price"`
	PositionSize *FlexFloat `json:"position_size"`
	Commission   *FlexFloat `json:"commission"`
}

// Validate checks required fields and the action value. Field order
// matters only in that the first missing field is the one reported.
func (r *TradeSignalRequest) Validate() error {
	if r.Symbol == "" {
		return &MissingFieldError{Field: "symbol"}
	}
	if r.Action == "" {
		return &MissingFieldError{Field: "action"}
	}
	if r.Price == nil {
		return &MissingFieldError{Field: "price"}
	}
	if r.PositionSize == nil {
		return &MissingFieldError{Field: "position_size"}
	}

	switch r.Side() {
	case domain.SideBuy, domain.SideSell:
	default:
		return fmt.Errorf("invalid action %q: must be \"buy\" or \"sell\"", r.Action)
	}

	if float64(*r.PositionSize) <= 0 {
		return fmt.Errorf("invalid position_size: must be positive")
	}

	return nil
}

// Side returns the normalized (lowercase) trade side
func (r *TradeSignalRequest) Side() string {
	return strings.ToLower(r.Action)
}

// CommissionValue returns the optional commission, defaulting to 0.0
func (r *TradeSignalRequest) CommissionValue() float64 {
	if r.Commission == nil {
		return 0.0
	}
	return float64(*r.Commission)
}

// TradeHistoryItem mirrors the live stream event shape for persisted
// rows. Action is derived from the close marker; nullable numerics fall
// back to 0.0 rather than null, and price carries the exit price when
// present, the entry price otherwise.
type TradeHistoryItem struct {
	Ts          float64 `json:"ts"`
	TradeID     int64   `json:"trade_id"`
	Action      string  `json:"action"`
	Symbol      string  `json:"symbol"`
	Side        string  `json:"side"`
	Quantity    float64 `json:"quantity"`
	EntryPrice  float64 `json:"entry_price"`
	ExitPrice   float64 `json:"exit_price"`
	Price       float64 `json:"price"`
	Commission  float64 `json:"commission"`
	RealizedPnL float64 `json:"realized_pnl"`
}

// NewTradeHistoryItem builds a history row from a persisted trade
func NewTradeHistoryItem(trade *domain.Trade) TradeHistoryItem {
	action := domain.ActionOpen
	if trade.ClosedAt != nil {
		action = domain.ActionClose
	}

	exitPrice := 0.0
	price := trade.EntryPrice
	if trade.ExitPrice != nil {
		exitPrice = *trade.ExitPrice
		price = *trade.ExitPrice
	}

	return TradeHistoryItem{
		Ts:          float64(trade.OpenedAt.UnixMilli()),
		TradeID:     trade.ID,
		Action:      action,
		Symbol:      trade.Symbol,
		Side:        trade.Side,
		Quantity:    trade.Quantity,
		EntryPrice:  trade.EntryPrice,
		ExitPrice:   exitPrice,
		Price:       price,
		Commission:  trade.Commission,
		RealizedPnL: trade.RealizedPnL(),
	}
}
