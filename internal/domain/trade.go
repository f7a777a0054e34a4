package domain

import (
	"time"
)

// Trade represents a single trade record. A row is an open position while
// ClosedAt is nil; once closed it keeps both the exit price and close time.
// The realized PnL is always derived from the row, never stored.
type Trade struct {
	ID         int64      `json:"id"`
	Symbol     string     `json:"symbol"`
	Side       string     `json:"side"`
	Quantity   float64    `json:"quantity"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	Commission float64    `json:"commission"`
	OpenedAt   time.Time  `json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// Trade side constants ("buy" opens a long, "sell" opens a short)
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// IsOpen reports whether the trade is still an open position.
// ClosedAt is the sole closed indicator.
func (t *Trade) IsOpen() bool {
	return t.ClosedAt == nil
}

// RealizedPnL computes the realized profit or loss for a closed trade.
// Returns 0.0 for open trades or trades missing an exit price. The value
// is recomputed on every call so commission adjustments are always
// reflected.
func (t *Trade) RealizedPnL() float64 {
	if t.ClosedAt == nil || t.ExitPrice == nil {
		return 0.0
	}

	diff := *t.ExitPrice - t.EntryPrice
	if t.Side == SideSell {
		diff = -diff
	}

	return diff*t.Quantity - t.Commission
}
