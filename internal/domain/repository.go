package domain

import (
	"context"
)

// TradeRepository defines the interface for trade persistence operations
type TradeRepository interface {
	// Save persists a new trade and assigns its store-generated ID
	Save(ctx context.Context, trade *Trade) error

	// FindOpenBySymbol retrieves every open trade (closed_at unset) for a
	// symbol. The reconciler expects at most one row; returning the full
	// set lets it detect invariant violations instead of silently picking
	// one.
	FindOpenBySymbol(ctx context.Context, symbol string) ([]*Trade, error)

	// Update persists the mutable fields of an existing trade
	// (exit price, commission, closed time)
	Update(ctx context.Context, trade *Trade) error

	// ListOpen retrieves all open trades across all symbols
	ListOpen(ctx context.Context) ([]*Trade, error)

	// GetAll retrieves every persisted trade in store enumeration order
	GetAll(ctx context.Context) ([]*Trade, error)
}
