package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradewire/internal/domain"
)

// TradeRepositoryImpl implements the TradeRepository interface
type TradeRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *pgxpool.Pool) domain.TradeRepository {
	return &TradeRepositoryImpl{db: db}
}

// Save persists a new trade and assigns its store-generated ID
func (r *TradeRepositoryImpl) Save(ctx context.Context, trade *domain.Trade) error {
	query := `
		INSERT INTO trades (
			symbol, side, quantity, entry_price, exit_price,
			commission, opened_at, closed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		trade.Symbol,
		trade.Side,
		trade.Quantity,
		trade.EntryPrice,
		trade.ExitPrice,
		trade.Commission,
		trade.OpenedAt,
		trade.ClosedAt,
	).Scan(&trade.ID)

	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}

	return nil
}

// FindOpenBySymbol retrieves every open trade for a symbol
func (r *TradeRepositoryImpl) FindOpenBySymbol(ctx context.Context, symbol string) ([]*domain.Trade, error) {
	query := `
		SELECT id, symbol, side, quantity, entry_price, exit_price,
		       commission, opened_at, closed_at
		FROM trades
		WHERE symbol = $1 AND closed_at IS NULL
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query open trades for %s: %w", symbol, err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// Update persists exit price, commission and closed time for a trade
func (r *TradeRepositoryImpl) Update(ctx context.Context, trade *domain.Trade) error {
	query := `
		UPDATE trades
		SET exit_price = $1,
		    commission = $2,
		    closed_at = $3
		WHERE id = $4
	`

	_, err := r.db.Exec(ctx, query,
		trade.ExitPrice,
		trade.Commission,
		trade.ClosedAt,
		trade.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update trade %d: %w", trade.ID, err)
	}

	return nil
}

// ListOpen retrieves all open trades across all symbols
func (r *TradeRepositoryImpl) ListOpen(ctx context.Context) ([]*domain.Trade, error) {
	query := `
		SELECT id, symbol, side, quantity, entry_price, exit_price,
		       commission, opened_at, closed_at
		FROM trades
		WHERE closed_at IS NULL
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query open trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetAll retrieves every persisted trade in insertion order
func (r *TradeRepositoryImpl) GetAll(ctx context.Context) ([]*domain.Trade, error) {
	query := `
		SELECT id, symbol, side, quantity, entry_price, exit_price,
		       commission, opened_at, closed_at
		FROM trades
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// scanTrades collects trade rows from a result set
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	for rows.Next() {
		trade := &domain.Trade{}
		err := rows.Scan(
			&trade.ID,
			&trade.Symbol,
			&trade.Side,
			&trade.Quantity,
			&trade.EntryPrice,
			&trade.ExitPrice,
			&trade.Commission,
			&trade.OpenedAt,
			&trade.ClosedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}
