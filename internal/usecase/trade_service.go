package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"tradewire/internal/domain"
)

// Broadcaster delivers a trade event to all live stream subscribers
type Broadcaster interface {
	Publish(event domain.TradeEvent)
}

// Signal is a validated trading signal ready for reconciliation
type Signal struct {
	Symbol     string
	Side       string // domain.SideBuy or domain.SideSell
	Price      float64
	Quantity   float64
	Commission float64
}

// Reconcile outcomes
const (
	ResultOpen    = domain.ActionOpen
	ResultClose   = domain.ActionClose
	ResultIgnored = "ignored"
)

// Result describes what a signal did to position state. For CLOSE it
// references the now-closed original trade, not the closing-log record.
type Result struct {
	Action string
	Trade  *domain.Trade
}

// TradeService reconciles incoming signals against per-symbol position
// state, persists the outcome and broadcasts the resulting event.
type TradeService struct {
	repo        domain.TradeRepository
	broadcaster Broadcaster

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTradeService creates a new TradeService
func NewTradeService(repo domain.TradeRepository, broadcaster Broadcaster) *TradeService {
	return &TradeService{
		repo:        repo,
		broadcaster: broadcaster,
		locks:       make(map[string]*sync.Mutex),
	}
}

// ProcessSignal reconciles one signal. Exactly one of three things
// happens: a new position opens, the signal is ignored (same direction
// already open), or the open position closes and a closing-log row is
// recorded. An event is published for open and close only, and only after
// every store write succeeded.
//
// Reconciles for the same symbol are serialized; different symbols
// proceed in parallel.
func (s *TradeService) ProcessSignal(ctx context.Context, sig Signal) (*Result, error) {
	lock := s.symbolLock(sig.Symbol)
	lock.Lock()
	defer lock.Unlock()

	open, err := s.repo.FindOpenBySymbol(ctx, sig.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up open trade for %s: %w", sig.Symbol, err)
	}
	if len(open) > 1 {
		// Invariant violation. Fatal to this call, never resolved by
		// silently picking a row.
		return nil, &domain.ConsistencyError{Symbol: sig.Symbol, Count: len(open)}
	}

	now := time.Now().UTC()

	if len(open) == 0 {
		trade := &domain.Trade{
			Symbol:     sig.Symbol,
			Side:       sig.Side,
			Quantity:   sig.Quantity,
			EntryPrice: sig.Price,
			Commission: sig.Commission,
			OpenedAt:   now,
		}
		if err := s.repo.Save(ctx, trade); err != nil {
			return nil, fmt.Errorf("failed to open trade for %s: %w", sig.Symbol, err)
		}

		log.Printf("[INFO] Opened trade %d: %s %s qty=%g @ %g", trade.ID, trade.Symbol, trade.Side, trade.Quantity, trade.EntryPrice)
		s.broadcaster.Publish(domain.NewTradeEvent(trade, domain.ActionOpen, time.Now().UTC()))
		return &Result{Action: ResultOpen, Trade: trade}, nil
	}

	current := open[0]
	if current.Side == sig.Side {
		// Same direction already open: no state change, no event.
		return &Result{Action: ResultIgnored, Trade: current}, nil
	}

	// Opposite direction: close the open position.
	exitPrice := sig.Price
	closedAt := now
	current.ExitPrice = &exitPrice
	current.ClosedAt = &closedAt
	current.Commission += sig.Commission
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to close trade %d: %w", current.ID, err)
	}

	// Record the closing signal itself as a separate trade row. It is
	// persisted already closed (exit = entry, zero commission, PnL 0) so
	// the next open-trade lookup for this symbol can never mistake it
	// for an open position.
	logExit := sig.Price
	logClosed := now
	closingLog := &domain.Trade{
		Symbol:     sig.Symbol,
		Side:       sig.Side,
		Quantity:   sig.Quantity,
		EntryPrice: sig.Price,
		ExitPrice:  &logExit,
		Commission: 0.0,
		OpenedAt:   now,
		ClosedAt:   &logClosed,
	}
	if err := s.repo.Save(ctx, closingLog); err != nil {
		return nil, fmt.Errorf("failed to record closing signal for %s: %w", sig.Symbol, err)
	}

	log.Printf("[INFO] Closed trade %d: %s %s pnl=%.8g", current.ID, current.Symbol, current.Side, current.RealizedPnL())
	s.broadcaster.Publish(domain.NewTradeEvent(current, domain.ActionClose, time.Now().UTC()))
	return &Result{Action: ResultClose, Trade: current}, nil
}

// History retrieves every persisted trade in store enumeration order
func (s *TradeService) History(ctx context.Context) ([]*domain.Trade, error) {
	return s.repo.GetAll(ctx)
}

// symbolLock returns the mutex serializing reconciles for a symbol
func (s *TradeService) symbolLock(symbol string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[symbol] = lock
	}
	return lock
}
