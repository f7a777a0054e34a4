package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"tradewire/internal/domain"
)

// SummaryService periodically audits the trade book and logs open
// position counts and realized PnL totals. PnL is recomputed from the
// rows on every run, never cached, so commission adjustments are always
// reflected.
type SummaryService struct {
	repo domain.TradeRepository
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(repo domain.TradeRepository) *SummaryService {
	return &SummaryService{repo: repo}
}

// LogSummary computes and logs the current book summary
func (s *SummaryService) LogSummary(ctx context.Context) error {
	trades, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load trades for summary: %w", err)
	}

	if len(trades) == 0 {
		log.Println("[INFO] Summary: no trades recorded yet")
		return nil
	}

	openCount := 0
	closedCount := 0
	total := 0.0
	bySymbol := make(map[string]float64)

	for _, trade := range trades {
		if trade.IsOpen() {
			openCount++
			continue
		}
		closedCount++
		pnl := trade.RealizedPnL()
		total += pnl
		bySymbol[trade.Symbol] += pnl
	}

	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	log.Printf("[INFO] Summary: %d open, %d closed, realized PnL %.4f", openCount, closedCount, total)
	for _, symbol := range symbols {
		log.Printf("[INFO]   %s: realized PnL %.4f", symbol, bySymbol[symbol])
	}

	return nil
}
