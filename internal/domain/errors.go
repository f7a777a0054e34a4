package domain

import "fmt"

// ConsistencyError reports that more than one open trade was found for a
// symbol. This violates the one-open-trade-per-symbol invariant and is
// fatal to the reconcile call that observed it; it must never be resolved
// by silently picking one of the rows.
type ConsistencyError struct {
	Symbol string
	Count  int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation: %d open trades found for symbol %s, expected at most 1", e.Count, e.Symbol)
}
