package affiliate

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/linkforge/linkforge/internal/catalog"
)

// SearchResult is the merged output of a multi-network search. Products are
// concatenated in provider declaration order, not completion order; Counts
// reports per-provider result sizes, with 0 for a failed provider.
type SearchResult struct {
	Products []catalog.Product `json:"products"`
	Counts   map[string]int    `json:"counts"`
}

// Aggregator fans a query out to every configured provider concurrently and
// merges whatever comes back. One provider failing never fails the batch.
type Aggregator struct {
	providers []ProviderClient
	logger    *slog.Logger
}

// NewAggregator wires the aggregator with an explicit provider list; merge
// order follows this list.
func NewAggregator(providers []ProviderClient, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{providers: providers, logger: logger}
}

// Providers exposes the configured clients, e.g. for connection tests.
func (a *Aggregator) Providers() []ProviderClient {
	return a.providers
}

// SearchAll queries every provider concurrently and waits for all of them to
// settle. Individual failures are logged, counted as zero and excluded from
// the merge; no error escapes to the caller.
func (a *Aggregator) SearchAll(ctx context.Context, query SearchQuery) SearchResult {
	results := make([][]catalog.Product, len(a.providers))

	var g errgroup.Group
	for i, provider := range a.providers {
		i, provider := i, provider
		g.Go(func() error {
			products, err := provider.Search(ctx, query)
			if err != nil {
				a.logger.Warn("provider search failed",
					slog.String("provider", provider.Name()),
					slog.Any("error", err))
				return nil
			}
			results[i] = products
			return nil
		})
	}
	_ = g.Wait()

	merged := SearchResult{Counts: make(map[string]int, len(a.providers))}
	for i, provider := range a.providers {
		merged.Counts[provider.Name()] = len(results[i])
		merged.Products = append(merged.Products, results[i]...)
	}
	return merged
}

// AllCommissions gathers commission events from every provider over the
// trailing window and sums them into one summary. Whether a status counts as
// confirmed is each provider's own rule.
func (a *Aggregator) AllCommissions(ctx context.Context, days int) CommissionSummary {
	results := make([][]Commission, len(a.providers))

	var g errgroup.Group
	for i, provider := range a.providers {
		i, provider := i, provider
		g.Go(func() error {
			commissions, err := provider.Commissions(ctx, days)
			if err != nil {
				a.logger.Warn("provider commissions failed",
					slog.String("provider", provider.Name()),
					slog.Any("error", err))
				return nil
			}
			results[i] = commissions
			return nil
		})
	}
	_ = g.Wait()

	summary := CommissionSummary{NetworkBreakdown: make(map[string]int, len(a.providers))}
	for i, provider := range a.providers {
		summary.NetworkBreakdown[provider.Name()] = len(results[i])
		for _, commission := range results[i] {
			summary.Commissions = append(summary.Commissions, commission)
			summary.TotalEarnings += commission.Amount
			if provider.Confirmed(commission.Status) {
				summary.ConfirmedEarnings += commission.Amount
			} else {
				summary.PendingEarnings += commission.Amount
			}
		}
	}
	summary.CommissionCount = len(summary.Commissions)
	return summary
}
