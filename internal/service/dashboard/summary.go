package dashboard

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"roxat-report/internal/service/report"
	"roxat-report/internal/storage/remote"
)

// BranchSummary is one branch's summary under the shared filter. Error is set when that
// branch could not be fetched; the other branches are still reported.
type BranchSummary struct {
	Branch  string              `json:"branch"`
	Summary report.SummaryStats `json:"summary"`
	Error   string              `json:"error,omitempty"`
}

// BranchSummaries fetches every configured branch concurrently and aggregates each with the
// dashboard's current filter. A rejected token aborts the whole call.
func (d *Dashboard) BranchSummaries(ctx context.Context) ([]BranchSummary, error) {
	const op = "service.dashboard.BranchSummaries"

	filter := d.Filter()
	current := d.opts.Now()
	out := make([]BranchSummary, len(d.opts.Branches))

	g, gctx := errgroup.WithContext(ctx)
	for i, branch := range d.opts.Branches {
		g.Go(func() error {
			out[i].Branch = branch

			orders, err := d.fetcher.GetBranchOrders(gctx, d.token, branch)
			if err != nil {
				if errors.Is(err, remote.ErrUnauthorized) {
					return err
				}
				out[i].Error = err.Error()
				return nil
			}

			filtered := filter.Apply(orders, current)
			out[i].Summary = report.Aggregate(filtered, len(orders), filter.RangeActive()).Summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
