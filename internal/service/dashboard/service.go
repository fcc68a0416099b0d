package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"roxat-report/internal/storage"
	"roxat-report/internal/storage/remote"
)

type Rejecter interface {
	Reject(ctx context.Context, id string)
}

// Service runs dashboard operations on behalf of a session. When the order API rejects the
// session's token, the session is rejected and its dashboard dropped before the error returns.
type Service struct {
	log      *slog.Logger
	registry *Registry
	rejecter Rejecter
	opts     Options
}

func NewService(log *slog.Logger, fetcher Fetcher, rejecter Rejecter, opts Options) *Service {
	opts = opts.withDefaults()

	return &Service{
		log:      log,
		registry: NewRegistry(log, fetcher, opts),
		rejecter: rejecter,
		opts:     opts,
	}
}

func (s *Service) Branches() ([]string, string) {
	branches := make([]string, len(s.opts.Branches))
	copy(branches, s.opts.Branches)
	return branches, s.opts.DefaultBranch
}

// View returns the current view, loading the default branch on first open.
func (s *Service) View(ctx context.Context, sess storage.Session) (View, error) {
	const op = "service.dashboard.View"

	d := s.registry.Get(sess)
	if !d.Loaded() {
		if err := s.check(ctx, sess, d.Refresh(ctx)); err != nil {
			return View{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return d.Snapshot(ctx)
}

func (s *Service) Refresh(ctx context.Context, sess storage.Session) (View, error) {
	const op = "service.dashboard.Refresh"

	d := s.registry.Get(sess)
	if err := s.check(ctx, sess, d.Refresh(ctx)); err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	return d.Snapshot(ctx)
}

func (s *Service) SetBranch(ctx context.Context, sess storage.Session, branch string) (View, error) {
	const op = "service.dashboard.SetBranch"

	d := s.registry.Get(sess)
	if err := s.check(ctx, sess, d.SetBranch(ctx, branch)); err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	return d.Snapshot(ctx)
}

func (s *Service) UpdateFilter(ctx context.Context, sess storage.Session, cmd FilterCommand) (View, error) {
	const op = "service.dashboard.UpdateFilter"

	d := s.registry.Get(sess)
	if err := d.UpdateFilter(cmd); err != nil {
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	return d.Snapshot(ctx)
}

func (s *Service) SetCategory(ctx context.Context, sess storage.Session, category string) (View, error) {
	d := s.registry.Get(sess)
	d.SetCategory(category)

	return d.Snapshot(ctx)
}

func (s *Service) BranchSummaries(ctx context.Context, sess storage.Session) ([]BranchSummary, error) {
	const op = "service.dashboard.BranchSummaries"

	d := s.registry.Get(sess)
	summaries, err := d.BranchSummaries(ctx)
	if err := s.check(ctx, sess, err); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return summaries, nil
}

// Close drops the session's dashboard, used on logout.
func (s *Service) Close(id string) {
	s.registry.Drop(id)
}

// Sweep drops dashboards whose sessions have been idle longer than IdleTTL.
func (s *Service) Sweep() int {
	return s.registry.Sweep(s.opts.IdleTTL)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	const op = "service.dashboard.RunSweeper"

	if interval <= 0 || s.opts.IdleTTL <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("неактивные дашборды удалены", slog.String("op", op), slog.Int("count", n))
			}
		}
	}
}

func (s *Service) check(ctx context.Context, sess storage.Session, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, remote.ErrUnauthorized) {
		s.rejecter.Reject(ctx, sess.ID)
		s.registry.Drop(sess.ID)
	}

	return err
}
