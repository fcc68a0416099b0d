package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"roxat-report/internal/service/report"
	"roxat-report/internal/storage"
)

var (
	ErrUnknownBranch = errors.New("unknown branch")
	ErrBadFilter     = errors.New("invalid filter command")
)

type Fetcher interface {
	GetBranchOrders(ctx context.Context, token, branch string) ([]storage.Order, error)
}

type Options struct {
	Branches      []string
	DefaultBranch string
	Location      *time.Location
	Debounce      time.Duration
	// IdleTTL drops a session's dashboard after this long without requests; 0 keeps it.
	IdleTTL       time.Duration
	Now           func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.DefaultBranch == "" && len(o.Branches) > 0 {
		o.DefaultBranch = o.Branches[0]
	}
	return o
}

func (o Options) knownBranch(b string) bool {
	for _, known := range o.Branches {
		if known == b {
			return true
		}
	}
	return false
}

const (
	ModeRange  = "range"
	ModeStart  = "start"
	ModeEnd    = "end"
	ModePeriod = "period"
	ModeQuick  = "quick"
)

// FilterCommand is one change of the date filter.
type FilterCommand struct {
	Mode   string     `json:"mode" validate:"required,oneof=range start end period quick"`
	Start  *FilterDate `json:"start_date,omitempty"`
	End    *FilterDate `json:"end_date,omitempty"`
	Period string      `json:"period,omitempty"`
	Quick  string      `json:"quick,omitempty"`
}

// View is what the dashboard shows: the report plus the branch it was computed for.
type View struct {
	Branch string `json:"branch"`
	Loaded bool   `json:"loaded"`
	report.Report
}

// Dashboard is the state of one open dashboard. Inputs change under mu; the report is rebuilt
// off the lock after Debounce, and only the build for the newest generation is published.
type Dashboard struct {
	log     *slog.Logger
	fetcher Fetcher
	token   string
	opts    Options

	mu       sync.Mutex
	branch   string
	orders   []storage.Order
	loaded   bool
	fetchSeq uint64
	filter   report.Filter
	category string

	gen     uint64
	timer   *time.Timer
	view    View
	viewGen uint64
	ready   chan struct{}
	closed  bool
}

func New(log *slog.Logger, fetcher Fetcher, token string, opts Options) *Dashboard {
	opts = opts.withDefaults()

	d := &Dashboard{
		log:     log,
		fetcher: fetcher,
		token:   token,
		opts:    opts,
		branch:  opts.DefaultBranch,
		orders:  []storage.Order{},
		filter:  report.NewFilter(opts.Location),
		ready:   make(chan struct{}),
	}
	d.view = d.build(d.orders, d.filter, d.category, d.branch, false)

	return d
}

func (d *Dashboard) Branch() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.branch
}

func (d *Dashboard) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// Refresh refetches the current branch. On failure the previous orders stay in place.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	branch := d.branch
	d.mu.Unlock()

	return d.fetch(ctx, branch)
}

// SetBranch fetches another branch and switches to it once its orders arrive. If the fetch
// fails the dashboard stays on the previous branch with its data. The category filter is kept.
func (d *Dashboard) SetBranch(ctx context.Context, branch string) error {
	const op = "service.dashboard.SetBranch"

	if !d.opts.knownBranch(branch) {
		return fmt.Errorf("%s: %w: %q", op, ErrUnknownBranch, branch)
	}

	return d.fetch(ctx, branch)
}

func (d *Dashboard) fetch(ctx context.Context, branch string) error {
	const op = "service.dashboard.fetch"

	d.mu.Lock()
	d.fetchSeq++
	seq := d.fetchSeq
	d.mu.Unlock()

	started := d.opts.Now()
	orders, err := d.fetcher.GetBranchOrders(ctx, d.token, branch)

	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != d.fetchSeq || d.closed {
		// ответ на устаревший запрос, актуальные данные принесет более поздний
		return nil
	}

	if err != nil {
		return fmt.Errorf("%s: филиал %s: %w", op, branch, err)
	}

	d.log.Info("заказы загружены",
		slog.String("op", op),
		slog.String("branch", branch),
		slog.Int("orders", len(orders)),
		slog.Duration("took", d.opts.Now().Sub(started)),
	)

	// филиал и его заказы меняются только вместе
	d.branch = branch
	d.orders = orders
	d.loaded = true
	d.schedule()

	return nil
}

// UpdateFilter applies a filter change. An invalid command leaves the filter untouched.
func (d *Dashboard) UpdateFilter(cmd FilterCommand) error {
	const op = "service.dashboard.UpdateFilter"

	d.mu.Lock()
	defer d.mu.Unlock()

	f := d.filter
	var err error

	switch cmd.Mode {
	case ModeRange:
		if cmd.Start == nil || cmd.End == nil {
			return fmt.Errorf("%s: %w: range needs start_date and end_date", op, ErrBadFilter)
		}
		err = f.SetRange(cmd.Start.In(d.opts.Location), cmd.End.In(d.opts.Location))
	case ModeStart:
		if cmd.Start == nil {
			return fmt.Errorf("%s: %w: start_date is missing", op, ErrBadFilter)
		}
		f.SetStart(cmd.Start.In(d.opts.Location))
	case ModeEnd:
		if cmd.End == nil {
			return fmt.Errorf("%s: %w: end_date is missing", op, ErrBadFilter)
		}
		f.SetEnd(cmd.End.In(d.opts.Location))
	case ModePeriod:
		var p report.Period
		p, err = report.ParsePeriod(cmd.Period)
		if err == nil {
			err = f.SetPeriod(p)
		}
	case ModeQuick:
		err = f.Quick(cmd.Quick, d.opts.Now())
	default:
		return fmt.Errorf("%s: %w: unknown mode %q", op, ErrBadFilter, cmd.Mode)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	d.filter = f
	d.schedule()

	return nil
}

func (d *Dashboard) SetCategory(category string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.category = category
	d.schedule()
}

// Filter returns a copy of the current filter.
func (d *Dashboard) Filter() report.Filter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter
}

// Snapshot waits until the newest generation is published and returns it.
func (d *Dashboard) Snapshot(ctx context.Context) (View, error) {
	for {
		d.mu.Lock()
		if d.viewGen == d.gen || d.closed {
			v := d.view
			d.mu.Unlock()
			return v, nil
		}
		ready := d.ready
		d.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return View{}, ctx.Err()
		}
	}
}

func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// schedule must be called with mu held.
func (d *Dashboard) schedule() {
	if d.closed {
		return
	}

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.opts.Debounce, func() { d.recompute(gen) })
}

func (d *Dashboard) recompute(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.closed {
		d.mu.Unlock()
		return
	}
	orders, filter, category, branch, loaded := d.orders, d.filter, d.category, d.branch, d.loaded
	d.mu.Unlock()

	view := d.build(orders, filter, category, branch, loaded)

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.gen {
		return
	}
	d.view = view
	d.viewGen = gen
	close(d.ready)
	d.ready = make(chan struct{})
}

func (d *Dashboard) build(orders []storage.Order, f report.Filter, category, branch string, loaded bool) View {
	return View{
		Branch: branch,
		Loaded: loaded,
		Report: report.Build(orders, f, category, d.opts.Now()),
	}
}
