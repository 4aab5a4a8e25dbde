package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"colljump/internal/application"
	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

// DefaultSettleDelay gives the host view time to finish an async re-render
// after the pane API ran and before the view-layer strategies probe it
const DefaultSettleDelay = 150 * time.Millisecond

// Strategy names, in cascade order
const (
	StrategyURI  = "uri"
	StrategyPane = "pane"
	StrategyView = "view"
	StrategyRow  = "row"
)

// Outcome tags the result of one strategy attempt
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeUnavailable
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return "failed"
	}
}

// Attempt records one strategy attempt
type Attempt struct {
	Strategy string
	Outcome  Outcome
	Err      error
}

// SelectionReport describes a run of the strategy cascade
type SelectionReport struct {
	Target   domain.ResolvedCollection
	URI      string
	Attempts []Attempt
	Winner   string // empty when every strategy failed
}

// Succeeded reports whether some strategy selected the collection
func (r *SelectionReport) Succeeded() bool {
	return r.Winner != ""
}

type strategy struct {
	name   string
	settle bool // wait for the host view before running
	run    func(ctx context.Context, target domain.ResolvedCollection, report *SelectionReport) error
}

// SelectionDriver makes the host visibly select a collection by trying an
// ordered list of capability-guarded strategies until one succeeds
type SelectionDriver struct {
	host       ports.Host
	logger     *log.Logger
	settle     time.Duration
	strategies []strategy
}

// DriverOption configures a SelectionDriver
type DriverOption func(*SelectionDriver)

// WithSettleDelay overrides DefaultSettleDelay
func WithSettleDelay(d time.Duration) DriverOption {
	return func(s *SelectionDriver) { s.settle = d }
}

// NewSelectionDriver creates a driver for the given host capabilities
func NewSelectionDriver(host ports.Host, logger *log.Logger, opts ...DriverOption) *SelectionDriver {
	d := &SelectionDriver{
		host:   host,
		logger: logging.OrDiscard(logger),
		settle: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.strategies = []strategy{
		{name: StrategyURI, run: d.viaURI},
		{name: StrategyPane, run: d.viaPane},
		{name: StrategyView, run: d.viaView, settle: true},
		{name: StrategyRow, run: d.viaRow},
	}
	return d
}

// Select runs the cascade. It returns ErrAllStrategiesFailed when nothing
// worked; the report lists every attempt either way.
func (d *SelectionDriver) Select(ctx context.Context, target domain.ResolvedCollection) (*SelectionReport, error) {
	report := &SelectionReport{Target: target}
	settled := false

	for _, s := range d.strategies {
		if s.settle && !settled {
			settled = true
			if err := sleep(ctx, d.settle); err != nil {
				d.logger.Warn("selection interrupted", "collection", target.CollectionID(), "err", err)
				return report, fmt.Errorf("%w: %w", application.ErrAllStrategiesFailed, err)
			}
		}

		err := guard(func() error { return s.run(ctx, target, report) })
		attempt := Attempt{Strategy: s.name, Outcome: OutcomeSuccess}
		switch {
		case err == nil:
		case errors.Is(err, application.ErrStrategyUnavailable):
			attempt.Outcome = OutcomeUnavailable
			attempt.Err = err
		default:
			attempt.Outcome = OutcomeFailed
			attempt.Err = &application.StrategyError{Strategy: s.name, Err: err}
		}
		report.Attempts = append(report.Attempts, attempt)

		if attempt.Outcome == OutcomeSuccess {
			report.Winner = s.name
			d.logger.Info("collection selected", "strategy", s.name,
				"collection", target.CollectionID(), "library", target.LibraryID(), "key", target.Key())
			return report, nil
		}
		d.logger.Debug("strategy did not select", "strategy", s.name, "outcome", attempt.Outcome, "err", attempt.Err)
	}

	d.logger.Error("all selection strategies failed", "collection", target.CollectionID(), "attempts", len(report.Attempts))
	return report, application.ErrAllStrategiesFailed
}

// viaURI builds the deep link and hands it to the host's router, falling
// back to a generic URL launch
func (d *SelectionDriver) viaURI(ctx context.Context, target domain.ResolvedCollection, report *SelectionReport) error {
	uri, err := domain.SelectURI(target)
	if err != nil {
		return err
	}
	report.URI = uri

	switch {
	case d.host.URISelector != nil:
		d.logger.Debug("selecting via URI", "uri", uri)
		return d.host.URISelector.SelectURI(ctx, uri)
	case d.host.URLLauncher != nil:
		d.logger.Debug("launching URI", "uri", uri)
		return d.host.URLLauncher.LaunchURL(ctx, uri)
	default:
		return application.ErrStrategyUnavailable
	}
}

// viaPane switches the active library and asks the pane to select directly
func (d *SelectionDriver) viaPane(ctx context.Context, target domain.ResolvedCollection, _ *SelectionReport) error {
	pane := d.host.Pane
	if pane == nil {
		return application.ErrStrategyUnavailable
	}
	if err := pane.SwitchLibrary(ctx, target.LibraryID()); err != nil {
		return fmt.Errorf("switch library %d: %w", target.LibraryID(), err)
	}
	return pane.SelectCollection(ctx, target.CollectionID())
}

// viaView selects through the tree view and synthesizes a select event
func (d *SelectionDriver) viaView(ctx context.Context, target domain.ResolvedCollection, _ *SelectionReport) error {
	view := d.host.View
	if view == nil {
		return application.ErrStrategyUnavailable
	}
	if err := view.SelectByID(ctx, target.CollectionID()); err != nil {
		return err
	}
	if err := verifySelected(view, target.CollectionID()); err != nil {
		return err
	}
	return view.DispatchSelect(ctx)
}

// viaRow expands to the collection and selects its visible row directly
func (d *SelectionDriver) viaRow(ctx context.Context, target domain.ResolvedCollection, _ *SelectionReport) error {
	view := d.host.View
	if view == nil {
		return application.ErrStrategyUnavailable
	}
	id := target.CollectionID()
	if err := view.ExpandToID(ctx, id); err != nil {
		return fmt.Errorf("expand to %d: %w", id, err)
	}
	row, ok := view.RowIndexByID(id)
	if !ok || row < 0 {
		return fmt.Errorf("no visible row for collection %d", id)
	}
	if err := view.SelectRow(ctx, row); err != nil {
		return fmt.Errorf("select row %d: %w", row, err)
	}
	view.EnsureRowVisible(row)
	if err := verifySelected(view, id); err != nil {
		return err
	}
	return view.DispatchSelect(ctx)
}

func verifySelected(view ports.TreeView, want int64) error {
	got, ok := view.SelectedID()
	if !ok {
		return errors.New("view reports no selection")
	}
	if got != want {
		return fmt.Errorf("view selected %d, want %d", got, want)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
