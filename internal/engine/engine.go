// Package engine orchestrates the full pipeline: fetch task titles,
// normalize, resolve against the catalog, reconcile the store cart, and
// clean up the task list afterwards.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/donaldgifford/grocery-autopilot/internal/cart"
	"github.com/donaldgifford/grocery-autopilot/internal/catalog"
	"github.com/donaldgifford/grocery-autopilot/internal/config"
	"github.com/donaldgifford/grocery-autopilot/internal/gtasks"
	"github.com/donaldgifford/grocery-autopilot/internal/hyvee"
	"github.com/donaldgifford/grocery-autopilot/internal/metrics"
	"github.com/donaldgifford/grocery-autopilot/internal/notify"
	"github.com/donaldgifford/grocery-autopilot/internal/resolver"
	"github.com/donaldgifford/grocery-autopilot/internal/unavailable"
	"github.com/donaldgifford/grocery-autopilot/pkg/normalize"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

// StoreOpener opens a store session for one run. The returned close
// function always runs, success or not.
type StoreOpener func(ctx context.Context) (cart.Capability, func() error, error)

// Engine wires the pipeline stages together with injected dependencies.
type Engine struct {
	cfg       *config.Config
	catalog   *catalog.Store
	tasks     gtasks.Source
	openStore StoreOpener
	notifier  notify.Notifier
	unavail   *unavailable.Log
	log       *slog.Logger
	nowFunc   func() time.Time
	searchURL func(query string) string
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(e *Engine) {
		e.nowFunc = f
	}
}

// WithSearchURLFunc overrides the manual-search URL builder for testing.
func WithSearchURLFunc(f func(query string) string) Option {
	return func(e *Engine) {
		e.searchURL = f
	}
}

// New creates an Engine with injected dependencies.
func New(
	cfg *config.Config,
	cat *catalog.Store,
	tasks gtasks.Source,
	openStore StoreOpener,
	notifier notify.Notifier,
	unavail *unavailable.Log,
	opts ...Option,
) *Engine {
	e := &Engine{
		cfg:       cfg,
		catalog:   cat,
		tasks:     tasks,
		openStore: openStore,
		notifier:  notifier,
		unavail:   unavail,
		log:       slog.Default(),
		nowFunc:   time.Now,
		searchURL: hyvee.BuildSearchURL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOptions controls one pipeline run.
type RunOptions struct {
	// DryRun stops after resolution: no browser, no cart changes, no
	// task completion.
	DryRun bool

	// IgnoreUnavailable keeps going past items the store cannot supply.
	IgnoreUnavailable bool

	// IgnoreUnmapped drops items with no catalog mapping instead of
	// halting. Dropped items stay open on the task list.
	IgnoreUnmapped bool
}

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	// Planned is every resolved target in processing order.
	Planned []domain.TargetItem

	// Report is nil for dry runs.
	Report *domain.RunReport

	// TasksCompleted is how many task titles were marked complete.
	TasksCompleted int
}

// Run executes the pipeline. Any unmapped item halts the run before the
// browser starts; partial cart writes for an ambiguous list are worse
// than no writes.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	start := e.nowFunc()
	outcome := "failed"
	defer func() {
		metrics.RunsTotal.WithLabelValues(outcome).Inc()
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	targets, titlesByItem, err := e.resolveList(ctx, opts.IgnoreUnmapped)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Planned: targets}

	if opts.DryRun {
		e.log.Info("dry run complete, all items mapped",
			"list", e.cfg.Tasks.ListName,
			"targets", len(targets),
		)
		outcome = "dry_run"
		return result, nil
	}

	if len(targets) == 0 {
		e.log.Info("task list is empty, nothing to reconcile",
			"list", e.cfg.Tasks.ListName,
		)
		outcome = "ok"
		return result, nil
	}

	report, err := e.reconcile(ctx, targets, opts)
	result.Report = report
	if err != nil {
		e.notifyRun(ctx, report)
		return result, err
	}

	if e.cfg.Tasks.MarkComplete {
		completed, err := e.completeTasks(ctx, report, titlesByItem)
		if err != nil {
			// The cart is correct; losing the checkmark is recoverable
			// by hand.
			e.log.Warn("marking tasks complete failed", "error", err)
		}
		result.TasksCompleted = completed
	}

	e.notifyRun(ctx, report)
	outcome = "ok"
	return result, nil
}

// resolveList fetches, normalizes, and resolves the task list. The
// returned map carries every raw title that fed each normalized item, so
// merged duplicates complete together.
func (e *Engine) resolveList(ctx context.Context, ignoreUnmapped bool) ([]domain.TargetItem, map[string][]string, error) {
	titles, err := e.tasks.FetchOpenTitles(ctx, e.cfg.Tasks.ListName)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching task list %q: %w", e.cfg.Tasks.ListName, err)
	}
	e.log.Info("task list fetched",
		"list", e.cfg.Tasks.ListName,
		"titles", len(titles),
	)

	items := normalize.Items(titles)
	titlesByItem := make(map[string][]string, len(items))
	for _, item := range items {
		key := domain.NormalizeKey(item.Normalized)
		titlesByItem[key] = append(titlesByItem[key], item.Original)
	}
	merged := normalize.SumQuantities(items)

	doc, err := e.catalog.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}

	mapped, unmapped := resolver.Resolve(merged, doc)
	metrics.ItemsResolvedTotal.Add(float64(len(mapped)))
	metrics.ItemsUnmappedTotal.Add(float64(len(unmapped)))

	if len(unmapped) > 0 {
		for _, item := range unmapped {
			suggestions := resolver.Suggest(
				item.Normalized, doc,
				e.cfg.Resolver.TopN, e.cfg.Resolver.MinSimilarity,
			)
			names := make([]string, 0, len(suggestions))
			for _, s := range suggestions {
				names = append(names, s.Product.CanonicalKey)
			}
			if ignoreUnmapped {
				e.log.Warn("skipping unmapped item",
					"item", item.Original,
					"suggestions", names,
				)
			} else {
				e.log.Error("unmapped item blocks the run",
					"item", item.Original,
					"suggestions", names,
				)
			}
		}
		if !ignoreUnmapped {
			first := unmapped[0]
			return nil, nil, domain.UnknownItemError(
				first.Original,
				e.searchURL(first.Normalized),
				e.cfg.Tasks.ListName,
				e.cfg.Tasks.MoveToList,
			)
		}
	}

	targets := make([]domain.TargetItem, 0, len(mapped))
	for _, res := range mapped {
		targets = append(targets, domain.TargetItem{
			Text:     res.Item.Normalized,
			Product:  res.Product,
			Quantity: res.Item.Quantity,
		})
	}
	return targets, titlesByItem, nil
}

func (e *Engine) reconcile(
	ctx context.Context,
	targets []domain.TargetItem,
	opts RunOptions,
) (*domain.RunReport, error) {
	store, closeStore, err := e.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeStore(); err != nil {
			e.log.Warn("closing store session", "error", err)
		}
	}()

	authed, err := store.IsAuthenticated(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking store session: %w", err)
	}
	if !authed {
		creds := cart.Credentials{
			Email:    e.cfg.Store.Email,
			Password: e.cfg.Store.Password,
		}
		if err := store.Login(ctx, creds); err != nil {
			return nil, err
		}
	}

	rec := cart.NewReconciler(
		store,
		cart.WithLogger(e.log),
		cart.WithMaxAttempts(e.cfg.Reconciler.MaxAttempts),
		cart.WithUnavailabilityLog(e.unavail),
		cart.WithSearchURL(e.searchURL),
		cart.WithNowFunc(e.nowFunc),
	)

	return rec.Reconcile(ctx, targets, cart.ReconcileOptions{
		IgnoreUnavailable: opts.IgnoreUnavailable || e.cfg.Reconciler.IgnoreUnavailable,
	})
}

// completeTasks marks every task title behind a fulfilled target (added
// or already in the cart) as complete.
func (e *Engine) completeTasks(
	ctx context.Context,
	report *domain.RunReport,
	titlesByItem map[string][]string,
) (int, error) {
	var titles []string
	for _, item := range report.AddedItems {
		titles = append(titles, titlesByItem[domain.NormalizeKey(item)]...)
	}
	for _, item := range report.SkippedItems {
		titles = append(titles, titlesByItem[domain.NormalizeKey(item)]...)
	}
	if len(titles) == 0 {
		return 0, nil
	}

	completed, err := e.tasks.MarkComplete(ctx, e.cfg.Tasks.ListName, titles)
	if err != nil {
		return completed, err
	}
	e.log.Info("tasks marked complete",
		"list", e.cfg.Tasks.ListName,
		"count", completed,
	)
	return completed, nil
}

func (e *Engine) notifyRun(ctx context.Context, report *domain.RunReport) {
	if report == nil {
		return
	}
	payload := &notify.RunPayload{
		ListName: e.cfg.Tasks.ListName,
		Report:   *report,
	}
	if err := e.notifier.SendRunSummary(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		e.log.Warn("run summary notification failed", "error", err)
	}
}

// MoveItems relocates task titles to the configured non-grocery list.
func (e *Engine) MoveItems(ctx context.Context, toList string, items []string) (int, error) {
	if toList == "" {
		toList = e.cfg.Tasks.MoveToList
	}
	moved, err := e.tasks.Move(ctx, e.cfg.Tasks.ListName, toList, items)
	if err != nil {
		return moved, fmt.Errorf("moving items to %q: %w", toList, err)
	}
	e.log.Info("items moved",
		"from", e.cfg.Tasks.ListName,
		"to", toList,
		"count", moved,
	)
	return moved, nil
}

// VerifyMappings reports which current task titles resolve and which do
// not, without touching the store.
func (e *Engine) VerifyMappings(ctx context.Context) (mapped, unmapped []string, err error) {
	titles, err := e.tasks.FetchOpenTitles(ctx, e.cfg.Tasks.ListName)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching task list %q: %w", e.cfg.Tasks.ListName, err)
	}

	texts := make([]string, 0, len(titles))
	for _, item := range normalize.Items(titles) {
		texts = append(texts, item.Normalized)
	}
	return e.catalog.VerifyAllMapped(texts)
}
