package cart

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/donaldgifford/grocery-autopilot/internal/metrics"
	"github.com/donaldgifford/grocery-autopilot/internal/unavailable"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

const defaultMaxAttempts = 2

// Reconciler synchronizes a resolved target list against the live cart.
// Re-running it with an unchanged target list against an already
// satisfied cart performs zero mutating actions.
type Reconciler struct {
	cart        Capability
	unavailLog  *unavailable.Log
	log         *slog.Logger
	maxAttempts int
	searchURL   func(query string) string
	nowFunc     func() time.Time
}

// ReconcilerOption configures the Reconciler.
type ReconcilerOption func(*Reconciler)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.log = l
	}
}

// WithMaxAttempts bounds the add-then-verify cycle per item.
func WithMaxAttempts(n int) ReconcilerOption {
	return func(r *Reconciler) {
		r.maxAttempts = n
	}
}

// WithUnavailabilityLog records failed items for human follow-up.
func WithUnavailabilityLog(l *unavailable.Log) ReconcilerOption {
	return func(r *Reconciler) {
		r.unavailLog = l
	}
}

// WithSearchURL sets the builder for manual-search fallback links.
func WithSearchURL(f func(query string) string) ReconcilerOption {
	return func(r *Reconciler) {
		r.searchURL = f
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.nowFunc = f
	}
}

// NewReconciler creates a Reconciler over the given cart capability.
func NewReconciler(cart Capability, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		cart:        cart,
		log:         slog.Default(),
		maxAttempts: defaultMaxAttempts,
		searchURL:   func(string) string { return "" },
		nowFunc:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReconcileOptions adjusts a single reconciliation run.
type ReconcileOptions struct {
	// IgnoreUnavailable downgrades per-item failures to warnings
	// instead of aborting the run.
	IgnoreUnavailable bool
}

// Reconcile brings the live cart in line with targets, in caller order.
// The cart is snapshotted once up front (one page load, not one per
// item); items already present are skipped; the rest go through a
// bounded add-then-verify cycle. The first unresolvable item aborts the
// run with a structured error unless opts.IgnoreUnavailable is set.
func (r *Reconciler) Reconcile(ctx context.Context, targets []domain.TargetItem, opts ReconcileOptions) (*domain.RunReport, error) {
	start := r.nowFunc()
	defer func() {
		metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	}()

	report := &domain.RunReport{
		Started:     start,
		TargetCount: len(targets),
	}

	snap, err := r.cart.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading cart contents: %w", err)
	}

	for _, target := range targets {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if present(snap, target) {
			r.log.Info("item already in cart, skipping",
				"item", target.Text,
				"product", target.Product.DisplayName,
			)
			metrics.CartAlreadyPresentTotal.Inc()
			report.AlreadyPresent++
			report.SkippedItems = append(report.SkippedItems, target.Text)
			continue
		}

		newSnap, addErr := r.addAndVerify(ctx, target)
		if newSnap != nil {
			snap = newSnap
		}
		if addErr != nil {
			report.Failed++
			report.FailedItems = append(report.FailedItems, target.Text)
			if !opts.IgnoreUnavailable {
				return report, addErr
			}
			r.log.Warn("item unavailable, continuing per ignore-unavailable",
				"item", target.Text,
				"error", addErr,
			)
			continue
		}
		report.Added++
		report.AddedItems = append(report.AddedItems, target.Text)
	}

	report.UnexpectedItems = auditUnexpected(snap, targets)
	if len(report.UnexpectedItems) > 0 {
		// Informational only: presumed prior manual additions, never
		// auto-removed.
		r.log.Info("cart holds items not on the target list",
			"count", len(report.UnexpectedItems),
			"items", report.UnexpectedItems,
		)
	}

	report.Finished = r.nowFunc()
	return report, nil
}

// addAndVerify locates the product, invokes add, and re-verifies presence
// against a fresh snapshot, retrying up to maxAttempts. The returned
// snapshot (possibly nil) is the freshest observation made.
func (r *Reconciler) addAndVerify(ctx context.Context, target domain.TargetItem) (*Snapshot, error) {
	query := target.Product.URL
	if query == "" {
		query = target.Product.DisplayName
	}

	var (
		located  bool
		lastSnap *Snapshot
	)

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		candidate, err := r.cart.Locate(ctx, query)
		if err != nil {
			return lastSnap, fmt.Errorf("locating %q: %w", target.Text, err)
		}
		if candidate == nil {
			continue // transient page state; a retry re-searches
		}
		located = true

		ok, err := r.cart.Add(ctx, candidate)
		if err != nil {
			return lastSnap, fmt.Errorf("adding %q: %w", target.Text, err)
		}
		if !ok {
			r.log.Warn("add action did not take",
				"item", target.Text,
				"attempt", attempt,
			)
		}

		snap, err := r.cart.Snapshot(ctx)
		if err != nil {
			return lastSnap, fmt.Errorf("verifying %q: %w", target.Text, err)
		}
		lastSnap = snap

		if presentCandidate(snap, target, candidate) {
			r.log.Info("item added to cart",
				"item", target.Text,
				"product", candidate.Name,
				"attempt", attempt,
			)
			metrics.CartAddsTotal.Inc()
			return lastSnap, nil
		}
	}

	metrics.CartAddFailuresTotal.Inc()
	if !located {
		r.recordUnavailable(target.Text, domain.ReasonNotFound, target.Text)
		return lastSnap, domain.SearchNoResultsError(target.Text, r.searchURL(target.Text))
	}
	r.recordUnavailable(target.Text, domain.ReasonAddFailed, "")
	fallback := target.Product.URL
	if fallback == "" {
		fallback = r.searchURL(target.Text)
	}
	return lastSnap, domain.AddFailedError(target.Text, r.maxAttempts, fallback)
}

func (r *Reconciler) recordUnavailable(item string, reason domain.UnavailabilityReason, searchTerm string) {
	if r.unavailLog == nil {
		return
	}
	if _, err := r.unavailLog.Append(item, reason, searchTerm); err != nil {
		// Logging failures must not mask the primary result.
		r.log.Error("recording unavailable item failed", "item", item, "error", err)
	}
}

// present applies the two-signal presence check for a target: the
// product identifier is authoritative when both sides carry one; display
// name containment is the fallback when identifiers are inconclusive.
func present(snap *Snapshot, target domain.TargetItem) bool {
	if id := target.Product.ExternalID; id != "" && len(snap.IDs) > 0 {
		return snap.HasID(id)
	}
	return nameInSnapshot(snap, target.Product.DisplayName)
}

// presentCandidate verifies a just-added item: the located candidate's
// product ID counts as a strong signal alongside the catalog's.
func presentCandidate(snap *Snapshot, target domain.TargetItem, c *Candidate) bool {
	if snap.HasID(target.Product.ExternalID) || snap.HasID(c.ProductID) {
		return true
	}
	if (target.Product.ExternalID != "" || c.ProductID != "") && len(snap.IDs) > 0 {
		return false
	}
	return nameInSnapshot(snap, target.Product.DisplayName) ||
		nameInSnapshot(snap, c.Name)
}

// nameInSnapshot reports case-insensitive substring containment, in
// either direction, between any live display text and name.
func nameInSnapshot(snap *Snapshot, name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return false
	}
	for _, text := range snap.DisplayTexts {
		live := strings.ToLower(strings.TrimSpace(text))
		if live == "" {
			continue
		}
		if strings.Contains(live, needle) || strings.Contains(needle, live) {
			return true
		}
	}
	return false
}

// auditUnexpected lists live display texts not explained by any target
// item. These are presumed prior manual additions or leftovers.
func auditUnexpected(snap *Snapshot, targets []domain.TargetItem) []string {
	if snap == nil {
		return nil
	}
	var unexpected []string
	for _, text := range snap.DisplayTexts {
		explained := false
		for _, target := range targets {
			if nameMatches(text, target.Product.DisplayName) || nameMatches(text, target.Text) {
				explained = true
				break
			}
		}
		if !explained {
			unexpected = append(unexpected, text)
		}
	}
	return unexpected
}

func nameMatches(live, name string) bool {
	a := strings.ToLower(strings.TrimSpace(live))
	b := strings.ToLower(strings.TrimSpace(name))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
