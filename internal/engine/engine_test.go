package engine_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/grocery-autopilot/internal/cart"
	"github.com/donaldgifford/grocery-autopilot/internal/catalog"
	"github.com/donaldgifford/grocery-autopilot/internal/config"
	"github.com/donaldgifford/grocery-autopilot/internal/engine"
	"github.com/donaldgifford/grocery-autopilot/internal/notify"
	"github.com/donaldgifford/grocery-autopilot/internal/unavailable"
	"github.com/donaldgifford/grocery-autopilot/pkg/logger"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

// fakeTasks implements gtasks.Source in memory.
type fakeTasks struct {
	titles    []string
	fetchErr  error
	completed []string
	moved     []string
	movedTo   string
}

func (f *fakeTasks) FetchOpenTitles(_ context.Context, _ string) ([]string, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.titles, nil
}

func (f *fakeTasks) MarkComplete(_ context.Context, _ string, titles []string) (int, error) {
	f.completed = append(f.completed, titles...)
	return len(titles), nil
}

func (f *fakeTasks) Move(_ context.Context, _, dst string, titles []string) (int, error) {
	f.moved = append(f.moved, titles...)
	f.movedTo = dst
	return len(titles), nil
}

// fakeStore implements cart.Capability over in-memory cart state.
// productIDs maps display names to the retailer IDs the store would
// report for them.
type fakeStore struct {
	ids           map[string]struct{}
	texts         []string
	productIDs    map[string]string
	authenticated bool
	loginCreds    *cart.Credentials
	failAdds      bool
	locateCalls   int
	closed        bool
}

func newFakeStore(authenticated bool) *fakeStore {
	return &fakeStore{
		ids:           map[string]struct{}{},
		productIDs:    map[string]string{},
		authenticated: authenticated,
	}
}

func (f *fakeStore) Snapshot(_ context.Context) (*cart.Snapshot, error) {
	ids := make(map[string]struct{}, len(f.ids))
	for id := range f.ids {
		ids[id] = struct{}{}
	}
	return &cart.Snapshot{
		IDs:          ids,
		DisplayTexts: append([]string(nil), f.texts...),
	}, nil
}

func (f *fakeStore) Locate(_ context.Context, query string) (*cart.Candidate, error) {
	f.locateCalls++
	name := query
	if i := strings.LastIndex(query, "/"); i >= 0 {
		name = query[i+1:]
	}
	return &cart.Candidate{
		Name:      name,
		ProductID: f.productIDs[name],
		AddLabel:  "Add to cart, " + name,
	}, nil
}

func (f *fakeStore) Add(_ context.Context, c *cart.Candidate) (bool, error) {
	if f.failAdds {
		return false, nil
	}
	if c.ProductID != "" {
		f.ids[c.ProductID] = struct{}{}
	}
	f.texts = append(f.texts, c.Name)
	return true, nil
}

func (f *fakeStore) IsAuthenticated(_ context.Context) (bool, error) {
	return f.authenticated, nil
}

func (f *fakeStore) Login(_ context.Context, creds cart.Credentials) error {
	f.loginCreds = &creds
	f.authenticated = true
	return nil
}

// recordingNotifier captures notifications.
type recordingNotifier struct {
	runs        []*notify.RunPayload
	unavailable [][]domain.UnavailabilityRecord
	sendErr     error
}

func (r *recordingNotifier) SendRunSummary(_ context.Context, run *notify.RunPayload) error {
	r.runs = append(r.runs, run)
	return r.sendErr
}

func (r *recordingNotifier) SendUnavailable(_ context.Context, records []domain.UnavailabilityRecord) error {
	r.unavailable = append(r.unavailable, records)
	return r.sendErr
}

type fixture struct {
	engine   *engine.Engine
	tasks    *fakeTasks
	store    *fakeStore
	notifier *recordingNotifier
	unavail  *unavailable.Log
	openErr  error
	opens    int
}

func newFixture(t *testing.T, titles []string, products map[string]domain.ProductRecord) *fixture {
	t.Helper()

	dir := t.TempDir()

	cat := catalog.NewStore(filepath.Join(dir, "products.json"))
	for key, rec := range products {
		require.NoError(t, cat.Upsert(key, rec, ""))
	}

	cfg := config.Default()
	cfg.Store.Email = "me@example.com"
	cfg.Store.Password = "secret"
	cfg.Tasks.MarkComplete = true

	f := &fixture{
		tasks:    &fakeTasks{titles: titles},
		store:    newFakeStore(true),
		notifier: &recordingNotifier{},
		unavail:  unavailable.NewLog(filepath.Join(dir, "unavailable.json")),
	}
	for _, rec := range products {
		if rec.ExternalID != "" {
			f.store.productIDs[rec.DisplayName] = rec.ExternalID
		}
	}

	opener := func(_ context.Context) (cart.Capability, func() error, error) {
		f.opens++
		if f.openErr != nil {
			return nil, nil, f.openErr
		}
		return f.store, func() error {
			f.store.closed = true
			return nil
		}, nil
	}

	f.engine = engine.New(
		cfg, cat, f.tasks, opener, f.notifier, f.unavail,
		engine.WithLogger(logger.Discard()),
		engine.WithSearchURLFunc(func(q string) string {
			return "https://store.example/search?q=" + q
		}),
	)
	return f
}

func groceryProducts() map[string]domain.ProductRecord {
	return map[string]domain.ProductRecord{
		"eggs": {
			DisplayName: "Hy-Vee Large Eggs",
			ExternalID:  "31772",
		},
		"whole milk": {
			DisplayName: "Whole Milk Gallon",
			ExternalID:  "10001",
		},
		"bread": {
			DisplayName: "Butter Bread",
		},
	}
}

func TestEngine_Run_AddsAndCompletes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"eggs", "whole milk"}, groceryProducts())

	result, err := f.engine.Run(context.Background(), engine.RunOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Report)

	assert.Equal(t, 2, result.Report.TargetCount)
	assert.Equal(t, 2, result.Report.Added)
	assert.Equal(t, 0, result.Report.Failed)
	assert.Len(t, result.Planned, 2)

	// Both task titles completed, store session closed, summary sent.
	assert.ElementsMatch(t, []string{"eggs", "whole milk"}, f.tasks.completed)
	assert.Equal(t, 2, result.TasksCompleted)
	assert.True(t, f.store.closed)
	require.Len(t, f.notifier.runs, 1)
	assert.Equal(t, "Groceries", f.notifier.runs[0].ListName)
}

func TestEngine_Run_MergedDuplicatesCompleteTogether(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"eggs", "2 dozen eggs"}, groceryProducts())

	result, err := f.engine.Run(context.Background(), engine.RunOptions{})
	require.NoError(t, err)

	// Two titles collapse into one target with the summed quantity.
	require.Len(t, result.Planned, 1)
	assert.Equal(t, "eggs", result.Planned[0].Text)
	assert.Equal(t, 25, result.Planned[0].Quantity)

	// Completing the merged target completes both source titles.
	assert.ElementsMatch(t, []string{"eggs", "2 dozen eggs"}, f.tasks.completed)
}

func TestEngine_Run_UnmappedItemHaltsBeforeBrowser(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"eggs", "dragonfruit"}, groceryProducts())

	_, err := f.engine.Run(context.Background(), engine.RunOptions{})
	require.Error(t, err)

	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, domain.KindUnknownItem, derr.Kind)
	assert.Equal(t, domain.ExitUnknownItem, derr.Code)
	assert.Contains(t, derr.Context, "dragonfruit")

	// The browser is never opened and no task is completed.
	assert.Equal(t, 0, f.opens)
	assert.Empty(t, f.tasks.completed)
}

func TestEngine_Run_IgnoreUnmappedSkipsItem(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"eggs", "dragonfruit"}, groceryProducts())

	result, err := f.engine.Run(context.Background(), engine.RunOptions{
		IgnoreUnmapped: true,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Report)

	// Only the mapped item is reconciled; the unmapped one stays open.
	assert.Len(t, result.Planned, 1)
	assert.Equal(t, "eggs", result.Planned[0].Text)
	assert.Equal(t, []string{"eggs"}, f.tasks.completed)
}

func TestEngine_Run_DryRunSkipsStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"eggs", "bread"}, groceryProducts())

	result, err := f.engine.Run(context.Background(), engine.RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.Len(t, result.Planned, 2)
	assert.Nil(t, result.Report)
	assert.Equal(t, 0, f.opens)
	assert.Empty(t, f.tasks.completed)
	assert.Empty(t, f.notifier.runs)
}

func TestEngine_Run_EmptyListSkipsStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, groceryProducts())

	result, err := f.engine.Run(context.Background(), engine.RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Planned)
	assert.Equal(t, 0, f.opens)
}

func TestEngine_Run_LogsInWhenSessionMissing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"eggs"}, groceryProducts())
	f.store.authenticated = false

	_, err := f.engine.Run(context.Background(), engine.RunOptions{})
	require.NoError(t, err)

	require.NotNil(t, f.store.loginCreds)
	assert.Equal(t, "me@example.com", f.store.loginCreds.Email)
	assert.Equal(t, "secret", f.store.loginCreds.Password)
}

func TestEngine_Run_AddFailureAbortsAndNotifies(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"eggs"}, groceryProducts())
	f.store.failAdds = true

	result, err := f.engine.Run(context.Background(), engine.RunOptions{})
	require.Error(t, err)

	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, domain.KindAddFailed, derr.Kind)

	// No checkmarks for a failed run, but the summary still goes out.
	assert.Empty(t, f.tasks.completed)
	require.NotNil(t, result.Report)
	require.Len(t, f.notifier.runs, 1)
	assert.Equal(t, 1, f.notifier.runs[0].Report.Failed)

	// The failure lands in the unavailability log.
	records, err := f.unavail.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "eggs", records[0].Item)
	assert.Equal(t, domain.ReasonAddFailed, records[0].Reason)
}

func TestEngine_Run_IgnoreUnavailableContinues(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"eggs"}, groceryProducts())
	f.store.failAdds = true

	result, err := f.engine.Run(context.Background(), engine.RunOptions{IgnoreUnavailable: true})
	require.NoError(t, err)

	require.NotNil(t, result.Report)
	assert.Equal(t, 1, result.Report.Failed)
	assert.Equal(t, 0, result.Report.Added)
	// Nothing was fulfilled, so nothing is marked complete.
	assert.Empty(t, f.tasks.completed)
}

func TestEngine_Run_SecondRunIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"eggs"}, groceryProducts())

	first, err := f.engine.Run(context.Background(), engine.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Report.Added)

	second, err := f.engine.Run(context.Background(), engine.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Report.Added)
	assert.Equal(t, 1, second.Report.AlreadyPresent)
}

func TestEngine_Run_StoreOpenFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"eggs"}, groceryProducts())
	f.openErr = domain.SetupRequiredError("no browser installed")

	_, err := f.engine.Run(context.Background(), engine.RunOptions{})
	require.Error(t, err)

	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, domain.KindSetupRequired, derr.Kind)
}

func TestEngine_Run_FetchFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, groceryProducts())
	f.tasks.fetchErr = fmt.Errorf("api down")

	_, err := f.engine.Run(context.Background(), engine.RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching task list")
}

func TestEngine_MoveItems(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"dry cleaning"}, groceryProducts())

	moved, err := f.engine.MoveItems(context.Background(), "", []string{"dry cleaning"})
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	assert.Equal(t, "Shopping", f.tasks.movedTo)
	assert.Equal(t, []string{"dry cleaning"}, f.tasks.moved)
}

func TestEngine_MoveItems_ExplicitList(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, groceryProducts())

	_, err := f.engine.MoveItems(context.Background(), "Errands", []string{"stamps"})
	require.NoError(t, err)
	assert.Equal(t, "Errands", f.tasks.movedTo)
}

func TestEngine_VerifyMappings(t *testing.T) {
	t.Parallel()

	f := newFixture(t, []string{"2 dozen eggs", "dragonfruit"}, groceryProducts())

	mapped, unmapped, err := f.engine.VerifyMappings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"eggs"}, mapped)
	assert.Equal(t, []string{"dragonfruit"}, unmapped)
}
