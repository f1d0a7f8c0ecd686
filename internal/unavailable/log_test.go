package unavailable

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

func TestAppend_CreatesFileAndPreservesOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	l := NewLog(filepath.Join(t.TempDir(), "unavailable.json"),
		WithNowFunc(func() time.Time { return now }),
		WithIDFunc(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)

	_, err := l.Append("bananas", domain.ReasonNotFound, "bananas")
	require.NoError(t, err)
	rec, err := l.Append("milk", domain.ReasonAddFailed, "")
	require.NoError(t, err)
	assert.Equal(t, "id-2", rec.ID)

	items, err := l.List()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "bananas", items[0].Item)
	assert.Equal(t, domain.ReasonNotFound, items[0].Reason)
	assert.Equal(t, "bananas", items[0].SearchTerm)
	assert.Equal(t, "milk", items[1].Item)
	assert.Equal(t, domain.ReasonAddFailed, items[1].Reason)
	assert.Empty(t, items[1].SearchTerm)
}

func TestAppend_NeverMutatesExistingEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "unavailable.json")
	l := NewLog(path, WithNowFunc(func() time.Time { return now }))

	first, err := l.Append("bananas", domain.ReasonNotFound, "bananas")
	require.NoError(t, err)

	// Entries written by a previous run survive a fresh Log instance.
	l2 := NewLog(path, WithNowFunc(func() time.Time { return now }))
	_, err = l2.Append("bread", domain.ReasonUnknown, "")
	require.NoError(t, err)

	items, err := l2.List()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first, items[0])
}

func TestList_MissingFileYieldsEmpty(t *testing.T) {
	t.Parallel()

	l := NewLog(filepath.Join(t.TempDir(), "unavailable.json"))
	items, err := l.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestList_MalformedFileIsAnError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "unavailable.json")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	_, err := NewLog(path).List()
	assert.ErrorContains(t, err, "parsing unavailability log")
}
