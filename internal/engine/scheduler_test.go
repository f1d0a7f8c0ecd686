package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/grocery-autopilot/internal/engine"
	"github.com/donaldgifford/grocery-autopilot/pkg/logger"
)

func TestScheduler_Lifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, groceryProducts())

	s, err := engine.NewScheduler(f.engine, time.Hour, logger.Discard())
	require.NoError(t, err)

	assert.Len(t, s.Entries(), 1)

	s.Start()
	stopCtx := s.Stop()

	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}
