package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/grocery-autopilot/internal/notify"
	"github.com/donaldgifford/grocery-autopilot/pkg/logger"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

func TestNoOpNotifier(t *testing.T) {
	t.Parallel()

	n := notify.NewNoOpNotifier(logger.Discard())

	require.NoError(t, n.SendRunSummary(context.Background(), testRun()))
	require.NoError(t, n.SendUnavailable(context.Background(), []domain.UnavailabilityRecord{
		{Item: "bread", Reason: domain.ReasonNotFound},
	}))
}
