package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/grocery-autopilot/internal/api/handlers"
	"github.com/donaldgifford/grocery-autopilot/internal/gtasks"
)

func TestGetQuota(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rl         *gtasks.RateLimiter
		preCalls   int
		wantStatus int
	}{
		{
			name:       "nil rate limiter returns zeroes",
			rl:         nil,
			wantStatus: http.StatusOK,
		},
		{
			name:       "fresh rate limiter",
			rl:         gtasks.NewRateLimiter(100, 10, 1000),
			wantStatus: http.StatusOK,
		},
		{
			name:       "rate limiter with usage",
			rl:         gtasks.NewRateLimiter(100, 10, 100),
			preCalls:   3,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.rl != nil {
				for range tt.preCalls {
					require.NoError(t, tt.rl.Wait(t.Context()))
				}
			}

			h := handlers.NewQuotaHandler(tt.rl)

			_, api := humatest.New(t)
			handlers.RegisterQuotaRoutes(api, h)

			resp := api.Get("/api/v1/quota")
			require.Equal(t, tt.wantStatus, resp.Code)

			body := resp.Body.String()
			assert.Contains(t, body, `"daily_limit"`)
			assert.Contains(t, body, `"daily_used"`)
			assert.Contains(t, body, `"remaining"`)
			assert.Contains(t, body, `"reset_at"`)
		})
	}
}

func TestGetQuota_ResetAtValue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	rl := gtasks.NewRateLimiter(
		5, 10, 1000,
		gtasks.WithRateLimiterNowFunc(func() time.Time { return now }),
	)

	h := handlers.NewQuotaHandler(rl)

	_, api := humatest.New(t)
	handlers.RegisterQuotaRoutes(api, h)

	resp := api.Get("/api/v1/quota")
	require.Equal(t, http.StatusOK, resp.Code)

	// ResetAt should be 24 hours from now.
	assert.Contains(t, resp.Body.String(), "2025-06-16T14:30:00Z")
}
