package handlers_test

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/grocery-autopilot/internal/api/handlers"
	"github.com/donaldgifford/grocery-autopilot/internal/unavailable"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

func TestListUnavailable(t *testing.T) {
	t.Parallel()

	log := unavailable.NewLog(filepath.Join(t.TempDir(), "unavailable.json"))
	_, err := log.Append("dragonfruit", domain.ReasonNotFound, "dragonfruit")
	require.NoError(t, err)
	_, err = log.Append("oat milk", domain.ReasonAddFailed, "oat milk")
	require.NoError(t, err)

	h := handlers.NewUnavailableHandler(log)

	_, api := humatest.New(t)
	handlers.RegisterUnavailableRoutes(api, h)

	resp := api.Get("/api/v1/unavailable")
	require.Equal(t, http.StatusOK, resp.Code)

	body := resp.Body.String()
	assert.Contains(t, body, `"dragonfruit"`)
	assert.Contains(t, body, `"oat milk"`)
	assert.Contains(t, body, `"not_found"`)
	assert.Contains(t, body, `"add_failed"`)
}

func TestListUnavailable_Empty(t *testing.T) {
	t.Parallel()

	log := unavailable.NewLog(filepath.Join(t.TempDir(), "unavailable.json"))
	h := handlers.NewUnavailableHandler(log)

	_, api := humatest.New(t)
	handlers.RegisterUnavailableRoutes(api, h)

	resp := api.Get("/api/v1/unavailable")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"records":[]`)
}
