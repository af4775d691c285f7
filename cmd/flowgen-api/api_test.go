package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukex/flowgen/pkg/auth"
	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/metrics"
	"github.com/dukex/flowgen/pkg/persistence/file"
	"github.com/dukex/flowgen/pkg/services"
	"github.com/dukex/flowgen/pkg/web"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestApp(t *testing.T, limiter *web.RateLimiter) (*fiber.App, *auth.Verifier) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	require.NoError(t, seedIfEmpty(context.Background(), services.NewCatalogSeeder(testLogger(), store, nil), store))

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	verifier, err := auth.NewVerifier("test-secret")
	require.NoError(t, err)

	api := NewAPI(testLogger(), APIConfig{
		Persistence: store,
		Catalog:     catalog.New(testLogger(), catalog.SourceFunc(store.NodeTypes), catalog.WithObserver(m)),
		Verifier:    verifier,
		Limiter:     limiter,
		Registry:    registry,
		Metrics:     m,
	})

	return api.App(), verifier
}

func request(t *testing.T, app *fiber.App, method, path string, body any, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func TestAPI_RootEndpoint(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	status, body := request(t, app, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Flowgen API", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	status, body := request(t, app, http.MethodGet, "/livez", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))

	status, _ = request(t, app, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_Metrics(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	status, _ := request(t, app, http.MethodPost, "/generate", web.GenerateRequest{Description: "send a daily report email"}, "")
	require.Equal(t, http.StatusCreated, status)

	status, body := request(t, app, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "flowgen_generations_total")
	assert.Contains(t, string(body), `flowgen_catalog_refreshes_total{outcome="ok"} 1`)
}

func TestAPI_GenerateRateLimit(t *testing.T) {
	app, _ := setupTestApp(t, web.NewRateLimiter(0.01, 2, time.Minute))

	for range 2 {
		status, _ := request(t, app, http.MethodPost, "/generate", web.GenerateRequest{Description: "webhook"}, "")
		assert.Equal(t, http.StatusCreated, status)
	}

	status, _ := request(t, app, http.MethodPost, "/generate", web.GenerateRequest{Description: "webhook"}, "")
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, _ = request(t, app, http.MethodPost, "/validate", map[string]any{"nodes": []any{}}, "")
	assert.Equal(t, http.StatusOK, status, "only generation is rate limited")
}

func TestAPI_GenerateAndSave(t *testing.T) {
	app, verifier := setupTestApp(t, nil)

	token, err := verifier.Issue("user-1", time.Hour)
	require.NoError(t, err)

	status, body := request(t, app, http.MethodPost, "/generate",
		web.GenerateRequest{Description: "Create a webhook that validates and processes incoming data"}, token)
	require.Equal(t, http.StatusCreated, status)

	var generation services.Generation
	require.NoError(t, json.Unmarshal(body, &generation))
	assert.False(t, generation.Degraded)

	status, body = request(t, app, http.MethodPost, "/workflows",
		web.SaveWorkflowRequest{GenerationID: generation.ID, IsPublic: true}, token)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = request(t, app, http.MethodGet, "/workflows", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"total_count":1`)
}

func TestAPI_NullNodeDocument(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	status, body := request(t, app, http.MethodPost, "/validate", json.RawMessage(`{"nodes":[null]}`), "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "Node at index 0 is null")
}

func TestAPI_RecoversFromPanics(t *testing.T) {
	app, _ := setupTestApp(t, nil)
	app.Get("/boom", func(fiber.Ctx) error {
		panic("boom")
	})

	status, _ := request(t, app, http.MethodGet, "/boom", nil, "")
	assert.Equal(t, http.StatusInternalServerError, status)

	status, _ = request(t, app, http.MethodGet, "/livez", nil, "")
	assert.Equal(t, http.StatusOK, status)
}
