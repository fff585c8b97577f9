package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitoringMiddlewareRecordsRequests(t *testing.T) {
	app := fiber.New()
	app.Use(MonitoringMiddleware(&MonitoringService{}))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/ping", "GET", "200"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/ping", "GET", "200"))
	assert.Equal(t, before+1, after)

	// The active-request gauge returns to zero once the request finishes.
	assert.Zero(t, testutil.ToFloat64(httpRequestsActive.WithLabelValues("/ping", "GET")))
}

func TestMonitoringMiddlewareSkipsMetricsEndpoint(t *testing.T) {
	app := fiber.New()
	app.Use(MonitoringMiddleware(&MonitoringService{}))
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/metrics", "GET", "200"))

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/metrics", "GET", "200"))
	assert.Equal(t, before, after)
}
