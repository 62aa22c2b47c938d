package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/erp-core/internal/interfaces/http"
)

func TestMetrics_EtiquetaPorPlantillaDeRuta(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := apphttp.NewMetrics(reg)

	app := fiber.New()
	app.Use(metrics.Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", apphttp.MetricsHandler(reg))

	for _, id := range []string{"1", "2", "3"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+id, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	series, err := testutil.GatherAndCount(reg, "erp_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series, "una sola serie para las tres URLs")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, `erp_http_requests_total{method="GET",route="/items/:id",status="204"} 3`)
}
