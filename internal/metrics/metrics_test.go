package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRouteAndStatus(t *testing.T) {
	e := echo.New()
	e.Use(Middleware("metrics-test"))
	e.GET("/things/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, id := range []string{"1", "2", "missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(RequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/things/:id", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(RequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/things/:id", "404")))
}
