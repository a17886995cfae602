package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	body := scrape(t)
	assert.Contains(t, body, `salon_http_requests_total{method="GET",path="/items/:id",status="204"} 2`)
	assert.NotContains(t, body, `path="/items/a"`)
}

func scrape(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHandlerExposesJobMetrics(t *testing.T) {
	RecordJobRun("appointment_sweep", 20*time.Millisecond, true)
	RecordSweptAppointment("NO_SHOW")

	body := scrape(t)
	assert.Contains(t, body, `salon_jobs_runs_total{job="appointment_sweep",success="true"}`)
	assert.Contains(t, body, `salon_appointments_swept_total{status="NO_SHOW"}`)
}
