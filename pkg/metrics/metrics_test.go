package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBusiness_NilIsNoop(t *testing.T) {
	var b *Business
	b.PurchaseInitiated("seller", "ok")
	b.Reconciled("webhook", "updated")
	b.ProviderCall("get_payment", time.Now(), nil)
}

func TestBusiness_CountsReconcile(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := NewBusiness(reg)

	b.Reconciled("webhook", "updated")
	b.Reconciled("webhook", "updated")
	b.Reconciled("return", "no_purchase")
	b.ProviderCall("get_payment", time.Now(), errors.New("x"))

	require.Equal(t, 2.0, testutil.ToFloat64(b.reconcile.WithLabelValues("webhook", "updated")))
	require.Equal(t, 1.0, testutil.ToFloat64(b.reconcile.WithLabelValues("return", "no_purchase")))

	// a second registration reuses the existing collectors
	again := NewBusiness(reg)
	again.Reconciled("webhook", "updated")
	require.Equal(t, 3.0, testutil.ToFloat64(b.reconcile.WithLabelValues("webhook", "updated")))
}

func TestPrometheus_MiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p := NewPrometheus(NewPrometheusOptions{
		Registerer: reg,
		Gatherer:   reg,
		ReqCntURLLabelMappingFn: func(c *gin.Context) string {
			return c.FullPath()
		},
	})
	r := gin.New()
	p.Use(r)
	r.GET("/buy/:document_id", func(c *gin.Context) { c.Status(http.StatusFound) })

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/buy/"+id, nil))
	}
	require.Equal(t, 2.0, testutil.ToFloat64(p.reqCnt.WithLabelValues("302", "GET", "/buy/:document_id", "")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "req_total")
}
