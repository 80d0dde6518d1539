package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	PushChunks        *prometheus.CounterVec
	PushTickets       *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
	CoverApprovals    *prometheus.CounterVec
	TasksMaterialized prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"path", "method", "status"}),
		PushChunks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "push_chunks_total",
			Help: "Push gateway requests by outcome",
		}, []string{"result"}),
		PushTickets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "push_tickets_total",
			Help: "Push tickets returned by the gateway by status",
		}, []string{"status"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Domain events dispatched to notification handlers",
		}, []string{"event", "result"}),
		CoverApprovals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shift_cover_approvals_total",
			Help: "Cover request approval attempts by outcome",
		}, []string{"result"}),
		TasksMaterialized: factory.NewCounter(prometheus.CounterOpts{
			Name: "recurring_tasks_materialized_total",
			Help: "Tasks created from recurring templates",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests by route pattern so path ids do not explode
// label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequests.WithLabelValues(path, r.Method, strconv.Itoa(status)).Inc()
	})
}
