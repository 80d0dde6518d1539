package api

import (
	"context"
	"log/slog"
	"net/http"

	logging "github.com/adamanr/shift_service/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Handler builds the chi router with request ids, request logging and
// metrics in front of every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware(s.deps.Logger))
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.Middleware)
		r.Handle("/metrics", s.deps.Metrics.Handler())
	}

	r.Get("/health", s.Health)

	r.Route("/scr", func(r chi.Router) {
		r.Get("/", s.GetCoverRequests)
		r.Post("/insert", s.CreateCoverRequest)
		r.Patch("/update/{id}", s.UpdateCoverRequest)
		r.Post("/approve/{id}", s.ApproveCoverRequest)
		r.Post("/deny/{id}", s.DenyCoverRequest)
		r.Delete("/delete/{id}", s.DeleteCoverRequest)
	})

	r.Route("/tor", func(r chi.Router) {
		r.Get("/", s.GetTimeOffRequests)
		r.Post("/insert", s.CreateTimeOffRequest)
		r.Patch("/update/{id}", s.UpdateTimeOffRequest)
		r.Delete("/delete/{id}", s.DeleteTimeOffRequest)
	})

	r.Route("/shift", func(r chi.Router) {
		r.Get("/", s.GetShifts)
		r.Post("/insert", s.CreateShift)
		r.Patch("/update/{id}", s.UpdateShift)
		r.Delete("/delete/{id}", s.DeleteShift)
	})

	r.Post("/announcement/insert", s.CreateAnnouncement)
	r.Post("/task/insert", s.CreateTask)
	r.Post("/recurring/materialize", s.MaterializeTasks)

	r.Post("/push_token/register", s.RegisterPushToken)
	r.Delete("/push_token/unregister", s.UnregisterPushToken)

	return r
}

// Health reports whether the store answers a ping.
func (s Server) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.deps.DB.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.deps.Logger.Error("Health check failed", slog.String("error", err.Error()))
			s.httpResponse(w, http.StatusServiceUnavailable, map[string]string{"database": "unavailable"}, "error")
			return
		}
	}

	s.httpResponse(w, http.StatusOK, map[string]string{"database": "ok"}, "success")
}

// pathID binds the {id} segment. It writes the 400 itself on failure.
func (s Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64

	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil || id <= 0 {
		s.deps.Logger.Warn("Invalid path id", slog.String("id", chi.URLParam(r, "id")))
		s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "Invalid format for parameter id"}, "error")
		return 0, false
	}

	return id, true
}

// bindQuery binds optional form-style query parameters. It writes the 400
// itself on failure.
func (s Server) bindQuery(w http.ResponseWriter, r *http.Request, params map[string]any) bool {
	query := r.URL.Query()

	for name, dest := range params {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			s.deps.Logger.Warn("Invalid query parameter", slog.String("name", name), slog.String("error", err.Error()))
			s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "Invalid format for parameter " + name}, "error")
			return false
		}
	}

	return true
}
