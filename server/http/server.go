package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/tailor/fault"
)

// Server is the thin routing layer over the retrieval core. Handlers do
// no retrieval logic of their own; they decode, delegate, and map fault
// kinds onto status codes.
type Server struct {
	options Options
	srv     *http.Server
}

func (s *Server) Start() error {
	slog.InfoContext(s.options.Context, "http server starting", "address", s.options.Address)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		slog.ErrorContext(ctx, "request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func statusFor(err error) int {
	switch fault.KindOf(err) {
	case fault.Validation:
		return http.StatusBadRequest
	case fault.NotFound:
		return http.StatusNotFound
	case fault.Conflict:
		return http.StatusConflict
	case fault.AuthenticationFailed:
		return http.StatusUnauthorized
	case fault.TemporarilyUnavailable, fault.StoreUnavailable:
		return http.StatusServiceUnavailable
	case fault.DimensionMismatch, fault.BackendError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NewServer(opts ...Option) *Server {
	options := NewOptions(opts...)

	if options.Service == nil {
		detail := "missing service for http server"
		slog.ErrorContext(options.Context, detail)
		panic(detail)
	}

	s := &Server{
		options: options,
	}

	router := mux.NewRouter()
	router.Use(ownerMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/experiences", s.addExperience).Methods(http.MethodPost)
	api.HandleFunc("/experiences/batch", s.addExperiences).Methods(http.MethodPost)
	api.HandleFunc("/experiences", s.listExperiences).Methods(http.MethodGet)
	api.HandleFunc("/experiences/{id}", s.updateExperience).Methods(http.MethodPut)
	api.HandleFunc("/experiences/{id}", s.deleteExperience).Methods(http.MethodDelete)
	api.HandleFunc("/search", s.search).Methods(http.MethodPost)
	api.HandleFunc("/generate", s.generate).Methods(http.MethodPost)

	s.srv = &http.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}
