package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hashicorp-forge/switchboard/internal/server"
)

// NewRouter returns the HTTP routes of the switchboard API.
func NewRouter(srv server.Server) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/send-message", SendMessageHandler(srv)).Methods(http.MethodPost)
	r.Handle("/direct-call", DirectCallHandler(srv)).Methods(http.MethodPost)
	r.Handle("/merge-call", MergeCallHandler(srv)).Methods(http.MethodPost)
	r.Handle("/update-call", UpdateCallHandler(srv)).Methods(http.MethodPost)
	r.Handle("/sms_forward", SMSForwardHandler(srv)).Methods(http.MethodPost)
	r.Handle("/sms_forward_stop", SMSForwardStopHandler(srv)).Methods(http.MethodPost)
	r.Handle("/check-inbox", CheckInboxHandler(srv)).Methods(http.MethodPost)
	r.Handle("/health", HealthHandler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Use(logRequests(srv))
	return r
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// logRequests logs every request with its status and latency.
func logRequests(srv server.Server) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			srv.Logger.Info("handled request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}
