package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// HealthCheck reports whether a dependency is usable; nil means healthy.
type HealthCheck func() error

// NewRouter wires the web pages, the JSON API, health and API docs.
func NewRouter(statements *StatementHandler, rates *RateHandler, health HealthCheck, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.Use(requestLogger(logger), cors)

	r.HandleFunc("/health", healthHandler(health)).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	r.HandleFunc("/", statements.HandleIndex).Methods(http.MethodGet)
	r.HandleFunc("/statements", statements.HandleReportPage).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/statements", statements.HandleReport).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rates", rates.HandleList).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/rates/resolve", rates.HandleResolve).Methods(http.MethodGet, http.MethodOptions)

	return r
}

// GET /health
func healthHandler(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "healthy", "service": "irpf"}
		if check != nil {
			if err := check(); err != nil {
				body["status"] = "unhealthy"
				body["error"] = err.Error()
				respondJSON(w, http.StatusServiceUnavailable, body)
				return
			}
		}
		respondJSON(w, http.StatusOK, body)
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
