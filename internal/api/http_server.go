package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"storebot/internal/config"
	"storebot/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer exposes the catalog as a small read-only JSON API.
type HTTPServer struct {
	cfg    config.APIConfig
	server *http.Server
	auth   *Authenticator
	log    zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, handler *CatalogHandler, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{cfg: cfg, auth: NewAuthenticator(cfg), log: zerolog.Nop()}
	if logger != nil {
		srv.log = logger.With().Str("component", "http").Logger()
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.routes(handler),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes(h *CatalogHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/api/v1/products", s.guard("products", permReadCatalog, h.handleProducts))
	mux.Handle("/api/v1/products/search", s.guard("search", permReadCatalog, h.handleSearch))
	mux.Handle("/api/v1/products/", s.guard("product", permReadCatalog, h.handleProduct))
	mux.Handle("/api/v1/categories", s.guard("categories", permReadCatalog, h.handleCategories))
	mux.Handle("/api/v1/top-products", s.guard("top_products", permReadStats, h.handleTopProducts))
	return s.loggingMiddleware(mux)
}

// Handler is used by tests to drive the router without a listener.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// guard applies auth, permission and rate limit checks before calling next.
func (s *HTTPServer) guard(endpoint, permission string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP(endpoint)

		apiKey := r.Header.Get(s.auth.header)
		if _, err := s.auth.Check(apiKey, permission); err != nil {
			statusCode := http.StatusUnauthorized
			if errors.Is(err, errPermissionDenied) {
				statusCode = http.StatusForbidden
			}
			writeError(w, statusCode, err.Error())
			return
		}

		if err := s.auth.Allow(httpClientKey(r, apiKey)); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next(w, r)
	})
}

func httpClientKey(r *http.Request, apiKey string) string {
	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		return apiKey
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
