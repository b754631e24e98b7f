package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/susu3304/partypay/internal/metrics"
	"github.com/susu3304/partypay/internal/settlement"
)

const maxBodyBytes = 1 << 20

type Server struct {
	router   *mux.Router
	computer Computer
	quota    *Quota
	logger   *zap.Logger
	bind     string
}

func NewServer(bind string, computer Computer, quota *Quota, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:   mux.NewRouter(),
		computer: computer,
		quota:    quota,
		logger:   logger,
		bind:     bind,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/calculate/", s.handleCalculate).Methods("POST")
	s.router.HandleFunc("/healthz", handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// Handler is the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(s.router)
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.bind, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("calculator listening", zap.String("addr", s.bind))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req settlement.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Invalid JSON body."}})
		return
	}
	if err := Validate(req); err != nil {
		var fe FieldErrors
		if errors.As(err, &fe) {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ip := clientIP(r)
	count, err := s.quota.Allow(r.Context(), ip)
	if errors.Is(err, ErrQuotaExceeded) {
		metrics.QuotaRejections.Inc()
		s.logger.Info("quota exceeded", zap.String("ip", ip), zap.Int("count", count))
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error": fmt.Sprintf("You have reached the daily limit of %d calculations.", s.quota.limit),
		})
		return
	}
	if err != nil {
		s.logger.Error("quota lookup failed", zap.String("ip", ip), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	res, err := s.computer.Compute(r.Context(), BuildPrompt(req))
	if err != nil {
		s.logger.Warn("settlement computation failed", zap.String("ip", ip), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "calculation failed"})
		return
	}
	res.Normalize()
	writeJSON(w, http.StatusOK, res)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
