package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arvikm/upstox_threshold_bot/internal/domain"
	"github.com/arvikm/upstox_threshold_bot/internal/usecase"
)

// Server exposes the operator endpoints: health, engine state, journal tail
// and Prometheus metrics.
type Server struct {
	router *http.ServeMux
	server *http.Server
	engine *usecase.Engine
	trades domain.TradeRepository // may be nil when the journal is disabled
	logger *zap.Logger
}

func NewServer(port int, engine *usecase.Engine, trades domain.TradeRepository, logger *zap.Logger) *Server {
	s := &Server{
		router: http.NewServeMux(),
		engine: engine,
		trades: trades,
		logger: logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.HandleFunc("GET /status", s.handleStatus)
	s.router.HandleFunc("GET /trades", s.handleTrades)
	s.router.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) Start() {
	go func() {
		s.logger.Info("status server listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server failed", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.engine.Snapshot())
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades := []*domain.Order{}
	if s.trades != nil {
		var err error
		trades, err = s.trades.ListTrades(r.Context(), 100)
		if err != nil {
			s.logger.Error("list trades failed", zap.Error(err))
			http.Error(w, "failed to list trades", http.StatusInternalServerError)
			return
		}
		if trades == nil {
			trades = []*domain.Order{}
		}
	}
	s.writeJSON(w, trades)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
	}
}
