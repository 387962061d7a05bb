package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"simutrade-go/internal/trading"
)

// Server exposes the trading service over the REST API consumed by the
// dashboard frontend.
type Server struct {
	logger *zap.Logger
	svc    *trading.Service
}

// New creates an API server over the trading service.
func New(logger *zap.Logger, svc *trading.Service) *Server {
	return &Server{logger: logger.Named("api"), svc: svc}
}

// Handler builds the routed, CORS-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/stocks", s.handleQuote).Methods(http.MethodGet)
	r.HandleFunc("/api/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/trade", s.handleTrade).Methods(http.MethodPost)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)

	return cors.AllowAll().Handler(r)
}
