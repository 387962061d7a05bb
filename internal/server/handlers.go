package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"simutrade-go/internal/engine"
	"simutrade-go/internal/market"
	"simutrade-go/internal/trading"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// handleQuote serves GET /api/stocks?symbol=SYM.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		symbol = "AAPL"
	}

	quote, err := s.svc.Quote(r.Context(), symbol)
	if err != nil {
		s.logger.Error("Failed to fetch quote", zap.String("symbol", symbol), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "Failed to fetch market data.")
		return
	}
	s.writeJSON(w, http.StatusOK, quote)
}

// handlePortfolio serves GET /api/portfolio.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.svc.Portfolio(r.Context())
	if err != nil {
		s.logger.Error("Failed to load portfolio", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to load portfolio.")
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

// handleHistory serves GET /api/history, most recent trade first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	trades, err := s.svc.History(r.Context())
	if err != nil {
		s.logger.Error("Failed to load trade history", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to load trade history.")
		return
	}
	s.writeJSON(w, http.StatusOK, trades)
}

// handleTrade serves POST /api/trade. Rejections map to client-fault
// statuses, upstream quote failures to 502, store faults to 500.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req trading.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if _, err := s.svc.PlaceOrder(r.Context(), req); err != nil {
		s.writeTradeError(w, req, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) writeTradeError(w http.ResponseWriter, req trading.OrderRequest, err error) {
	if rejection, ok := engine.AsRejection(err); ok {
		status := http.StatusBadRequest
		if rejection.Kind == engine.RejectLimitNotFilled {
			status = http.StatusConflict
		}
		s.logger.Info("Order rejected",
			zap.String("symbol", req.Symbol),
			zap.String("kind", string(rejection.Kind)),
			zap.String("reason", rejection.Reason),
		)
		s.writeError(w, status, rejection.Reason)
		return
	}

	s.logger.Error("Trade execution failed", zap.String("symbol", req.Symbol), zap.Error(err))
	if errors.Is(err, market.ErrQuoteUnavailable) {
		s.writeError(w, http.StatusBadGateway, "Failed to fetch market data.")
		return
	}
	s.writeError(w, http.StatusInternalServerError, "Trade execution failed.")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "SimuTrade backend is running. Use /api/health to check status or /api/* endpoints.")
}
