package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gtpscloud/rewardsbot/internal/account"
	webhookpkg "github.com/gtpscloud/rewardsbot/internal/webhook"
)

const (
	secretHeader    = "X-Webhook-Secret"
	shutdownTimeout = 5 * time.Second
)

// HTTPServer exposes the surface the game server calls: issuing link codes,
// checking and spending VP balances, and querying boost status.
type HTTPServer struct {
	secret     string
	multiplier float64
	store      account.Store
	boosts     webhookpkg.BoostStatus
	server     *http.Server
}

func NewHTTPServer(addr, secret string, multiplier float64, store account.Store, boosts webhookpkg.BoostStatus) *HTTPServer {
	s := &HTTPServer{
		secret:     secret,
		multiplier: multiplier,
		store:      store,
		boosts:     boosts,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHealth)
	mux.HandleFunc("POST /link", s.handleLink)
	mux.HandleFunc("POST /vp/check", s.handleVPCheck)
	mux.HandleFunc("POST /vp/spend", s.handleVPSpend)
	mux.HandleFunc("POST /gems/check", s.handleGemsCheck)
	return s.withAuth(mux)
}

func (s *HTTPServer) Start() error {
	slog.Info("webhook server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The health endpoint stays open for platform probes.
		if s.secret != "" && r.Method != http.MethodGet {
			got := r.Header.Get(secretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
				writeJSON(w, http.StatusUnauthorized, webhookpkg.LinkResponse{Success: false, Error: "unauthorized"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *HTTPServer) handleLink(w http.ResponseWriter, r *http.Request) {
	var req webhookpkg.LinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.GrowID == "" || req.Code == "" {
		writeJSON(w, http.StatusOK, webhookpkg.LinkResponse{Success: false, Error: "growId and code are required"})
		return
	}
	if err := s.store.RegisterPendingLink(r.Context(), req.GrowID, req.Code); err != nil {
		slog.Warn("link code registration rejected", "error", err, "grow_id", req.GrowID)
		writeJSON(w, http.StatusOK, webhookpkg.LinkResponse{Success: false, Error: userFacingError(err)})
		return
	}
	slog.Info("link code registered", "grow_id", req.GrowID)
	writeJSON(w, http.StatusOK, webhookpkg.LinkResponse{Success: true})
}

func (s *HTTPServer) handleVPCheck(w http.ResponseWriter, r *http.Request) {
	var req webhookpkg.VPCheckRequest
	if !decodeBody(w, r, &req) {
		return
	}
	linked, err := s.store.Lookup(r.Context(), req.GrowID)
	if err != nil {
		slog.Error("vp check failed", "error", err, "grow_id", req.GrowID)
		writeJSON(w, http.StatusOK, webhookpkg.VPCheckResponse{Success: false, Error: "internal error"})
		return
	}
	if linked == nil {
		writeJSON(w, http.StatusOK, webhookpkg.VPCheckResponse{Success: false, Error: userFacingError(account.ErrUnknownAccount)})
		return
	}
	writeJSON(w, http.StatusOK, webhookpkg.VPCheckResponse{Success: true, GrowID: linked.GrowID, TotalVP: linked.Balance})
}

func (s *HTTPServer) handleVPSpend(w http.ResponseWriter, r *http.Request) {
	var req webhookpkg.VPSpendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusOK, webhookpkg.VPSpendResponse{Success: false, Error: "amount must be positive"})
		return
	}
	total, err := s.store.Spend(r.Context(), req.GrowID, req.Amount)
	if err != nil {
		if errors.Is(err, account.ErrInsufficientBalance) || errors.Is(err, account.ErrUnknownAccount) {
			writeJSON(w, http.StatusOK, webhookpkg.VPSpendResponse{Success: false, TotalVP: total, Error: userFacingError(err)})
			return
		}
		slog.Error("vp spend failed", "error", err, "grow_id", req.GrowID, "amount", req.Amount)
		writeJSON(w, http.StatusOK, webhookpkg.VPSpendResponse{Success: false, Error: "internal error"})
		return
	}
	slog.Info("vp spent", "grow_id", req.GrowID, "amount", req.Amount, "total", total)
	writeJSON(w, http.StatusOK, webhookpkg.VPSpendResponse{Success: true, TotalVP: total})
}

func (s *HTTPServer) handleGemsCheck(w http.ResponseWriter, r *http.Request) {
	var req webhookpkg.GemsCheckRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount < 0 {
		writeJSON(w, http.StatusOK, webhookpkg.GemsCheckResponse{Success: false, Error: "amount must not be negative"})
		return
	}
	boosted, err := s.boosts.BoostActive(r.Context(), req.GrowID)
	if err != nil {
		slog.Error("gems check failed", "error", err, "grow_id", req.GrowID)
		writeJSON(w, http.StatusOK, webhookpkg.GemsCheckResponse{Success: false, Error: "internal error"})
		return
	}
	resp := webhookpkg.GemsCheckResponse{
		Success:    true,
		Boosted:    boosted,
		Multiplier: 1,
		Total:      req.Amount,
	}
	if boosted {
		resp.Multiplier = s.multiplier
		resp.Bonus = int64(float64(req.Amount) * (s.multiplier - 1))
		resp.Total = req.Amount + resp.Bonus
	}
	writeJSON(w, http.StatusOK, resp)
}

func userFacingError(err error) string {
	switch {
	case errors.Is(err, account.ErrAccountAlreadyLinked):
		return "account is already linked"
	case errors.Is(err, account.ErrUserAlreadyLinked):
		return "discord user is already linked"
	case errors.Is(err, account.ErrInvalidOrExpiredCode):
		return "invalid or expired code"
	case errors.Is(err, account.ErrUnknownAccount):
		return "unknown account"
	case errors.Is(err, account.ErrInsufficientBalance):
		return "insufficient balance"
	default:
		return "internal error"
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, webhookpkg.LinkResponse{Success: false, Error: fmt.Sprintf("malformed request body: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode webhook response", "error", err)
	}
}
