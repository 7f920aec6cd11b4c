package economy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	economypkg "github.com/gtpscloud/rewardsbot/internal/economy"
)

// RemoteService relays reward grants to the game server's HTTP API. Every
// transport, status or decode failure surfaces as a plain error; callers treat
// it as "this occupant's grant failed this tick" and never retry.
type RemoteService struct {
	baseURL string
	client  *http.Client
}

func NewRemoteService(baseURL string, timeout time.Duration) *RemoteService {
	return &RemoteService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	GrowID  string `json:"growId"`
	TotalVP int64  `json:"totalVp"`
}

func (s *RemoteService) GrantCurrency(ctx context.Context, growID string, amount int64) (int64, error) {
	resp, err := s.post(ctx, "/api/rewards/vp", map[string]any{
		"growId": growID,
		"amount": amount,
	})
	if err != nil {
		return 0, err
	}
	return resp.TotalVP, nil
}

func (s *RemoteService) GrantBoost(ctx context.Context, growID string, multiplier float64, duration time.Duration) error {
	_, err := s.post(ctx, "/api/rewards/gems", map[string]any{
		"growId":          growID,
		"multiplier":      multiplier,
		"durationSeconds": int64(duration.Seconds()),
	})
	return err
}

func (s *RemoteService) LookupAccount(ctx context.Context, growID string) (*economypkg.Account, error) {
	resp, err := s.post(ctx, "/api/accounts/lookup", map[string]any{
		"growId": growID,
	})
	if err != nil {
		return nil, err
	}
	return &economypkg.Account{GrowID: resp.GrowID, TotalVP: resp.TotalVP}, nil
}

func (s *RemoteService) post(ctx context.Context, path string, payload map[string]any) (*apiResponse, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return nil, fmt.Errorf("game api returned status %d", resp.StatusCode)
	}
	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("game api returned malformed body: %w", err)
	}
	if !decoded.Success {
		if decoded.Error == "" {
			decoded.Error = "unknown error"
		}
		return nil, fmt.Errorf("game api error: %s", decoded.Error)
	}
	return &decoded, nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
