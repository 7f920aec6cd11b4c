package webhook

import "context"

// Request and response bodies of the inbound surface the game server calls.

type LinkRequest struct {
	GrowID string `json:"growId"`
	Code   string `json:"code"`
}

type LinkResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type VPCheckRequest struct {
	GrowID string `json:"growId"`
}

type VPCheckResponse struct {
	Success bool   `json:"success"`
	GrowID  string `json:"growId,omitempty"`
	TotalVP int64  `json:"totalVp"`
	Error   string `json:"error,omitempty"`
}

type VPSpendRequest struct {
	GrowID string `json:"growId"`
	Amount int64  `json:"amount"`
}

type VPSpendResponse struct {
	Success bool   `json:"success"`
	TotalVP int64  `json:"totalVp"`
	Error   string `json:"error,omitempty"`
}

type GemsCheckRequest struct {
	GrowID string `json:"growId"`
	Amount int64  `json:"amount"`
}

type GemsCheckResponse struct {
	Success    bool    `json:"success"`
	Boosted    bool    `json:"boosted"`
	Multiplier float64 `json:"multiplier"`
	Bonus      int64   `json:"bonus"`
	Total      int64   `json:"total"`
	Error      string  `json:"error,omitempty"`
}

// BoostStatus reports whether a linked account currently holds an active gems
// boost. Derived purely from voice-channel presence.
type BoostStatus interface {
	BoostActive(ctx context.Context, growID string) (bool, error)
}

type Server interface {
	Start() error
	Shutdown(ctx context.Context) error
}
