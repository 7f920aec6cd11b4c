package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	accountimpl "github.com/gtpscloud/rewardsbot/external/account"
	accountpkg "github.com/gtpscloud/rewardsbot/internal/account"
	webhookpkg "github.com/gtpscloud/rewardsbot/internal/webhook"
)

type stubBoostStatus struct {
	activeGrowIDs map[string]bool
}

func (s *stubBoostStatus) BoostActive(_ context.Context, growID string) (bool, error) {
	return s.activeGrowIDs[growID], nil
}

func newTestServer(secret string, boosts *stubBoostStatus) (*HTTPServer, accountpkg.Store) {
	store := accountimpl.NewMemoryStore(5 * time.Minute)
	if boosts == nil {
		boosts = &stubBoostStatus{}
	}
	return NewHTTPServer(":0", secret, 1.05, store, boosts), store
}

func postJSON(t *testing.T, handler http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func linkAccount(t *testing.T, store accountpkg.Store, growID, code, discordID string) {
	t.Helper()
	ctx := context.Background()
	if err := store.RegisterPendingLink(ctx, growID, code); err != nil {
		t.Fatalf("failed to register pending link: %v", err)
	}
	if _, err := store.ConsumeCode(ctx, code, discordID); err != nil {
		t.Fatalf("failed to consume code: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer("", nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "OK" {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestHandleLink_RegistersPendingCode(t *testing.T) {
	server, store := newTestServer("", nil)

	rec := postJSON(t, server.Handler(), "/link", webhookpkg.LinkRequest{GrowID: "GrowID1", Code: "ABC123"}, nil)

	var resp webhookpkg.LinkResponse
	decodeResponse(t, rec, &resp)
	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if _, err := store.ConsumeCode(context.Background(), "ABC123", "user-1"); err != nil {
		t.Fatalf("expected code consumable, got %v", err)
	}
}

func TestHandleLink_AlreadyLinked(t *testing.T) {
	server, store := newTestServer("", nil)
	linkAccount(t, store, "GrowID1", "ABC123", "user-1")

	rec := postJSON(t, server.Handler(), "/link", webhookpkg.LinkRequest{GrowID: "GrowID1", Code: "XYZ999"}, nil)

	var resp webhookpkg.LinkResponse
	decodeResponse(t, rec, &resp)
	if resp.Success || resp.Error != "account is already linked" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleLink_MissingFields(t *testing.T) {
	server, _ := newTestServer("", nil)

	rec := postJSON(t, server.Handler(), "/link", webhookpkg.LinkRequest{GrowID: "GrowID1"}, nil)

	var resp webhookpkg.LinkResponse
	decodeResponse(t, rec, &resp)
	if resp.Success {
		t.Fatal("expected failure for missing code")
	}
}

func TestHandleLink_MalformedBody(t *testing.T) {
	server, _ := newTestServer("", nil)
	req := httptest.NewRequest(http.MethodPost, "/link", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestHandleVPCheck(t *testing.T) {
	server, store := newTestServer("", nil)
	linkAccount(t, store, "GrowID1", "ABC123", "user-1")
	if _, err := store.Deposit(context.Background(), "GrowID1", 40); err != nil {
		t.Fatalf("failed to deposit: %v", err)
	}

	rec := postJSON(t, server.Handler(), "/vp/check", webhookpkg.VPCheckRequest{GrowID: "GrowID1"}, nil)

	var resp webhookpkg.VPCheckResponse
	decodeResponse(t, rec, &resp)
	if !resp.Success || resp.TotalVP != 40 || resp.GrowID != "GrowID1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleVPCheck_UnknownAccount(t *testing.T) {
	server, _ := newTestServer("", nil)

	rec := postJSON(t, server.Handler(), "/vp/check", webhookpkg.VPCheckRequest{GrowID: "GrowIDX"}, nil)

	var resp webhookpkg.VPCheckResponse
	decodeResponse(t, rec, &resp)
	if resp.Success || resp.Error != "unknown account" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleVPSpend(t *testing.T) {
	server, store := newTestServer("", nil)
	linkAccount(t, store, "GrowID1", "ABC123", "user-1")
	if _, err := store.Deposit(context.Background(), "GrowID1", 40); err != nil {
		t.Fatalf("failed to deposit: %v", err)
	}

	rec := postJSON(t, server.Handler(), "/vp/spend", webhookpkg.VPSpendRequest{GrowID: "GrowID1", Amount: 15}, nil)

	var resp webhookpkg.VPSpendResponse
	decodeResponse(t, rec, &resp)
	if !resp.Success || resp.TotalVP != 25 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleVPSpend_InsufficientBalance(t *testing.T) {
	server, store := newTestServer("", nil)
	linkAccount(t, store, "GrowID1", "ABC123", "user-1")
	if _, err := store.Deposit(context.Background(), "GrowID1", 10); err != nil {
		t.Fatalf("failed to deposit: %v", err)
	}

	rec := postJSON(t, server.Handler(), "/vp/spend", webhookpkg.VPSpendRequest{GrowID: "GrowID1", Amount: 25}, nil)

	var resp webhookpkg.VPSpendResponse
	decodeResponse(t, rec, &resp)
	if resp.Success || resp.Error != "insufficient balance" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	linked, err := store.Lookup(context.Background(), "GrowID1")
	if err != nil {
		t.Fatalf("failed to look up account: %v", err)
	}
	if linked.Balance != 10 {
		t.Fatalf("expected balance unchanged at 10, got %d", linked.Balance)
	}
}

func TestHandleVPSpend_NonPositiveAmount(t *testing.T) {
	server, store := newTestServer("", nil)
	linkAccount(t, store, "GrowID1", "ABC123", "user-1")

	rec := postJSON(t, server.Handler(), "/vp/spend", webhookpkg.VPSpendRequest{GrowID: "GrowID1", Amount: 0}, nil)

	var resp webhookpkg.VPSpendResponse
	decodeResponse(t, rec, &resp)
	if resp.Success {
		t.Fatal("expected failure for non-positive amount")
	}
}

func TestHandleGemsCheck_Boosted(t *testing.T) {
	boosts := &stubBoostStatus{activeGrowIDs: map[string]bool{"GrowID1": true}}
	server, _ := newTestServer("", boosts)

	rec := postJSON(t, server.Handler(), "/gems/check", webhookpkg.GemsCheckRequest{GrowID: "GrowID1", Amount: 100}, nil)

	var resp webhookpkg.GemsCheckResponse
	decodeResponse(t, rec, &resp)
	if !resp.Success || !resp.Boosted {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Multiplier != 1.05 || resp.Bonus != 5 || resp.Total != 105 {
		t.Fatalf("unexpected bonus computation: %+v", resp)
	}
}

func TestHandleGemsCheck_NotBoosted(t *testing.T) {
	server, _ := newTestServer("", nil)

	rec := postJSON(t, server.Handler(), "/gems/check", webhookpkg.GemsCheckRequest{GrowID: "GrowID1", Amount: 100}, nil)

	var resp webhookpkg.GemsCheckResponse
	decodeResponse(t, rec, &resp)
	if !resp.Success || resp.Boosted {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Bonus != 0 || resp.Total != 100 || resp.Multiplier != 1 {
		t.Fatalf("unexpected bonus computation: %+v", resp)
	}
}

func TestWebhookSecret_RejectsMissingOrWrongSecret(t *testing.T) {
	server, _ := newTestServer("hunter2", nil)

	rec := postJSON(t, server.Handler(), "/vp/check", webhookpkg.VPCheckRequest{GrowID: "GrowID1"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", rec.Code)
	}

	rec = postJSON(t, server.Handler(), "/vp/check", webhookpkg.VPCheckRequest{GrowID: "GrowID1"},
		map[string]string{"X-Webhook-Secret": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong secret, got %d", rec.Code)
	}

	rec = postJSON(t, server.Handler(), "/vp/check", webhookpkg.VPCheckRequest{GrowID: "GrowID1"},
		map[string]string{"X-Webhook-Secret": "hunter2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with correct secret, got %d", rec.Code)
	}
}

func TestWebhookSecret_HealthStaysOpen(t *testing.T) {
	server, _ := newTestServer("hunter2", nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected health endpoint open, got %d", rec.Code)
	}
}
