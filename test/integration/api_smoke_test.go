package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ivanholub/giveline/backend/internal/app/apiapp"
	"github.com/ivanholub/giveline/backend/internal/config"
	"github.com/ivanholub/giveline/backend/internal/domain/enums"
	authsvc "github.com/ivanholub/giveline/backend/internal/services/auth"
)

// newSmokeApp starts the app against default config with no backing
// services. The blank s3 endpoint keeps startup off the network; the
// postgres pool and redis client are created lazily and never dialed.
func newSmokeApp(t *testing.T) *apiapp.App {
	t.Helper()

	cfg := config.Default()
	cfg.HTTP.Addr = ":0"
	cfg.S3.Endpoint = ""

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	return app
}

func TestHealthz(t *testing.T) {
	ts := httptest.NewServer(newSmokeApp(t).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestItemsRequireAuthentication(t *testing.T) {
	ts := httptest.NewServer(newSmokeApp(t).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/items")
	if err != nil {
		t.Fatalf("get items: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthenticatedRequestReachesValidation(t *testing.T) {
	cfg := config.Default()
	ts := httptest.NewServer(newSmokeApp(t).Handler())
	defer ts.Close()

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	token, _, err := jwtManager.GenerateAccessToken("rev-1", enums.RoleSupport, "Ana")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/v1/items/not-a-uuid", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
