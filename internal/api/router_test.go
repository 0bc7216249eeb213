package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/potluckhq/potluck/internal/auth"
	"github.com/potluckhq/potluck/internal/service"
	"github.com/potluckhq/potluck/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret-key-0123456789abcdef", time.Hour)
	groups := service.NewGroupService(store, nil, nil)
	server := NewServer(
		service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store),
		groups,
		service.NewContributionService(store, nil, nil),
		service.NewWalletService(store, nil, nil),
		service.NewInsightService(store, groups),
	)

	ts := httptest.NewServer(server.Router(jwtManager))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func register(t *testing.T, ts *httptest.Server, name string) (userID, token string) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]any{
		"email":    name + "@example.com",
		"name":     name,
		"password": "correct horse",
		"birthday": "1990-06-15",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201 (body %v)", resp.StatusCode, body)
	}
	user := body["user"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

func TestContributionFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := register(t, ts, "admin")
	aliceID, aliceToken := register(t, ts, "alice")

	resp, group := doJSON(t, http.MethodPost, ts.URL+"/api/groups", adminToken, map[string]any{
		"name":         "Coffee fund",
		"type":         "subscription",
		"currency":     "EUR",
		"amount_cents": 500,
		"frequency":    "monthly",
		"deadline_day": 5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create group status = %d (body %v)", resp.StatusCode, group)
	}
	groupID := group["id"].(string)

	if resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/groups/"+groupID+"/join", aliceToken, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("join status = %d (body %v)", resp.StatusCode, body)
	}
	if resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/groups/"+groupID+"/members/"+aliceID+"/approve", adminToken, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("approve status = %d (body %v)", resp.StatusCode, body)
	}

	resp, contribution := doJSON(t, http.MethodPost, ts.URL+"/api/groups/"+groupID+"/contributions", aliceToken, map[string]any{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("markPaid status = %d (body %v)", resp.StatusCode, contribution)
	}
	if contribution["status"] != "paid" {
		t.Errorf("contribution status = %v, want paid", contribution["status"])
	}
	contributionID := contribution["id"].(string)

	t.Run("confirm by a non-receiver is 403", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/contributions/"+contributionID+"/confirm", aliceToken, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
	})

	t.Run("receiver confirm settles", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/contributions/"+contributionID+"/confirm", adminToken, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d (body %v)", resp.StatusCode, body)
		}
		if body["status"] != "confirmed" {
			t.Errorf("contribution status = %v, want confirmed", body["status"])
		}

		resp, wallet := doJSON(t, http.MethodGet, ts.URL+"/api/wallet?currency=EUR", adminToken, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("wallet status = %d", resp.StatusCode)
		}
		if wallet["balance_cents"].(float64) != 500 {
			t.Errorf("balance = %v, want 500", wallet["balance_cents"])
		}
	})

	t.Run("double confirm is 422", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/contributions/"+contributionID+"/confirm", adminToken, nil)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
	})

	t.Run("unknown group is 404", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/groups/nope/contributions", aliceToken, map[string]any{})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("missing token is 401", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/groups", "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})
}

func TestInsightEndpointsPinnedDate(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := register(t, ts, "admin")

	resp, group := doJSON(t, http.MethodPost, ts.URL+"/api/groups", adminToken, map[string]any{
		"name":         "Coffee fund",
		"type":         "subscription",
		"currency":     "EUR",
		"amount_cents": 500,
		"frequency":    "monthly",
		"deadline_day": 5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create group status = %d", resp.StatusCode)
	}
	groupID := group["id"].(string)

	t.Run("health with a pinned as_of", func(t *testing.T) {
		resp, score := doJSON(t, http.MethodGet, ts.URL+"/api/groups/"+groupID+"/health?as_of=2099-01-10", adminToken, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d (body %v)", resp.StatusCode, score)
		}
		if _, ok := score["score"]; !ok {
			t.Errorf("response %v missing score", score)
		}
	})

	t.Run("malformed as_of is 400", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/groups/"+groupID+"/health?as_of=tomorrow", adminToken, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("reliability reflects history", func(t *testing.T) {
		resp, score := doJSON(t, http.MethodGet, ts.URL+"/api/me/reliability", adminToken, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if score["score"].(float64) > 100 || score["score"].(float64) < 0 {
			t.Errorf("score = %v out of bounds", score["score"])
		}
	})
}
