package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/botyak1234/marketplace-task/database"
	"github.com/botyak1234/marketplace-task/models"
	"github.com/botyak1234/marketplace-task/routes"
	"github.com/botyak1234/marketplace-task/utils"
)

type testEnv struct {
	router *mux.Router

	admin models.User
	alice models.User
	bob   models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "api.db"))

	db, err := database.Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	admin := models.User{Username: "root", Role: models.RoleAdmin}
	alice := models.User{Username: "alice", Role: models.RoleUser}
	bob := models.User{Username: "bob", Role: models.RoleUser}
	for _, u := range []*models.User{&admin, &alice, &bob} {
		h, err := utils.HashPassword("pass1234")
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		u.Password = h
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user %s: %v", u.Username, err)
		}
	}

	return &testEnv{
		router: routes.InitRouter(db),
		admin:  admin,
		alice:  alice,
		bob:    bob,
	}
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearerFor(t *testing.T, u models.User) string {
	t.Helper()
	tok, err := utils.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + tok
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	regBody := map[string]any{"username": "newuser", "password": "pass1234"}
	w := doRequest(t, env.router, http.MethodPost, "/api/register", regBody, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", w.Code, w.Body.String())
	}

	// Same username again conflicts.
	w = doRequest(t, env.router, http.MethodPost, "/api/register", regBody, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register expected 409 got=%d body=%s", w.Code, w.Body.String())
	}

	loginBody := map[string]any{"username": "newuser", "password": "pass1234"}
	w = doRequest(t, env.router, http.MethodPost, "/api/login", loginBody, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	data, _ := resp["data"].(map[string]any)
	if data == nil || data["token"] == nil || data["token"] == "" {
		t.Fatalf("expected token in response: %v", resp)
	}

	// Wrong password and unknown username answer identically.
	w1 := doRequest(t, env.router, http.MethodPost, "/api/login", map[string]any{"username": "newuser", "password": "wrong"}, nil)
	w2 := doRequest(t, env.router, http.MethodPost, "/api/login", map[string]any{"username": "ghost", "password": "wrong"}, nil)
	if w1.Code != http.StatusUnauthorized || w2.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401 got %d/%d", w1.Code, w2.Code)
	}
	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("login failures distinguishable: %s vs %s", w1.Body.String(), w2.Body.String())
	}
}

func TestTasks_WorkflowOverHTTP(t *testing.T) {
	env := setupTestEnv(t)

	adminAuth := map[string]string{"Authorization": bearerFor(t, env.admin)}
	aliceAuth := map[string]string{"Authorization": bearerFor(t, env.alice)}
	bobAuth := map[string]string{"Authorization": bearerFor(t, env.bob)}

	create := map[string]any{"title": "Write docs", "description": "Document the API", "reward": 100}

	// Regular users cannot create tasks.
	w := doRequest(t, env.router, http.MethodPost, "/api/tasks", create, aliceAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("POST /tasks as user expected 403 got=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodPost, "/api/tasks", create, adminAuth)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /tasks status=%d body=%s", w.Code, w.Body.String())
	}
	created := decodeEnvelope(t, w)
	data, _ := created["data"].(map[string]any)
	if data == nil {
		t.Fatalf("missing task in create response: %s", w.Body.String())
	}
	taskID := fmt.Sprintf("%.0f", data["id"].(float64))

	// Alice claims it; Bob cannot claim it afterwards.
	w = doRequest(t, env.router, http.MethodPost, "/api/tasks/"+taskID+"/take", nil, aliceAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("take status=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodPost, "/api/tasks/"+taskID+"/take", nil, bobAuth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second take expected 400 got=%d body=%s", w.Code, w.Body.String())
	}

	// Bob cannot see Alice's claimed task in his listing.
	w = doRequest(t, env.router, http.MethodGet, "/api/tasks", nil, bobAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /tasks status=%d body=%s", w.Code, w.Body.String())
	}
	listResp := decodeEnvelope(t, w)
	if list, ok := listResp["data"].([]any); ok && len(list) != 0 {
		t.Fatalf("bob should see no tasks, got %d", len(list))
	}

	// Only Alice can submit.
	w = doRequest(t, env.router, http.MethodPost, "/api/tasks/"+taskID+"/submit", nil, bobAuth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("submit by non-owner expected 400 got=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodPost, "/api/tasks/"+taskID+"/submit", nil, aliceAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("submit status=%d body=%s", w.Code, w.Body.String())
	}

	// Review is admin-only.
	review := map[string]any{"status": "Approved"}
	w = doRequest(t, env.router, http.MethodPost, "/api/tasks/"+taskID+"/review", review, aliceAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("review as user expected 403 got=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodPost, "/api/tasks/"+taskID+"/review", review, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("review status=%d body=%s", w.Code, w.Body.String())
	}

	// The approval credited Alice's points with the reward.
	w = doRequest(t, env.router, http.MethodGet, "/api/me/points", nil, aliceAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /me/points status=%d body=%s", w.Code, w.Body.String())
	}
	pointsResp := decodeEnvelope(t, w)
	pdata, _ := pointsResp["data"].(map[string]any)
	if pdata == nil || pdata["points"].(float64) != 100 {
		t.Fatalf("expected 100 points, body=%s", w.Body.String())
	}

	// Status filter rejects bogus values.
	w = doRequest(t, env.router, http.MethodGet, "/api/tasks/by-status?status=bogus", nil, adminAuth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("by-status bogus expected 400 got=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodGet, "/api/tasks/by-status?status=approved", nil, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("by-status approved status=%d body=%s", w.Code, w.Body.String())
	}

	// Unauthenticated requests are rejected outright.
	w = doRequest(t, env.router, http.MethodGet, "/api/tasks", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token expected 401 got=%d", w.Code)
	}
}
