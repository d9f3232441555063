package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestRegisterLoginProtectedScenario(t *testing.T) {
	env := newTestEnv(t)
	h := env.api.Handler()

	rr := doJSON(t, h, http.MethodPost, "/api/register",
		map[string]string{"name": "Alice", "email": "a@x.com", "password": "pw1"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, http.MethodPost, "/api/login",
		map[string]string{"email": "a@x.com", "password": "pw1"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	token, _ := decodeBody(t, rr)["token"].(string)
	if token == "" {
		t.Fatal("login response must contain a token")
	}

	// Protected resource with a valid bearer token.
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+token)
	rr = doJSON(t, h, http.MethodGet, "/api/transactions", nil, hdr)
	if rr.Code != http.StatusOK {
		t.Fatalf("list with token: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	// No header at all.
	rr = doJSON(t, h, http.MethodGet, "/api/transactions", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no header: expected 401, got %d", rr.Code)
	}
	if got := decodeBody(t, rr)["error"]; got != msgNoToken {
		t.Fatalf("no header: expected %q, got %v", msgNoToken, got)
	}

	// Garbage token.
	hdr = http.Header{}
	hdr.Set("Authorization", "Bearer garbage")
	rr = doJSON(t, h, http.MethodGet, "/api/transactions", nil, hdr)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rr.Code)
	}
	if got := decodeBody(t, rr)["error"]; got != msgTokenInvalid {
		t.Fatalf("garbage token: expected %q, got %v", msgTokenInvalid, got)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	h := env.api.Handler()

	body := map[string]string{"name": "Alice", "email": "a@x.com", "password": "pw1"}
	if rr := doJSON(t, h, http.MethodPost, "/api/register", body, nil); rr.Code != http.StatusOK {
		t.Fatalf("first register: expected 200, got %d", rr.Code)
	}
	rr := doJSON(t, h, http.MethodPost, "/api/register", body, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", rr.Code)
	}
	if got := decodeBody(t, rr)["error"]; got != "User already exists" {
		t.Fatalf("unexpected message: %v", got)
	}
	if len(env.users.users) != 1 {
		t.Fatalf("store must retain exactly one record, has %d", len(env.users.users))
	}
}

func TestLoginInvalidCredentialsAreUniform(t *testing.T) {
	env := newTestEnv(t)
	h := env.api.Handler()

	doJSON(t, h, http.MethodPost, "/api/register",
		map[string]string{"name": "Alice", "email": "a@x.com", "password": "pw1"}, nil)

	wrongPW := doJSON(t, h, http.MethodPost, "/api/login",
		map[string]string{"email": "a@x.com", "password": "wrongpw"}, nil)
	unknown := doJSON(t, h, http.MethodPost, "/api/login",
		map[string]string{"email": "nobody@x.com", "password": "anything"}, nil)

	for name, rr := range map[string]*httptest.ResponseRecorder{"wrong password": wrongPW, "unknown email": unknown} {
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rr.Code)
		}
		if got := decodeBody(t, rr)["error"]; got != "Invalid Credentials" {
			t.Fatalf("%s: expected \"Invalid Credentials\", got %v", name, got)
		}
	}
}

func TestForgotAndResetPasswordFlow(t *testing.T) {
	env := newTestEnv(t)
	h := env.api.Handler()

	doJSON(t, h, http.MethodPost, "/api/register",
		map[string]string{"name": "Alice", "email": "a@x.com", "password": "pw1"}, nil)

	rr := doJSON(t, h, http.MethodPost, "/api/forgot-password",
		map[string]string{"email": "a@x.com"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("forgot: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	token := env.mailer.lastToken(t)

	rr = doJSON(t, h, http.MethodPost, "/api/reset-password/"+token,
		map[string]string{"password": "newpw"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	// New password works, old one does not.
	if rr := doJSON(t, h, http.MethodPost, "/api/login",
		map[string]string{"email": "a@x.com", "password": "newpw"}, nil); rr.Code != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", rr.Code)
	}
	if rr := doJSON(t, h, http.MethodPost, "/api/login",
		map[string]string{"email": "a@x.com", "password": "pw1"}, nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("login with old password: expected 400, got %d", rr.Code)
	}

	// The token was consumed.
	rr = doJSON(t, h, http.MethodPost, "/api/reset-password/"+token,
		map[string]string{"password": "again"}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("replayed reset: expected 400, got %d", rr.Code)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	rr := doJSON(t, env.api.Handler(), http.MethodPost, "/api/forgot-password",
		map[string]string{"email": "nobody@x.com"}, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestForgotPasswordMailFailureIsDistinct500(t *testing.T) {
	env := newTestEnv(t)
	h := env.api.Handler()

	doJSON(t, h, http.MethodPost, "/api/register",
		map[string]string{"name": "Alice", "email": "a@x.com", "password": "pw1"}, nil)

	env.mailer.mu.Lock()
	env.mailer.err = errSMTPDown
	env.mailer.mu.Unlock()

	rr := doJSON(t, h, http.MethodPost, "/api/forgot-password",
		map[string]string{"email": "a@x.com"}, nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if got := decodeBody(t, rr)["error"]; got != "Failed to send reset email" {
		t.Fatalf("expected the mail-specific message, got %v", got)
	}
}

func TestRegisterRejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t)
	rr := doJSON(t, env.api.Handler(), http.MethodPost, "/api/register",
		map[string]any{"name": "Alice", "email": "a@x.com", "password": "pw1", "admin": true}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rr.Code)
	}
}
