package main

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testApp() *application {
	return &application{
		errorLog:   log.New(io.Discard, "", 0),
		infoLog:    log.New(io.Discard, "", 0),
		signingKey: "secret",
		accessTTL:  time.Hour,
	}
}

func gatedRequest(t *testing.T, app *application, requiredRole, tokenRole string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if id, ok := r.Context().Value("user_id").(int64); !ok || id != 7 {
			t.Fatalf("user_id not set in context: %v", r.Context().Value("user_id"))
		}
	})

	token, err := app.generateAccessToken(7, tokenRole)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/order/1/cancel", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	app.JWTMiddleware(next, requiredRole).ServeHTTP(w, r)
	return w, reached
}

func TestStoreChainRejectsCustomerToken(t *testing.T) {
	app := testApp()

	w, reached := gatedRequest(t, app, "store", "customer")
	if reached {
		t.Fatal("customer token must not reach a store-gated handler")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestStoreChainAllowsStoreToken(t *testing.T) {
	app := testApp()

	w, reached := gatedRequest(t, app, "store", "store")
	if !reached {
		t.Fatalf("store token rejected: %d %s", w.Code, w.Body.String())
	}
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestStoreChainAllowsAdminToken(t *testing.T) {
	app := testApp()

	if _, reached := gatedRequest(t, app, "store", "admin"); !reached {
		t.Fatal("admin token must pass store-gated routes")
	}
}

func TestMissingTokenUnauthorized(t *testing.T) {
	app := testApp()

	r := httptest.NewRequest(http.MethodGet, "/order/mine", nil)
	w := httptest.NewRecorder()
	app.JWTMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without credentials")
	}), "customer").ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
