package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	logpkg "github.com/kailas-cloud/srdex/internal/logger"
)

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/spells", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "internal_error" {
		t.Errorf("body = %v", body)
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	var ctxLogger *zap.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logpkg.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	h := chiMiddleware.RequestID(wideEventMiddleware(zap.New(core))(inner))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/spells?level=1", http.NoBody))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
	if ctxLogger == nil {
		t.Fatal("request logger not stored in context")
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("http_request lines = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status field = %v", fields["status"])
	}
	if fields["query"] != "level=1" {
		t.Errorf("query field = %v", fields["query"])
	}
	if id, _ := fields["request_id"].(string); id == "" {
		t.Error("request_id field missing")
	}
}
