package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catalogo-ips/registration-gateway/internal/infra/observability"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_LevelFollowsStatusClass(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	mw := observability.RequestLogger(zap.New(core))

	cases := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusBadRequest, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tc := range cases {
		h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{}`))
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", nil))
	}

	entries := logs.All()
	if len(entries) != len(cases) {
		t.Fatalf("expected %d log entries, got %d", len(cases), len(entries))
	}
	for i, tc := range cases {
		if entries[i].Level != tc.level {
			t.Errorf("status %d: expected level %s, got %s", tc.status, tc.level, entries[i].Level)
		}
		fields := entries[i].ContextMap()
		if fields["status"] != int64(tc.status) {
			t.Errorf("expected status field %d, got %v", tc.status, fields["status"])
		}
		if fields["method"] != http.MethodPost {
			t.Errorf("expected method field POST, got %v", fields["method"])
		}
		if fields["path"] != "/auth/register" {
			t.Errorf("expected path field /auth/register, got %v", fields["path"])
		}
		if fields["bytes"] != int64(2) {
			t.Errorf("expected bytes field 2, got %v", fields["bytes"])
		}
	}
}

func TestNewLogger_Levels(t *testing.T) {
	info := observability.NewLogger("info")
	if info.Core().Enabled(zapcore.DebugLevel) {
		t.Error("info logger must not enable debug")
	}

	debug := observability.NewLogger("debug")
	if !debug.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger must enable debug")
	}
}
