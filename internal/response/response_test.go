package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/pkg/helpers"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

func newTestRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
}

func TestHandleErrorMapping(t *testing.T) {
	h := New(slog.New(logger.NewTestHandler(slog.LevelInfo)))

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errs.NewNotFoundError("no cloud backup"), http.StatusNotFound, "not_found"},
		{"validation", errs.NewValidationError("bad skip"), http.StatusBadRequest, "invalid_input"},
		{"malformed backup", errs.NewMalformedBackupError("missing version", nil), http.StatusBadRequest, "invalid_backup"},
		{"cloud unavailable", errs.NewCloudUnavailableError(), http.StatusServiceUnavailable, "cloud_unavailable"},
		{"database", errs.NewDatabaseError("read", "boom", errors.New("io")), http.StatusInternalServerError, "internal_error"},
		{"transient upstream", errs.NewExternalServiceError("neko-api", "down", 503, nil), http.StatusServiceUnavailable, "service_unavailable"},
		{"permanent upstream", errs.NewExternalServiceError("neko-api", "rejected", 400, nil), http.StatusBadGateway, "service_unavailable"},
		{"encryption", errs.NewEncryptionError("bad key", nil), http.StatusInternalServerError, "internal_error"},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleError(rec, newTestRequest(), tt.err)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if body.Code != tt.code {
				t.Fatalf("expected code %q, got %q", tt.code, body.Code)
			}
		})
	}
}

func TestWriteSuccessEnvelope(t *testing.T) {
	h := New(slog.New(logger.NewTestHandler(slog.LevelInfo)))
	rec := httptest.NewRecorder()

	h.WriteSuccess(rec, newTestRequest(), http.StatusCreated, map[string]int{"accounts": 2})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var body struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !body.Success || body.Data["accounts"] != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestWriteAttachment(t *testing.T) {
	h := New(slog.New(logger.NewTestHandler(slog.LevelInfo)))
	rec := httptest.NewRecorder()

	h.WriteAttachment(rec, newTestRequest(), "neko-finance-backup-2025-01-02.json", []byte(`{"version":"1.1"}`))

	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="neko-finance-backup-2025-01-02.json"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Body.String() != `{"version":"1.1"}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
