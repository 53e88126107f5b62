package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggingRecordsStatusAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	line := buf.String()
	if !strings.Contains(line, `"msg":"http_request"`) {
		t.Fatalf("log line missing message: %s", line)
	}
	if !strings.Contains(line, `"status":200`) || !strings.Contains(line, `"level":"INFO"`) {
		t.Fatalf("unexpected success log: %s", line)
	}

	buf.Reset()
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	line = buf.String()
	if !strings.Contains(line, `"status":500`) || !strings.Contains(line, `"level":"ERROR"`) {
		t.Fatalf("unexpected error log: %s", line)
	}
	if !strings.Contains(line, `"path":"/boom"`) {
		t.Fatalf("log line missing path: %s", line)
	}
}

func TestLoggingNilLoggerFallsBack(t *testing.T) {
	handler := Logging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
}
