package hal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteResource(t *testing.T) {
	w := httptest.NewRecorder()
	r := NewResource("/health").Prop("status", "UP").Build()

	if err := WriteResource(w, http.StatusOK, r); err != nil {
		t.Fatalf("WriteResource: %v", err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != ContentType {
		t.Errorf("Content-Type = %s, want %s", ct, ContentType)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["status"] != "UP" {
		t.Errorf("status = %v, want UP", body["status"])
	}
	links, ok := body["_links"].(map[string]any)
	if !ok {
		t.Fatalf("_links missing: %v", body)
	}
	self := links["self"].(map[string]any)
	if self["href"] != "/health" {
		t.Errorf("self.href = %v, want /health", self["href"])
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	if err := WriteJSON(w, http.StatusOK, []string{"a", "b"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if ct := w.Header().Get("Content-Type"); ct != JSONContentType {
		t.Errorf("Content-Type = %s, want %s", ct, JSONContentType)
	}
	if got := w.Body.String(); got != "[\"a\",\"b\"]\n" {
		t.Errorf("body = %q", got)
	}
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteJSON(w, http.StatusOK, make(chan int))
	if err == nil {
		t.Fatal("expected encode error")
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", w.Code)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"plain error", errors.New("boom"), 500, "internal_error"},
		{"not found", NotFound(errors.New("no such key")), 404, "not_found"},
		{"wrapped status", fmt.Errorf("lookup: %w", &StatusError{Status: 503, Err: errors.New("down")}), 503, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := WriteErrorFromGo(w, "/env/x", tt.err); err != nil {
				t.Fatalf("WriteErrorFromGo: %v", err)
			}

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}
			var e Error
			if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if e.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", e.Code, tt.wantCode)
			}
			if e.Path != "/env/x" {
				t.Errorf("Path = %s, want /env/x", e.Path)
			}
		})
	}
}

func TestWriteError_ZeroStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, Error{Code: "x"})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", w.Code)
	}
}
