package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONEndpoint_Post(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		detail     func([]byte) string
		wantDetail string
		wantErr    bool
	}{
		{"ok", http.StatusOK, `{"value": "hi"}`, nil, "", false},
		{"detail extracted", http.StatusBadRequest, `{"msg": "bad"}`, func([]byte) string { return "bad" }, "bad", true},
		{"raw body quoted", http.StatusBadGateway, "  upstream down \n", nil, "upstream down", true},
		{"empty detail falls back", http.StatusBadGateway, "oops", func([]byte) string { return "" }, "oops", true},
		{"oversized body truncated", http.StatusInternalServerError, strings.Repeat("x", maxErrorBody+10), nil, strings.Repeat("x", maxErrorBody) + "...", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
				}
				if r.Header.Get("X-Token") != "secret" {
					t.Errorf("Expected extra header to be sent")
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			header := http.Header{}
			header.Set("X-Token", "secret")
			endpoint := jsonEndpoint{client: server.Client(), url: server.URL, header: header, detail: tt.detail}

			var out struct {
				Value string `json:"value"`
			}
			err := endpoint.post(context.Background(), map[string]string{"q": "x"}, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if !tt.wantErr {
				if out.Value != "hi" {
					t.Errorf("Expected decoded value, got %q", out.Value)
				}
				return
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *APIError, got %T", err)
			}
			if apiErr.Status != tt.status || apiErr.Detail != tt.wantDetail {
				t.Errorf("Expected %d %q, got %d %q", tt.status, tt.wantDetail, apiErr.Status, apiErr.Detail)
			}
		})
	}
}

func TestReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	if !reachable(context.Background(), server.Client(), server.URL+"/up") {
		t.Error("Expected /up to be reachable")
	}
	if reachable(context.Background(), server.Client(), server.URL+"/down") {
		t.Error("Expected /down to be unreachable")
	}
	if reachable(context.Background(), server.Client(), "http://127.0.0.1:1/") {
		t.Error("Expected closed port to be unreachable")
	}
}
