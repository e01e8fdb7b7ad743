package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		preflight  bool
		wantOrigin string
		wantStatus int
	}{
		{name: "listed origin", allowed: []string{"http://localhost:5173/"}, origin: "http://localhost:5173", method: http.MethodGet, wantOrigin: "http://localhost:5173", wantStatus: http.StatusOK},
		{name: "unlisted origin", allowed: []string{"http://localhost:5173"}, origin: "https://evil.test", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://any.test", method: http.MethodGet, wantOrigin: "*", wantStatus: http.StatusOK},
		{name: "preflight", allowed: []string{"http://localhost:5173"}, origin: "http://localhost:5173", method: http.MethodOptions, preflight: true, wantOrigin: "http://localhost:5173", wantStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/history", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			CORS(tt.allowed)(next).ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}
