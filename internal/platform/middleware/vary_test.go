package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVaryAddsAccept(t *testing.T) {
	h := Vary()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	values := resp.Header().Values("Vary")
	if len(values) != 2 || values[0] != "Accept" || values[1] != "Origin" {
		t.Fatalf("expected Vary [Accept Origin], got %v", values)
	}
}
