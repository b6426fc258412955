package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasicAuthMiddleware(t *testing.T) {
	handler := newBasicAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), "user", "password")

	testData := []struct {
		name     string
		path     string
		user     string
		password string
		status   int
	}{
		{"ok", "/v1/lookup/example.com", "user", "password", http.StatusNoContent},
		{"bad-password", "/v1/lookup/example.com", "user", "passwor", http.StatusUnauthorized},
		{"no-credentials", "/stats", "", "", http.StatusUnauthorized},
		{"health", "/health", "", "", http.StatusNoContent},
	}

	for _, v := range testData {
		v := v

		t.Run(v.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, v.path, nil)
			if v.user != "" {
				req.SetBasicAuth(v.user, v.password)
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, v.status, w.Code)
		})
	}
}
