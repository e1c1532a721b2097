package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	good, _ := ts.Generate("alice")

	tests := []struct {
		name        string
		header      string
		wantUser    string
		wantHasUser bool
	}{
		{"valid bearer", "Bearer " + good, "alice", true},
		{"lowercase scheme", "bearer " + good, "alice", true},
		{"no header", "", "", false},
		{"wrong scheme", "Basic " + good, "", false},
		{"invalid token", "Bearer nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			var gotOK bool
			h := OptionalAuth(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, gotOK = UsernameFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusNoContent, rr.Code, "the request always continues")
			assert.Equal(t, tt.wantHasUser, gotOK)
			assert.Equal(t, tt.wantUser, gotUser)
		})
	}
}
