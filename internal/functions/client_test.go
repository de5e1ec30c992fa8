package functions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSource(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		want       string
		wantStatus int
		wantMsg    string
	}{
		{name: "signed url", status: 200, body: `{"signed_url":"wss://x"}`, want: "wss://x"},
		{name: "no url no error", status: 200, body: `{}`, want: ""},
		{name: "error body", status: 500, body: `{"error":"ElevenLabs is down"}`, wantStatus: 500, wantMsg: "ElevenLabs is down"},
		{name: "message body", status: 429, body: `{"message":"slow down"}`, wantStatus: 429, wantMsg: "slow down"},
		{name: "bare failure", status: 502, body: ``, wantStatus: 502, wantMsg: "502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/functions/v1/"+TokenFunction, r.URL.Path)
				assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
				assert.Equal(t, "anon", r.Header.Get("apikey"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			src := NewSignedURLSource(NewClient(srv.URL, "anon", time.Second, logger.NewNop()))
			got, err := src.FetchSignedURL(context.Background())

			switch {
			case tt.wantStatus != 0:
				var fe *FunctionError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, tt.wantStatus, fe.Status)
				assert.Contains(t, fe.Error(), tt.wantMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestInvoke_UnreachableHost(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", 200*time.Millisecond, logger.NewNop())
	err := c.Invoke(context.Background(), "anything", map[string]string{"a": "b"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoking anything")
}
