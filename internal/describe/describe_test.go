package describe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	imageData := []byte("fake image bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req describeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "fig.png", req.Name)

		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		require.NoError(t, err)
		assert.Equal(t, imageData, decoded)

		json.NewEncoder(w).Encode(describeResponse{Description: "  A sailing ship at anchor  "})
	}))
	defer srv.Close()

	c := New(srv.URL)
	desc, err := c.Describe(context.Background(), "fig.png", imageData)
	require.NoError(t, err)
	assert.Equal(t, "A sailing ship at anchor", desc, "whitespace trimmed")
}

func TestDescribe_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(describeResponse{Error: "model not loaded"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Describe(context.Background(), "fig.png", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestDescribe_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Describe(context.Background(), "fig.png", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestDescribe_EmptyDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(describeResponse{Description: "   "})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Describe(context.Background(), "fig.png", []byte("x"))
	assert.Error(t, err, "blank description is an error, callers fall back")
}

func TestDescribe_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here
	_, err := c.Describe(context.Background(), "fig.png", []byte("x"))
	assert.Error(t, err)
}

func TestDescribe_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL).Describe(ctx, "fig.png", []byte("x"))
	assert.Error(t, err)
}
