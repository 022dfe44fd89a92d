package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_PostsAlert(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer srv.Close()

	id := uuid.New()
	n := NewWebhookNotifier(srv.URL, 5*time.Second)
	require.NoError(t, n.Notify(context.Background(), id, []string{"i hate you"}))

	assert.Equal(t, id.String(), got["recording_id"])
	assert.Equal(t, []any{"i hate you"}, got["flagged_excerpts"])
}

func TestWebhookNotifier_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 5*time.Second)
	err := n.Notify(context.Background(), uuid.New(), nil)
	assert.Error(t, err)
}

func TestWebhookNotifier_UnreachableEndpoint(t *testing.T) {
	n := NewWebhookNotifier("http://127.0.0.1:1", time.Second)
	err := n.Notify(context.Background(), uuid.New(), nil)
	assert.Error(t, err)
}
