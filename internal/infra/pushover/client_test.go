package pushover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-lights/internal/application"
	"smart-lights/internal/infra/pushover"
)

var _ application.Notifier = (*pushover.Client)(nil)

func TestClient_Notify(t *testing.T) {
	var form map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages.json", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"token":   r.PostForm.Get("token"),
			"user":    r.PostForm.Get("user"),
			"message": r.PostForm.Get("message"),
			"title":   r.PostForm.Get("title"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("app-token", "user-key", "", server.URL)
	require.NoError(t, client.Notify(context.Background(), "3 LIGHTS UPDATED"))

	assert.Equal(t, map[string]string{
		"token":   "app-token",
		"user":    "user-key",
		"message": "3 LIGHTS UPDATED",
		"title":   pushover.DefaultTitle,
	}, form)
}

func TestClient_NotConfigured(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("", "", "Lights", server.URL)
	require.NoError(t, client.Notify(context.Background(), "hello"))
	assert.False(t, called)
}

func TestClient_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusBadRequest)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("t", "u", "Lights", server.URL)
	err := client.Notify(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
