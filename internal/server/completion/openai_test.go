package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gpt-3.5-turbo",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
	}`, content)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewOpenAIClient("sk-test", srv.URL)
	require.NoError(t, err)
	return c
}

func TestOpenAIClient_Success(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse("Polished draft")))
	})

	out, err := c.Complete(context.Background(), "Polish this", Options{Model: "gpt-4o-mini", Temperature: 0.5})
	require.NoError(t, err)
	assert.Equal(t, "Polished draft", out)
	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.Equal(t, 0.5, got["temperature"])
}

func TestOpenAIClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   Kind
	}{
		{http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, KindAuth},
		{http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests"}}`, KindRateLimit},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Complete(context.Background(), "x", Options{Model: "gpt-3.5-turbo"})
			var se *ServiceError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, tt.want, se.Kind)
		})
	}
}

func TestOpenAIClient_EmptyCompletion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse("   ")))
	})

	_, err := c.Complete(context.Background(), "x", Options{})
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindMalformed, se.Kind)
}

func TestOpenAIClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewOpenAIClient("sk-test", url)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "x", Options{})
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindNetwork, se.Kind)
}
