package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbuf/model"
	"chatbuf/provider/testutil"
)

type capturedRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Stream bool `json:"stream"`
	}
}

func newCompletionServer(t *testing.T, status int, contentType, body string) (*httptest.Server, *capturedRequest, *atomic.Int32) {
	t.Helper()
	captured := &capturedRequest{}
	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Authorization = r.Header.Get("Authorization")
		captured.ContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured.Body)

		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, captured, hits
}

func TestOpenAICompleteSendsConversation(t *testing.T) {
	srv, got, _ := newCompletionServer(t, http.StatusOK, "application/json", testutil.CompletionJSON("Hi there"))

	p := NewOpenAIProvider(srv.URL, "")
	reply, err := p.Complete(context.Background(), model.ChatRequest{
		Model:    p.GetModel(),
		Messages: testutil.SingleUserMessage("Hello"),
		APIKey:   "sk-test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/chat/completions", got.Path)
	assert.Equal(t, "Bearer sk-test", got.Authorization)
	assert.Contains(t, got.ContentType, "application/json")
	assert.Equal(t, "gpt-4o", got.Body.Model)
	require.Len(t, got.Body.Messages, 1)
	assert.Equal(t, "user", got.Body.Messages[0].Role)
	assert.Equal(t, "Hello", got.Body.Messages[0].Content)
	assert.False(t, got.Body.Stream)
}

func TestOpenAICompleteReplaysAlternatingTurns(t *testing.T) {
	srv, got, _ := newCompletionServer(t, http.StatusOK, "application/json", testutil.CompletionJSON("Fine, thanks."))

	p := NewOpenAIProvider(srv.URL, "gpt-4o")
	reply, err := p.Complete(context.Background(), model.ChatRequest{
		Model:    "gpt-4o",
		Messages: testutil.TestMessages(),
		APIKey:   "sk-test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fine, thanks.", reply)

	require.Len(t, got.Body.Messages, 3)
	wantRoles := []string{"user", "assistant", "user"}
	wantContent := []string{"Hello", "Hi there", "How are you?"}
	for i, m := range got.Body.Messages {
		assert.Equal(t, wantRoles[i], m.Role)
		assert.Equal(t, wantContent[i], m.Content)
	}
}

func TestOpenAICompleteFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantErr     error
	}{
		{
			name:        "no choices",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        testutil.NoChoicesJSON,
			wantErr:     ErrNoChoices,
		},
		{
			name:        "html error page",
			status:      http.StatusOK,
			contentType: "text/html",
			body:        "<html>bad gateway</html>",
		},
		{
			name:        "truncated json",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"choices": [`,
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`,
		},
		{
			name:        "server error",
			status:      http.StatusInternalServerError,
			contentType: "application/json",
			body:        `{"error":{"message":"boom"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, hits := newCompletionServer(t, tt.status, tt.contentType, tt.body)

			p := NewOpenAIProvider(srv.URL, "")
			reply, err := p.Complete(context.Background(), model.ChatRequest{
				Messages: testutil.SingleUserMessage("Hello"),
				APIKey:   "sk-test",
			})
			require.Error(t, err)
			assert.Empty(t, reply)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			assert.Equal(t, int32(1), hits.Load(), "requests are not retried")
		})
	}
}

func TestOpenAICompleteNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewOpenAIProvider(url, "")
	_, err := p.Complete(context.Background(), model.ChatRequest{
		Messages: testutil.SingleUserMessage("Hello"),
		APIKey:   "sk-test",
	})
	assert.Error(t, err)
}

func TestOpenAICompleteRespectsContext(t *testing.T) {
	srv, _, _ := newCompletionServer(t, http.StatusOK, "application/json", testutil.CompletionJSON("late"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewOpenAIProvider(srv.URL, "")
	_, err := p.Complete(ctx, model.ChatRequest{
		Messages: testutil.SingleUserMessage("Hello"),
		APIKey:   "sk-test",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestOpenRouterUsesOwnServiceName(t *testing.T) {
	p := NewOpenRouterProvider("", "")
	assert.Equal(t, "openrouter", p.Name())
	assert.Equal(t, DefaultOpenRouterBaseURL, p.BaseURL())
	assert.Equal(t, DefaultOpenRouterModel, p.GetModel())
	assert.True(t, p.RequiresAPIKey())
}
