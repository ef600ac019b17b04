package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fafnerzhang/codetrekking/internal/config"
)

var countSchema = MustSchema("count_result", `{
  "type": "object",
  "properties": {"count": {"type": "integer"}},
  "required": ["count"]
}`)

type countResult struct {
	Count int `json:"count"`
}

// chatServer fakes an OpenAI-compatible endpoint that answers every call with
// the given message content.
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])
		format, ok := req["response_format"].(map[string]any)
		require.True(t, ok, "request must declare a response format")
		assert.Equal(t, "json_schema", format["type"])

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(t *testing.T, baseURL string) Client {
	t.Helper()
	c, err := NewOpenAIClient(config.GenerationConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestOpenAIClientGenerate(t *testing.T) {
	t.Run("decodes conforming output", func(t *testing.T) {
		srv := chatServer(t, `{"count": 4}`)
		defer srv.Close()

		var out countResult
		err := testClient(t, srv.URL).Generate(context.Background(), "count to four", countSchema, &out)
		require.NoError(t, err)
		assert.Equal(t, 4, out.Count)
	})

	t.Run("rejects non-conforming output", func(t *testing.T) {
		srv := chatServer(t, `{"tally": 4}`)
		defer srv.Close()

		var out countResult
		err := testClient(t, srv.URL).Generate(context.Background(), "count to four", countSchema, &out)
		assert.True(t, IsKind(err, NoStructuredOutput), "got %v", err)
	})

	t.Run("empty content is no structured output", func(t *testing.T) {
		srv := chatServer(t, "")
		defer srv.Close()

		var out countResult
		err := testClient(t, srv.URL).Generate(context.Background(), "count to four", countSchema, &out)
		assert.True(t, IsKind(err, NoStructuredOutput), "got %v", err)
	})

	t.Run("backend failure is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		var out countResult
		err := testClient(t, srv.URL).Generate(context.Background(), "count to four", countSchema, &out)
		assert.True(t, IsKind(err, TransportError), "got %v", err)
		assert.ErrorContains(t, err, "503")
	})

	t.Run("unreachable backend is a transport error", func(t *testing.T) {
		var out countResult
		err := testClient(t, "http://127.0.0.1:1").Generate(context.Background(), "count to four", countSchema, &out)
		assert.True(t, IsKind(err, TransportError), "got %v", err)
	})

	t.Run("slow backend is a timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer srv.Close()
		defer close(release)

		c, err := NewOpenAIClient(config.GenerationConfig{
			BaseURL: srv.URL,
			Model:   "test-model",
			Timeout: 50 * time.Millisecond,
		})
		require.NoError(t, err)

		var out countResult
		err = c.Generate(context.Background(), "count to four", countSchema, &out)
		assert.True(t, IsKind(err, Timeout), "got %v", err)
	})
}

func TestNewOpenAIClientRequiresBaseURL(t *testing.T) {
	_, err := NewOpenAIClient(config.GenerationConfig{})
	assert.ErrorContains(t, err, "base_url")
}
