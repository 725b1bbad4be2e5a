package mockbackend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/infrastructure/backend"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(New(opts).Handler())
	t.Cleanup(server.Close)
	return server
}

func credential(t *testing.T) domain.Credential {
	t.Helper()
	return domain.NewCredential("gsk_mock_1234567890")
}

func TestClientAgainstMockBackend(t *testing.T) {
	server := newTestServer(t, Options{})
	client := backend.NewClient(server.URL, server.Client(), nil)

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, len(Catalog))
	assert.Equal(t, "openai/gpt-oss-120b", models[0].ID)

	result, err := client.Process(context.Background(), domain.ProcessRequest{
		Text:       "Summarize this: The meeting moved to Friday. Everyone agreed.",
		Credential: credential(t),
		ModelID:    "llama-3.1-8b-instant",
	})
	require.NoError(t, err)
	assert.Equal(t, string(IntentSummarization), result.Intent)
	assert.Equal(t, "**Summary:** The meeting moved to Friday.", result.Payload)
	assert.Equal(t, "Llama 3.1 8B Instant", result.ModelName)
	assert.Greater(t, result.TokensUsed, 0)
	assert.GreaterOrEqual(t, result.ProcessingTimeSeconds, 0.0)
}

func TestUnknownModelFallsBackToDefault(t *testing.T) {
	server := newTestServer(t, Options{})
	client := backend.NewClient(server.URL, server.Client(), nil)

	result, err := client.Process(context.Background(), domain.ProcessRequest{
		Text:       "hello there",
		Credential: credential(t),
		ModelID:    "not-a-model",
	})
	require.NoError(t, err)
	assert.Equal(t, "Llama 3.3 70B Versatile", result.ModelName)
	assert.Equal(t, string(IntentCustom), result.Intent)
}

func TestUnknownModelEchoesFallbackID(t *testing.T) {
	server := newTestServer(t, Options{})

	body := `{"text":"hello there","api_key":"gsk_1234567890","model":"not-a-model"}`
	resp, err := http.Post(server.URL+domain.ProcessPath, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Model    string `json:"model"`
		Metadata struct {
			ModelName string `json:"model_name"`
		} `json:"metadata"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	fallback := lookupModel(DefaultModelID)
	assert.Equal(t, DefaultModelID, payload.Model)
	assert.Equal(t, fallback.Name, payload.Metadata.ModelName)
}

func TestCodeAnswerForCustomIntent(t *testing.T) {
	server := newTestServer(t, Options{})
	client := backend.NewClient(server.URL, server.Client(), nil)

	result, err := client.Process(context.Background(), domain.ProcessRequest{
		Text:       "how do I return a string",
		Credential: credential(t),
		Options:    domain.ProcessOptions{EnableCode: true},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Payload, "```go"))
}

func TestProcessValidation(t *testing.T) {
	server := newTestServer(t, Options{})

	cases := map[string]struct {
		body string
		want string
	}{
		"blank text":     {`{"text":"   ","api_key":"gsk_1234567890"}`, "Value error, Text cannot be empty"},
		"missing key":    {`{"text":"hi"}`, "Field required"},
		"short key":      {`{"text":"hi","api_key":"gsk_1"}`, "String should have at least 10 characters"},
		"wrong prefix":   {`{"text":"hi","api_key":"sk-1234567890"}`, "Value error, Invalid Groq API key format"},
		"malformed json": {`{"text":`, "JSON decode error"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(server.URL+domain.ProcessPath, "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			var payload struct {
				Detail []validationIssue `json:"detail"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			require.NotEmpty(t, payload.Detail)
			assert.Equal(t, tc.want, payload.Detail[0].Msg)
		})
	}
}

func TestRateLimit(t *testing.T) {
	server := newTestServer(t, Options{RatePerMinute: 2})
	client := backend.NewClient(server.URL, server.Client(), nil)
	req := domain.ProcessRequest{Text: "hi", Credential: credential(t)}

	for i := 0; i < 2; i++ {
		_, err := client.Process(context.Background(), req)
		require.NoError(t, err)
	}
	_, err := client.Process(context.Background(), req)

	var backendErr *domain.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusTooManyRequests, backendErr.StatusCode)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", backendErr.Code)
	assert.Equal(t, "Rate limit exceeded: 2 per 1 minute", backendErr.Message)
}

func TestHealthAndRoot(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	server := newTestServer(t, Options{Environment: "test", Now: func() time.Time { return fixed }})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "test", health["environment"])
	assert.Equal(t, float64(1700000000), health["timestamp"])

	reported, err := backend.NewClient(server.URL, server.Client(), nil).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.BackendHealth{Status: "healthy", Environment: "test"}, reported)

	root, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer root.Body.Close()
	assert.Equal(t, http.StatusOK, root.StatusCode)
}

func TestNotFoundUsesErrorShape(t *testing.T) {
	server := newTestServer(t, Options{})

	resp, err := http.Get(server.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var payload errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "HTTP_404", payload.Code)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(Options{}).ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
