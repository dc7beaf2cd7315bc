package service

import (
	"civilprep_backend/internal/config"
	"civilprep_backend/internal/util"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAIServer(t *testing.T, handler http.HandlerFunc) *AIService {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAIService(config.AIConfig{BaseURL: srv.URL + "/v1/", APIKey: "test-key", Model: "test-model", TimeoutSeconds: 5})
}

func TestAIServiceChat(t *testing.T) {
	ai := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hello aspirant"}}]}`)
	})

	reply, err := ai.Chat(context.Background(), []AIChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello aspirant", reply)
}

func TestAIServiceChatErrors(t *testing.T) {
	down := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	_, err := down.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, util.ErrAIUnavailable)

	empty := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})
	_, err = empty.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, util.ErrInvalidAIResponse)

	unconfigured := NewAIService(config.AIConfig{})
	_, err = unconfigured.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, util.ErrAIUnavailable)
}

func TestAIServiceChatStream(t *testing.T) {
	ai := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Preamble \"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"is the key\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	chunks, errs := ai.ChatStream(context.Background(), []AIChatMessage{{Role: "user", Content: "hi"}})
	assert.Equal(t, []string{"Preamble ", "is the key"}, collect(chunks))
	assert.NoError(t, <-errs)
}

func TestAIServiceChatStreamStatusError(t *testing.T) {
	ai := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	chunks, errs := ai.ChatStream(context.Background(), nil)
	assert.Empty(t, collect(chunks))
	assert.ErrorIs(t, <-errs, util.ErrAIUnavailable)
}

func TestAIServiceUpdateConfig(t *testing.T) {
	ai := NewAIService(config.AIConfig{})
	_, err := ai.Chat(context.Background(), nil)
	require.ErrorIs(t, err, util.ErrAIUnavailable)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"reloaded"}}]}`)
	}))
	defer srv.Close()

	ai.UpdateConfig(config.AIConfig{BaseURL: srv.URL, APIKey: "k"})
	reply, err := ai.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "reloaded", reply)
}
