package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(Config{Type: "easyocr"})
	require.Error(t, err)

	_, err = New(Config{})
	require.Error(t, err)
}

func TestRemoteEngineRequiresEndpointAndModel(t *testing.T) {
	_, err := New(Config{Type: "remote", Model: "qwen-vl"})
	require.Error(t, err)

	_, err = New(Config{Type: "remote", BaseURL: "http://ocr.local/v1"})
	require.Error(t, err)
}

func TestRemoteEngineRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req remoteChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "qwen-vl", req.Model)
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 2)

		resp := remoteChatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}{})
		resp.Choices[0].Message.Content = "INVOICE NO 42\nTOTAL 17.50"
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	engine, err := New(Config{Type: "remote", Model: "qwen-vl", APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	text, err := engine.Recognize(context.Background(), []byte("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "INVOICE NO 42\nTOTAL 17.50", text)
}

func TestRemoteEngineServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	engine, err := New(Config{Type: "remote", Model: "qwen-vl", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = engine.Recognize(context.Background(), []byte("png-bytes"))
	require.ErrorContains(t, err, "model overloaded")
}
