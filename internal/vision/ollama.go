package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultOllamaBaseURL = "http://127.0.0.1:11434"

type ollamaModel struct {
	cfg Config
}

type ollamaGenerateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

func init() {
	Register("ollama", createOllamaModel)
}

func createOllamaModel(cfg Config) (Model, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOllamaBaseURL
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("vision.model is required for ollama")
	}
	return &ollamaModel{cfg: cfg}, nil
}

func (m *ollamaModel) Name() string {
	return "ollama"
}

func (m *ollamaModel) Caption(ctx context.Context, image []byte, mime string) (string, error) {
	_ = mime // ollama infers the format from the payload
	reqBody := ollamaGenerateRequest{
		Model:  m.cfg.Model,
		Prompt: m.cfg.prompt(),
		Images: []string{base64.StdEncoding.EncodeToString(image)},
		Stream: false,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	endpoint := strings.TrimRight(m.cfg.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("ollama request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out ollamaGenerateResponse
	if err := decodeBody(body, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Response), nil
}
