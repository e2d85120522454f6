package ocr

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

const remoteOCRPrompt = "Extract all readable text from this image. " +
	"Return the text only, preserving line breaks; return an empty string if there is none."

// remoteEngine delegates recognition to a multimodal model behind an
// OpenAI-compatible chat-completions endpoint.
type remoteEngine struct {
	cfg Config
}

type remoteContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type remoteChatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string              `json:"role"`
		Content []remoteContentPart `json:"content"`
	} `json:"messages"`
	Stream bool `json:"stream"`
}

type remoteChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func init() {
	Register("remote", createRemoteEngine)
}

func createRemoteEngine(cfg Config) (Engine, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ocr.base_url is required for remote")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ocr.model is required for remote")
	}
	return &remoteEngine{cfg: cfg}, nil
}

func (e *remoteEngine) Name() string {
	return "remote"
}

func (e *remoteEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	var req remoteChatRequest
	req.Model = e.cfg.Model
	req.Stream = false
	req.Messages = append(req.Messages, struct {
		Role    string              `json:"role"`
		Content []remoteContentPart `json:"content"`
	}{
		Role: "user",
		Content: []remoteContentPart{
			{Type: "text", Text: remoteOCRPrompt},
			{Type: "image_url", ImageURL: &struct {
				URL string `json:"url"`
			}{URL: dataURI}},
		},
	})
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	endpoint := strings.TrimRight(e.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if e.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("remote ocr request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out remoteChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode remote ocr response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("remote ocr response has no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
