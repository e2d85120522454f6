package vision

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

type geminiModel struct {
	cfg Config
}

func init() {
	Register("gemini", createGeminiModel)
}

func createGeminiModel(cfg Config) (Model, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	return &geminiModel{cfg: cfg}, nil
}

func (m *geminiModel) Name() string {
	return "gemini"
}

func (m *geminiModel) Caption(ctx context.Context, image []byte, mime string) (string, error) {
	if m.cfg.APIKey == "" {
		return "", ErrUnavailable
	}
	if mime == "" {
		mime = "image/png"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  m.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(
		ctx,
		m.cfg.Model,
		[]*genai.Content{{Parts: []*genai.Part{
			{Text: m.cfg.prompt()},
			{InlineData: &genai.Blob{MIMEType: mime, Data: image}},
		}}},
		nil,
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
