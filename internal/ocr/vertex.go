package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/documentverification/internal/gcp"
)

// Gemini accepts these directly; anything else is rasterized to PNG first.
var vertexMIMETypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
}

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// contentGenerator is the part of *genai.GenerativeModel used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// VertexRecognizer transcribes the first page with a Gemini model on Vertex AI.
type VertexRecognizer struct {
	model  contentGenerator
	client *gcp.VertexClient
}

func NewVertexRecognizer(ctx context.Context, projectID, region, modelName string) (*VertexRecognizer, error) {
	client, err := gcp.NewVertexClient(ctx, projectID, region, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}
	return &VertexRecognizer{model: client.OCRModel, client: client}, nil
}

func (r *VertexRecognizer) Recognize(ctx context.Context, path string) (string, error) {
	workDir, err := os.MkdirTemp("", "ocr-vertex-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	page, err := FirstPage(path, workDir)
	if err != nil {
		return "", err
	}

	blob := genai.Blob{MIMEType: page.MIMEType, Data: page.Data}
	if !vertexMIMETypes[page.MIMEType] {
		raster, err := Rasterize(page, workDir)
		if err != nil {
			return "", err
		}
		blob = genai.Blob{MIMEType: "image/png", Data: raster}
	}

	resp, err := r.model.GenerateContent(ctx, blob, genai.Text(gcp.OCRUserPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	text := responseText(resp)
	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			slog.Warn("Gemini refused to transcribe page; treating as empty.", "file", page.Path, "response", text)
			return "", nil
		}
	}
	return text, nil
}

func (r *VertexRecognizer) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(b.String())
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
