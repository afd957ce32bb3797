package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- OCR Model Prompts ---
const OCRSystemPrompt = "You are an OCR engine for scanned Indian government documents. You transcribe the visible text of a page exactly as printed, line by line. You never summarize, translate, correct, or explain."
const OCRUserPrompt = `Transcribe all text visible on the provided page.

Follow these rules precisely:
1.  Output one printed line per output line, in reading order from top to bottom.
2.  Keep labels and their values on the same line when they are printed on the same line, including separators such as ':'.
3.  Copy document numbers (PAN, GSTIN, CIN), dates and names character for character. Do not guess missing characters.
4.  Ignore logos, photographs, signatures and QR codes.
5.  Return ONLY the transcribed text. Do not add headings, commentary, or backtick fences.
If no text is legible, return an empty response.`

// DefaultOCRModel is used when VERTEX_MODEL is not set.
const DefaultOCRModel = "gemini-1.5-pro"

// VertexClient holds the pre-configured generative model used for OCR.
type VertexClient struct {
	OCRModel   *genai.GenerativeModel
	baseClient *genai.Client
}

// NewVertexClient creates a new client holding the OCR model.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = DefaultOCRModel
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	ocrModel := baseClient.GenerativeModel(modelName)
	ocrModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(OCRSystemPrompt)},
	}
	ocrModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0), // transcription must be deterministic
	}
	ocrModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		OCRModel:   ocrModel,
		baseClient: baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
