package ocr

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DocumentAIRecognizer sends the first page to a Document AI OCR processor.
type DocumentAIRecognizer struct {
	client    *documentai.DocumentProcessorClient
	processor string
}

func NewDocumentAIRecognizer(ctx context.Context, projectID, location, processorID string) (*DocumentAIRecognizer, error) {
	if projectID == "" || location == "" || processorID == "" {
		return nil, fmt.Errorf("NewDocumentAIRecognizer: projectID, location and processorID cannot be empty")
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	client, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	return &DocumentAIRecognizer{
		client:    client,
		processor: fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID),
	}, nil
}

func (r *DocumentAIRecognizer) Recognize(ctx context.Context, path string) (string, error) {
	workDir, err := os.MkdirTemp("", "ocr-documentai-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	page, err := FirstPage(path, workDir)
	if err != nil {
		return "", err
	}

	req := &documentaipb.ProcessRequest{
		Name: r.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  page.Data,
				MimeType: page.MIMEType,
			},
		},
	}
	resp, err := r.client.ProcessDocument(ctx, req)
	if status.Code(err) == codes.InvalidArgument {
		return "", unreadable("document AI rejected %s: %v", page.MIMEType, err)
	}
	if err != nil {
		return "", fmt.Errorf("document AI process request failed: %w", err)
	}
	return resp.GetDocument().GetText(), nil
}

func (r *DocumentAIRecognizer) Close() error {
	return r.client.Close()
}
