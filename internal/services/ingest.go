package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/documentverification/internal/gcp"
	"github.com/Lllllllleong/documentverification/internal/models"
)

// ObjectFetcher copies gs://bucket/object to destPath.
type ObjectFetcher func(ctx context.Context, bucket, object, destPath string) error

// IngestFunction registers documents dropped into a bucket under <kind>/ prefixes.
type IngestFunction struct {
	verifier      *VerifierFunction
	fetch         ObjectFetcher
	storageClient *storage.Client
}

// NewIngest creates an IngestFunction from the environment.
func NewIngest(ctx context.Context) (*IngestFunction, error) {
	verifier, err := NewVerifier(ctx)
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	f := NewIngestFunction(verifier, func(ctx context.Context, bucket, object, destPath string) error {
		return gcp.DownloadGCSObject(ctx, storageClient, bucket, object, destPath)
	})
	f.storageClient = storageClient
	slog.Info("Ingest logic initialized.")
	return f, nil
}

func NewIngestFunction(verifier *VerifierFunction, fetch ObjectFetcher) *IngestFunction {
	return &IngestFunction{verifier: verifier, fetch: fetch}
}

// Process handles one object-finalized event. Objects outside a known kind
// prefix are skipped; extraction outcomes are logged, and only infrastructure
// failures are returned so the event is retried.
func (f *IngestFunction) Process(ctx context.Context, e models.GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	prefix, _, found := strings.Cut(e.Name, "/")
	kind, err := models.ParseKind(prefix)
	if !found || err != nil || strings.HasSuffix(e.Name, "/") {
		logCtx.Warn("Object is not under a document kind prefix. Skipping.")
		return nil
	}
	logCtx = logCtx.With("documentKind", kind)
	logCtx.Info("Processing new GCS object.")

	tempDir, err := os.MkdirTemp("", "document-ingest-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	filename := path.Base(e.Name)
	localPath := filepath.Join(tempDir, filename)
	if err := f.fetch(ctx, e.Bucket, e.Name, localPath); err != nil {
		logCtx.Error("Failed to download object.", "error", err)
		return err
	}

	resp, err := f.verifier.Upload(ctx, kind, &models.Upload{Filename: filename, Path: localPath})
	if err != nil {
		return err
	}
	logCtx.Info("Ingest complete.", "status", resp.Status, "message", resp.Message, "identifier", resp.Data[kind.IdentifierKey()])
	return nil
}

// Close releases the verifier and storage clients.
func (f *IngestFunction) Close() error {
	err := f.verifier.Close()
	if f.storageClient != nil {
		if cerr := f.storageClient.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
