package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/documentverification/internal/extraction"
	"github.com/Lllllllleong/documentverification/internal/gcp"
	"github.com/Lllllllleong/documentverification/internal/models"
	"github.com/Lllllllleong/documentverification/internal/ocr"
	"github.com/Lllllllleong/documentverification/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	msgNoFile      = "No file uploaded"
	msgInvalidFile = "Invalid file"
)

// VerifierConfig holds all configuration for the verifier service.
type VerifierConfig struct {
	ProjectID        string
	RecordStore      string
	CollectionPrefix string
	ArchiveBucket    string
	OCR              ocr.Config
}

// Archiver stores a copy of an uploaded file under objectName.
type Archiver interface {
	Save(ctx context.Context, objectName string, r io.Reader) error
}

// VerifierFunction registers uploaded documents and answers verification lookups.
type VerifierFunction struct {
	recognizer    ocr.Recognizer
	records       store.RecordStore
	archive       Archiver
	storageClient *storage.Client
}

// loadConfig loads and validates the environment for the verifier.
func loadConfig() (*VerifierConfig, error) {
	config := &VerifierConfig{
		ProjectID:        gcp.GetEnv("PROJECT_ID", ""),
		RecordStore:      gcp.GetEnv("RECORD_STORE", "firestore"),
		CollectionPrefix: gcp.GetEnv("FIRESTORE_COLLECTION_PREFIX", ""),
		ArchiveBucket:    gcp.GetEnv("UPLOAD_ARCHIVE_BUCKET", ""),
		OCR: ocr.Config{
			Backend:               gcp.GetEnv("OCR_BACKEND", "tesseract"),
			Languages:             gcp.GetEnvList("OCR_LANGUAGES", "eng"),
			VertexAIRegion:        gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
			VertexModel:           gcp.GetEnv("VERTEX_MODEL", gcp.DefaultOCRModel),
			DocumentAILocation:    gcp.GetEnv("DOCUMENT_AI_LOCATION", "us"),
			DocumentAIProcessorID: gcp.GetEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		},
	}
	config.OCR.ProjectID = config.ProjectID

	needsProject := config.RecordStore == "firestore" || config.OCR.Backend == "vertex" || config.OCR.Backend == "documentai"
	if needsProject && config.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if config.OCR.Backend == "documentai" && config.OCR.DocumentAIProcessorID == "" {
		return nil, fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID environment variable must be set for the documentai backend")
	}
	return config, nil
}

// NewVerifier creates a VerifierFunction from the environment.
func NewVerifier(ctx context.Context) (*VerifierFunction, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	records, err := store.New(ctx, config.RecordStore, config.ProjectID, config.CollectionPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create record store: %w", err)
	}
	recognizer, err := ocr.New(ctx, config.OCR)
	if err != nil {
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}

	f := NewVerifierFunction(recognizer, records, nil)
	if config.ArchiveBucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		f.storageClient = storageClient
		f.archive = &gcsArchiver{bucket: storageClient.Bucket(config.ArchiveBucket)}
	}

	slog.Info("Verifier initialized.",
		"recordStore", config.RecordStore,
		"ocrBackend", config.OCR.Backend,
		"archiveBucket", config.ArchiveBucket)
	return f, nil
}

// NewVerifierFunction wires a verifier from existing dependencies. archive may be nil.
func NewVerifierFunction(recognizer ocr.Recognizer, records store.RecordStore, archive Archiver) *VerifierFunction {
	return &VerifierFunction{
		recognizer: recognizer,
		records:    records,
		archive:    archive,
	}
}

// Upload recognizes, extracts and registers one document. Outcomes the caller
// can act on are reported through the response status; a returned error means
// the pipeline itself failed.
func (f *VerifierFunction) Upload(ctx context.Context, kind models.Kind, upload *models.Upload) (*models.UploadResponse, error) {
	if upload == nil || upload.Path == "" {
		return &models.UploadResponse{Status: models.StatusError, Message: msgNoFile}, nil
	}
	extractor, err := extraction.ForKind(kind)
	if err != nil {
		return nil, err
	}

	logCtx := slog.With("documentKind", kind, "requestId", uuid.NewString(), "filename", upload.Filename)
	logCtx.Info("Processing upload.")

	var text string
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		t, err := f.recognizer.Recognize(gctx, upload.Path)
		if err != nil {
			return err
		}
		text = t
		return nil
	})
	if f.archive != nil {
		eg.Go(func() error {
			if err := f.archiveUpload(gctx, kind, upload); err != nil {
				logCtx.Warn("Failed to archive upload.", "error", err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if errors.Is(err, ocr.ErrUnreadableFile) {
			logCtx.Warn("Upload is not a readable image or PDF.", "error", err)
			return &models.UploadResponse{Status: models.StatusError, Message: msgInvalidFile}, nil
		}
		logCtx.Error("Text recognition failed.", "error", err)
		return nil, fmt.Errorf("text recognition failed: %w", err)
	}

	doc, err := extractor.Extract(text)
	if errors.Is(err, extraction.ErrIdentifierNotFound) {
		logCtx.Info("No document number found in recognized text.", "textLength", len(text))
		return &models.UploadResponse{Status: models.StatusInvalid, Message: kind.Label() + " not detected"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	logCtx = logCtx.With("identifier", doc.Identifier())

	record, created, err := f.records.GetOrCreate(ctx, kind, doc.Identifier(), doc.StoredFields())
	if err != nil {
		logCtx.Error("Failed to persist record.", "error", err)
		return nil, fmt.Errorf("failed to persist record: %w", err)
	}
	logCtx.Info("Document registered.", "created", created)

	return &models.UploadResponse{Status: models.StatusRegistered, Data: responseData(doc, record)}, nil
}

// responseData overlays the stored record on the extracted fields, so stored
// values win and fields that are never persisted still reach the caller.
func responseData(doc models.Document, record *models.Record) map[string]string {
	data := doc.Data()
	for k, v := range record.Data() {
		data[k] = v
	}
	return data
}

// Verify looks up a registered document by its number.
func (f *VerifierFunction) Verify(ctx context.Context, kind models.Kind, number string) (*models.VerifyResponse, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return &models.VerifyResponse{Status: models.StatusNotFound}, nil
	}

	record, err := f.records.Get(ctx, kind, number)
	if errors.Is(err, store.ErrNotFound) {
		return &models.VerifyResponse{Status: models.StatusNotFound}, nil
	}
	if err != nil {
		slog.Error("Failed to look up record.", "documentKind", kind, "identifier", number, "error", err)
		return nil, fmt.Errorf("failed to look up record: %w", err)
	}
	return &models.VerifyResponse{Status: models.StatusVerified, Data: record.Data()}, nil
}

// Close releases the clients held by the verifier.
func (f *VerifierFunction) Close() error {
	var errs []error
	if c, ok := f.recognizer.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := f.records.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if f.storageClient != nil {
		errs = append(errs, f.storageClient.Close())
	}
	return errors.Join(errs...)
}

func (f *VerifierFunction) archiveUpload(ctx context.Context, kind models.Kind, upload *models.Upload) error {
	fileHash, err := calculateFileHash(upload.Path)
	if err != nil {
		return fmt.Errorf("failed to calculate file hash: %w", err)
	}

	file, err := os.Open(upload.Path)
	if err != nil {
		return fmt.Errorf("could not open upload %s: %w", upload.Path, err)
	}
	defer file.Close()

	return f.archive.Save(ctx, archiveObjectName(kind, fileHash, upload), file)
}

// archiveObjectName is <kind>/<sha256>.<ext>, so identical files share one object.
func archiveObjectName(kind models.Kind, fileHash string, upload *models.Upload) string {
	ext := filepath.Ext(upload.Filename)
	if ext == "" {
		ext = filepath.Ext(upload.Path)
	}
	return fmt.Sprintf("%s/%s%s", kind, fileHash, strings.ToLower(ext))
}

type gcsArchiver struct {
	bucket *storage.BucketHandle
}

func (a *gcsArchiver) Save(ctx context.Context, objectName string, r io.Reader) error {
	return gcp.SaveToGCSAtomically(ctx, a.bucket, objectName, r)
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
