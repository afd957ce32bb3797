package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lllllllleong/documentverification/internal/models"
	"github.com/stretchr/testify/require"
)

type fetchCall struct {
	bucket, object, destPath string
}

// bucketFetcher serves objects from an in-memory bucket.
type bucketFetcher struct {
	objects map[string]string
	calls   []fetchCall
}

func (b *bucketFetcher) fetch(ctx context.Context, bucket, object, destPath string) error {
	b.calls = append(b.calls, fetchCall{bucket, object, destPath})
	text, ok := b.objects[object]
	if !ok {
		return errors.New("storage: object doesn't exist")
	}
	return os.WriteFile(destPath, []byte(text), 0o644)
}

func TestIngestRegistersDocument(t *testing.T) {
	ctx := context.Background()
	bucket := &bucketFetcher{objects: map[string]string{"gst/2024/cert-001.pdf": gstScan}}
	verifier := newTestVerifier(nil)
	f := NewIngestFunction(verifier, bucket.fetch)

	require.NoError(t, f.Process(ctx, models.GCSEvent{Bucket: "ingest", Name: "gst/2024/cert-001.pdf"}))

	require.Len(t, bucket.calls, 1)
	require.Equal(t, "ingest", bucket.calls[0].bucket)
	require.Equal(t, "cert-001.pdf", filepath.Base(bucket.calls[0].destPath))

	resp, err := verifier.Verify(ctx, models.KindGST, "27AAPFU0939F1ZV")
	require.NoError(t, err)
	require.Equal(t, models.StatusVerified, resp.Status)
	require.Equal(t, "ACME TRADERS", resp.Data["legal_name"])
}

func TestIngestSkipsUnknownPrefixes(t *testing.T) {
	bucket := &bucketFetcher{}
	f := NewIngestFunction(newTestVerifier(nil), bucket.fetch)

	for _, name := range []string{"passport/scan.png", "scan.png", "pan/", ""} {
		require.NoError(t, f.Process(context.Background(), models.GCSEvent{Bucket: "ingest", Name: name}), name)
	}
	require.Empty(t, bucket.calls)
}

func TestIngestInvalidScanIsNotRetried(t *testing.T) {
	ctx := context.Background()
	bucket := &bucketFetcher{objects: map[string]string{"PAN/blurry.jpg": "INCOME TAX DEPARTMENT"}}
	verifier := newTestVerifier(nil)
	f := NewIngestFunction(verifier, bucket.fetch)

	require.NoError(t, f.Process(ctx, models.GCSEvent{Bucket: "ingest", Name: "PAN/blurry.jpg"}))
	require.Len(t, bucket.calls, 1)
}

func TestIngestDownloadFailure(t *testing.T) {
	f := NewIngestFunction(newTestVerifier(nil), (&bucketFetcher{}).fetch)

	err := f.Process(context.Background(), models.GCSEvent{Bucket: "ingest", Name: "cin/missing.pdf"})
	require.Error(t, err)
}
