package store

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/documentverification/internal/gcp"
	"github.com/Lllllllleong/documentverification/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps one collection per kind, e.g. "pan_records".
// The document ID is the identifier.
type FirestoreStore struct {
	client           *firestore.Client
	collectionPrefix string
	now              func() time.Time
}

// NewFirestoreStore creates the Firestore client for projectID.
func NewFirestoreStore(ctx context.Context, projectID, collectionPrefix string) (*FirestoreStore, error) {
	client, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return NewFirestoreStoreWithClient(client, collectionPrefix), nil
}

func NewFirestoreStoreWithClient(client *firestore.Client, collectionPrefix string) *FirestoreStore {
	return &FirestoreStore{
		client:           client,
		collectionPrefix: collectionPrefix,
		now:              time.Now,
	}
}

func (s *FirestoreStore) collection(kind models.Kind) *firestore.CollectionRef {
	return s.client.Collection(s.collectionPrefix + string(kind) + "_records")
}

// GetOrCreate reads and creates inside one transaction. Two concurrent
// registrations of the same identifier conflict and the loser retries,
// finding the winner's record.
func (s *FirestoreStore) GetOrCreate(ctx context.Context, kind models.Kind, identifier string, defaults map[string]string) (*models.Record, bool, error) {
	if !validDocumentID(identifier) {
		return nil, false, fmt.Errorf("invalid %s identifier %q", kind, identifier)
	}
	ref := s.collection(kind).Doc(identifier)

	var rec models.Record
	var created bool
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		rec, created = models.Record{}, false

		snap, err := tx.Get(ref)
		if err == nil {
			return snap.DataTo(&rec)
		}
		if status.Code(err) != codes.NotFound {
			return fmt.Errorf("failed to read %s record %s: %w", kind, identifier, err)
		}

		rec = models.Record{
			Kind:       kind,
			Identifier: identifier,
			Fields:     copyFields(defaults),
			CreatedAt:  s.now().UTC(),
		}
		created = true
		return tx.Create(ref, rec)
	})
	if err != nil {
		return nil, false, fmt.Errorf("get-or-create transaction failed: %w", err)
	}
	return &rec, created, nil
}

func (s *FirestoreStore) Get(ctx context.Context, kind models.Kind, identifier string) (*models.Record, error) {
	if !validDocumentID(identifier) {
		return nil, ErrNotFound
	}

	snap, err := s.collection(kind).Doc(identifier).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s record %s: %w", kind, identifier, err)
	}

	var rec models.Record
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s record %s: %w", kind, identifier, err)
	}
	return &rec, nil
}

// maxDocumentIDBytes is Firestore's limit on document ID size.
const maxDocumentIDBytes = 1500

// validDocumentID rejects IDs that Firestore refuses: empty, ".", "..",
// containing "/", reserved "__name__" forms, or over the size limit.
func validDocumentID(id string) bool {
	switch {
	case id == "", id == ".", id == "..":
		return false
	case strings.Contains(id, "/"):
		return false
	case len(id) >= 4 && strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__"):
		return false
	case len(id) > maxDocumentIDBytes || !utf8.ValidString(id):
		return false
	}
	return true
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
