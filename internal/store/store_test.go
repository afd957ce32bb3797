package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Lllllllleong/documentverification/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// testStores returns the memory store and, when an emulator is configured, a Firestore store
// writing into collections unique to this run.
func testStores(t *testing.T) map[string]RecordStore {
	t.Helper()

	stores := map[string]RecordStore{
		"memory": NewMemoryStore(),
	}

	if os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		prefix := fmt.Sprintf("test_%s_", uuid.NewString()[:8])
		fs, err := NewFirestoreStore(context.Background(), "document-verification-test", prefix)
		require.NoError(t, err)
		t.Cleanup(func() { fs.Close() })
		stores["firestore"] = fs
	}

	return stores
}

func TestGetOrCreateFirstWriteWins(t *testing.T) {
	ctx := context.Background()

	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			first, created, err := s.GetOrCreate(ctx, models.KindPAN, "ABCDE1234F", map[string]string{"name": "RAHUL"})
			require.NoError(t, err)
			require.True(t, created)
			require.Equal(t, "RAHUL", first.Fields["name"])
			require.Equal(t, models.KindPAN, first.Kind)
			require.Equal(t, "ABCDE1234F", first.Identifier)

			second, created, err := s.GetOrCreate(ctx, models.KindPAN, "ABCDE1234F", map[string]string{"name": "SOMEONE ELSE"})
			require.NoError(t, err)
			require.False(t, created)
			require.Equal(t, "RAHUL", second.Fields["name"])
		})
	}
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()

	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			rec, err := s.Get(ctx, models.KindGST, "27AAPFU0939F1ZV")
			require.ErrorIs(t, err, ErrNotFound)
			require.Nil(t, rec)
		})
	}
}

func TestGetUnaddressableIdentifiers(t *testing.T) {
	ctx := context.Background()

	stores := testStores(t)
	// Validation happens before any RPC, so no client is needed.
	stores["firestore-offline"] = NewFirestoreStoreWithClient(nil, "")

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{".", "..", "__X__", "__ABCDE1234F__", "ABC/DEF"} {
				rec, err := s.Get(ctx, models.KindPAN, id)
				require.ErrorIs(t, err, ErrNotFound, id)
				require.Nil(t, rec)
			}
		})
	}
}

func TestValidDocumentID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"ABCDE1234F", true},
		{"__", true},
		{"_X_", true},
		{"", false},
		{".", false},
		{"..", false},
		{"__X__", false},
		{"____", false},
		{"A/B", false},
		{strings.Repeat("A", 1501), false},
		{string([]byte{0xff}), false},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, validDocumentID(tc.id), "%q", tc.id)
	}
}

func TestKindsAreSeparate(t *testing.T) {
	ctx := context.Background()

	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := s.GetOrCreate(ctx, models.KindCIN, "SAMEID", map[string]string{"company_name": "ACME LIMITED"})
			require.NoError(t, err)

			_, err = s.Get(ctx, models.KindPAN, "SAMEID")
			require.ErrorIs(t, err, ErrNotFound)

			rec, err := s.Get(ctx, models.KindCIN, "SAMEID")
			require.NoError(t, err)
			require.Equal(t, "ACME LIMITED", rec.Fields["company_name"])
		})
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()

	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			const workers = 8

			var wg sync.WaitGroup
			var mu sync.Mutex
			createdCount := 0
			names := make(map[string]struct{})

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()

					rec, created, err := s.GetOrCreate(ctx, models.KindGST, "27AAPFU0939F1ZV", map[string]string{
						"legal_name": fmt.Sprintf("WRITER %d", i),
					})
					if err != nil {
						t.Errorf("GetOrCreate() error = %v", err)
						return
					}

					mu.Lock()
					defer mu.Unlock()
					if created {
						createdCount++
					}
					names[rec.Fields["legal_name"]] = struct{}{}
				}(i)
			}
			wg.Wait()

			require.Equal(t, 1, createdCount)
			require.Len(t, names, 1, "every caller must see the winning record")
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	defaults := map[string]string{"name": "RAHUL"}
	rec, _, err := s.GetOrCreate(ctx, models.KindPAN, "ABCDE1234F", defaults)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), rec.CreatedAt)

	defaults["name"] = "CHANGED"
	rec.Fields["name"] = "CHANGED"

	stored, err := s.Get(ctx, models.KindPAN, "ABCDE1234F")
	require.NoError(t, err)
	require.Equal(t, "RAHUL", stored.Fields["name"])
}

func TestRecordData(t *testing.T) {
	rec := &models.Record{
		Kind:       models.KindCIN,
		Identifier: "U72200MH2020PTC123456",
		Fields:     map[string]string{"company_name": "ACME PRIVATE LIMITED", "registration_date": ""},
	}

	require.Equal(t, map[string]string{
		"cin":               "U72200MH2020PTC123456",
		"company_name":      "ACME PRIVATE LIMITED",
		"registration_date": "",
	}, rec.Data())
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), "redis", "p", "")
	require.Error(t, err)

	s, err := New(context.Background(), "memory", "", "")
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)
}
