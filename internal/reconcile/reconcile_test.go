package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/library"
)

type fakeStore struct {
	books []library.Book
	err   error
	calls int
}

func (f *fakeStore) FindAllByOwner(_ context.Context, ownerID string) ([]library.Book, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []library.Book
	for _, b := range f.books {
		if b.UserID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

const assetBase = "/api/books/covers"

func TestReconcile_AnonymousOwnerSkipsLookup(t *testing.T) {
	store := &fakeStore{books: []library.Book{{ID: "b1", UserID: "u1", Title: "Dune", Author: "Frank Herbert"}}}
	e := NewEngine(store, assetBase)

	in := []CandidateRecord{{Title: "Dune", Author: "Frank Herbert", AssetURL: "https://covers.example/1-M.jpg"}}
	out, err := e.Reconcile(context.Background(), in, "")
	require.NoError(t, err)

	assert.Zero(t, store.calls)
	require.Len(t, out, 1)
	assert.False(t, out[0].Owned)
	assert.Equal(t, "https://covers.example/1-M.jpg", out[0].AssetURL)
}

func TestReconcile_SingleBatchLookup(t *testing.T) {
	store := &fakeStore{}
	e := NewEngine(store, assetBase)

	in := make([]CandidateRecord, 25)
	for i := range in {
		in[i] = CandidateRecord{Title: "t", Author: "a"}
	}
	_, err := e.Reconcile(context.Background(), in, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
}

func TestReconcile_MatchRules(t *testing.T) {
	owned := []library.Book{
		{ID: "ext", UserID: "u1", Title: "Foundation", Author: "Isaac Asimov", ExternalID: "/works/OL46125W"},
		{ID: "isbn", UserID: "u1", Title: "Neuromancer", Author: "William Gibson", ISBN: "9780441569595"},
		{ID: "ta", UserID: "u1", Title: "Dune", Author: "Frank Herbert"},
		{ID: "other-owner", UserID: "u2", Title: "Emma", Author: "Jane Austen"},
		{ID: "greek", UserID: "u1", Title: "Οδύσσεια του Ομήρου", Author: "Όμηρος"},
	}

	tests := []struct {
		name      string
		candidate CandidateRecord
		wantOwned bool
		wantID    string
	}{
		{
			name:      "external id wins even when title and author differ",
			candidate: CandidateRecord{Title: "Something Else", Author: "Nobody", ExternalID: "/works/OL46125W"},
			wantOwned: true,
			wantID:    "ext",
		},
		{
			name:      "isbn equality",
			candidate: CandidateRecord{Title: "Neuromancer (Ace)", Author: "W. Gibson", ISBN: "9780441569595"},
			wantOwned: true,
			wantID:    "isbn",
		},
		{
			name:      "case-insensitive title and author",
			candidate: CandidateRecord{Title: "dune", Author: "FRANK HERBERT"},
			wantOwned: true,
			wantID:    "ta",
		},
		{
			name:      "unicode case folding handles final sigma",
			candidate: CandidateRecord{Title: "ΟΔΎΣΣΕΙΑ ΤΟΥ ΟΜΉΡΟΥ", Author: "ΌΜΗΡΟΣ"},
			wantOwned: true,
			wantID:    "greek",
		},
		{
			name:      "title alone is not enough",
			candidate: CandidateRecord{Title: "Dune", Author: "Brian Herbert"},
		},
		{
			name:      "unknown external id falls through to title and author",
			candidate: CandidateRecord{Title: "Dune", Author: "Frank Herbert", ExternalID: "/works/OL0W"},
			wantOwned: true,
			wantID:    "ta",
		},
		{
			name:      "empty isbn never matches empty isbn",
			candidate: CandidateRecord{Title: "Unrelated", Author: "Anon", ISBN: ""},
		},
		{
			name:      "another owner's book is invisible",
			candidate: CandidateRecord{Title: "Emma", Author: "Jane Austen"},
		},
	}

	e := NewEngine(&fakeStore{books: owned}, assetBase)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.candidate.AssetURL = "https://covers.example/9-M.jpg"

			out, err := e.Reconcile(context.Background(), []CandidateRecord{tt.candidate}, "u1")
			require.NoError(t, err)
			require.Len(t, out, 1)

			assert.Equal(t, tt.wantOwned, out[0].Owned)
			if tt.wantOwned {
				assert.Equal(t, tt.wantID, out[0].OwnedID)
				assert.Equal(t, assetBase+"/"+tt.wantID, out[0].AssetURL)
			} else {
				assert.Equal(t, "https://covers.example/9-M.jpg", out[0].AssetURL)
			}
		})
	}
}

func TestReconcile_TieBreakUsesFirstInStoreOrder(t *testing.T) {
	store := &fakeStore{books: []library.Book{
		{ID: "first", UserID: "u1", Title: "Dune", Author: "Frank Herbert"},
		{ID: "second", UserID: "u1", Title: "DUNE", Author: "frank herbert"},
	}}
	out, err := NewEngine(store, assetBase).Reconcile(context.Background(),
		[]CandidateRecord{{Title: "dune", Author: "Frank Herbert"}}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "first", out[0].OwnedID)
}

func TestReconcile_PreservesOrderAndCount(t *testing.T) {
	store := &fakeStore{books: []library.Book{{ID: "b1", UserID: "u1", Title: "B", Author: "x"}}}
	in := []CandidateRecord{
		{Title: "A", Author: "x"},
		{Title: "B", Author: "x"},
		{Title: "B", Author: "x"},
		{Title: "C", Author: "x"},
	}

	out, err := NewEngine(store, assetBase).Reconcile(context.Background(), in, "u1")
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].Title, out[i].Title)
	}
	assert.Equal(t, []bool{false, true, true, false}, []bool{out[0].Owned, out[1].Owned, out[2].Owned, out[3].Owned})
}

func TestReconcile_Idempotent(t *testing.T) {
	store := &fakeStore{books: []library.Book{
		{ID: "b1", UserID: "u1", Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"},
	}}
	e := NewEngine(store, assetBase)
	in := []CandidateRecord{
		{Title: "dune", Author: "Frank Herbert", AssetURL: "https://covers.example/1-M.jpg"},
		{Title: "Other", Author: "Someone", AssetURL: "https://covers.example/2-M.jpg"},
	}

	first, err := e.Reconcile(context.Background(), in, "u1")
	require.NoError(t, err)
	second, err := e.Reconcile(context.Background(), in, "u1")
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, "https://covers.example/1-M.jpg", in[0].AssetURL, "input must not be mutated")
}

func TestReconcile_StoreErrorIsUpstreamUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewEngine(&fakeStore{err: boom}, assetBase).Reconcile(context.Background(),
		[]CandidateRecord{{Title: "Dune", Author: "Frank Herbert"}}, "u1")

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestReconcile_DuneScenario(t *testing.T) {
	store := &fakeStore{books: []library.Book{
		{ID: "saved-dune", UserID: "u1", Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"},
	}}
	in := []CandidateRecord{
		{Title: "dune", Author: "Frank Herbert", ISBN: ""},
		{Title: "Dune (Reprint Ed.)", Author: "F. Herbert", ISBN: "9780441013593"},
	}

	out, err := NewEngine(store, assetBase).Reconcile(context.Background(), in, "u1")
	require.NoError(t, err)
	require.Len(t, out, 2)

	for _, r := range out {
		assert.True(t, r.Owned, r.Title)
		assert.Equal(t, "/api/books/covers/saved-dune", r.AssetURL)
	}
}
