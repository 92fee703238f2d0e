package search

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"bookshelf/internal/history"
	"bookshelf/internal/library"
	"bookshelf/internal/reconcile"
)

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) Search(ctx context.Context, query string, limit, offset int) ([]reconcile.CandidateRecord, error) {
	args := m.Called(ctx, query, limit, offset)
	recs, _ := args.Get(0).([]reconcile.CandidateRecord)
	return recs, args.Error(1)
}

type mockHistory struct{ mock.Mock }

func (m *mockHistory) Recent(ctx context.Context, ownerID string, limit int) ([]history.Entry, error) {
	args := m.Called(ctx, ownerID, limit)
	entries, _ := args.Get(0).([]history.Entry)
	return entries, args.Error(1)
}

func (m *mockHistory) Stats(ctx context.Context, ownerID string) (history.Stats, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(history.Stats), args.Error(1)
}

type submission struct{ owner, query string }

type fakeRecorder struct {
	mu   sync.Mutex
	subs []submission
}

func (f *fakeRecorder) Submit(_ context.Context, ownerID, query string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, submission{ownerID, query})
}

func (f *fakeRecorder) submissions() []submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submission(nil), f.subs...)
}

type libraryStub struct {
	books []library.Book
	err   error
}

func (s *libraryStub) FindAllByOwner(_ context.Context, ownerID string) ([]library.Book, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []library.Book
	for _, b := range s.books {
		if b.UserID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

type memCache struct {
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, val []byte) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = val
	return nil
}
