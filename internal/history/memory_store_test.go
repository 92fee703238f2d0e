package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store used by the cache tests.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []Entry
	err     error
	deletes int

	// onRecent runs after Recent has read its snapshot, outside the lock.
	onRecent func()
}

func (m *memStore) sorted(ownerID string) []Entry {
	var out []Entry
	for _, e := range m.entries {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memStore) Recent(_ context.Context, ownerID string, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := m.sorted(ownerID)
	if len(out) > limit {
		out = out[:limit]
	}
	hook := m.onRecent
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	m.mu.Lock()
	return out, nil
}

func (m *memStore) Insert(_ context.Context, ownerID, query string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	m.entries = append(m.entries, Entry{ID: m.nextID, OwnerID: ownerID, Query: query, CreatedAt: at})
	return nil
}

func (m *memStore) IDsNewestFirst(_ context.Context, ownerID string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for _, e := range m.sorted(ownerID) {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func (m *memStore) DeleteByIDs(_ context.Context, ownerID string, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.OwnerID == ownerID && drop[e.ID] {
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return nil
}

func (m *memStore) Count(_ context.Context, ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return len(m.sorted(ownerID)), nil
}

// tickingClock returns a strictly increasing time on every call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
