// Package reconcile annotates externally fetched catalog records with whether
// the requesting owner already has them in their library.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"bookshelf/internal/library"
)

// ErrUpstreamUnavailable reports that the collection store could not be read.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// CandidateRecord is one catalog hit, alive for a single search call.
type CandidateRecord struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	PublishYear  string `json:"publish_year"`
	ExternalID   string `json:"open_library_id,omitempty"`
	ISBN         string `json:"isbn,omitempty"`
	AssetURL     string `json:"cover_url,omitempty"`
	CoverID      int    `json:"cover_id,omitempty"`
	EditionCount int    `json:"edition_count"`
	HasFulltext  bool   `json:"has_fulltext"`
}

// AnnotatedRecord is a candidate with its ownership flag.
type AnnotatedRecord struct {
	CandidateRecord
	Owned   bool   `json:"in_library"`
	OwnedID string `json:"library_id,omitempty"`
}

// OwnedLister reads an owner's whole library in a single round-trip.
type OwnedLister interface {
	FindAllByOwner(ctx context.Context, ownerID string) ([]library.Book, error)
}

type Engine struct {
	store     OwnedLister
	assetBase string
}

// NewEngine builds an engine that rewrites owned assets to assetBase/<id>.
func NewEngine(store OwnedLister, assetBase string) *Engine {
	return &Engine{store: store, assetBase: strings.TrimRight(assetBase, "/")}
}

// Reconcile annotates candidates for ownerID. An empty ownerID means an
// anonymous caller: nothing is looked up and every record is unowned.
// Output has the same length and order as candidates.
func (e *Engine) Reconcile(ctx context.Context, candidates []CandidateRecord, ownerID string) ([]AnnotatedRecord, error) {
	out := make([]AnnotatedRecord, len(candidates))
	for i, c := range candidates {
		out[i] = AnnotatedRecord{CandidateRecord: c}
	}
	if ownerID == "" || len(candidates) == 0 {
		return out, nil
	}

	owned, err := e.store.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: load library: %w", ErrUpstreamUnavailable, err)
	}

	idx := newOwnedIndex(owned)
	for i := range out {
		b, ok := idx.match(out[i].CandidateRecord)
		if !ok {
			continue
		}
		out[i].Owned = true
		out[i].OwnedID = b.ID
		out[i].AssetURL = e.assetBase + "/" + b.ID
	}
	return out, nil
}

// ownedIndex holds the first owned record per key, in store order.
type ownedIndex struct {
	fold          cases.Caser
	byExternalID  map[string]library.Book
	byISBN        map[string]library.Book
	byTitleAuthor map[string]library.Book
}

// titleAuthorKey uses Unicode case folding; "ΟΔΥΣΣΕΥΣ" and "Οδυσσευς" share a key.
func (idx ownedIndex) titleAuthorKey(title, author string) string {
	return idx.fold.String(title) + "\x00" + idx.fold.String(author)
}

func newOwnedIndex(books []library.Book) ownedIndex {
	idx := ownedIndex{
		fold:          cases.Fold(),
		byExternalID:  make(map[string]library.Book, len(books)),
		byISBN:        make(map[string]library.Book, len(books)),
		byTitleAuthor: make(map[string]library.Book, len(books)),
	}
	put := func(m map[string]library.Book, k string, b library.Book) {
		if _, exists := m[k]; !exists {
			m[k] = b
		}
	}
	for _, b := range books {
		if b.ExternalID != "" {
			put(idx.byExternalID, b.ExternalID, b)
		}
		if b.ISBN != "" {
			put(idx.byISBN, b.ISBN, b)
		}
		put(idx.byTitleAuthor, idx.titleAuthorKey(b.Title, b.Author), b)
	}
	return idx
}

// match applies external id, then ISBN, then title+author. First hit wins.
func (idx ownedIndex) match(c CandidateRecord) (library.Book, bool) {
	if c.ExternalID != "" {
		if b, ok := idx.byExternalID[c.ExternalID]; ok {
			return b, true
		}
	}
	if c.ISBN != "" {
		if b, ok := idx.byISBN[c.ISBN]; ok {
			return b, true
		}
	}
	b, ok := idx.byTitleAuthor[idx.titleAuthorKey(c.Title, c.Author)]
	return b, ok
}
