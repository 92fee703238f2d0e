package search

import (
	"context"
	"strconv"

	"bookshelf/internal/platform/openlibrary"
	"bookshelf/internal/reconcile"
)

// Catalog fetches candidate records for a title query. No hits is an empty
// slice and a nil error.
type Catalog interface {
	Search(ctx context.Context, query string, limit, offset int) ([]reconcile.CandidateRecord, error)
}

// OpenLibraryCatalog adapts the Open Library client to Catalog.
type OpenLibraryCatalog struct {
	client *openlibrary.Client
}

func NewOpenLibraryCatalog(client *openlibrary.Client) *OpenLibraryCatalog {
	return &OpenLibraryCatalog{client: client}
}

func (c *OpenLibraryCatalog) Search(ctx context.Context, query string, limit, offset int) ([]reconcile.CandidateRecord, error) {
	res, err := c.client.SearchByTitle(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]reconcile.CandidateRecord, 0, len(res.Docs))
	for _, d := range res.Docs {
		out = append(out, toCandidate(d, c.client.CoverURL(d.CoverID)))
	}
	return out, nil
}

func toCandidate(d openlibrary.Doc, coverURL string) reconcile.CandidateRecord {
	c := reconcile.CandidateRecord{
		Title:        d.Title,
		Author:       "unknown",
		ExternalID:   d.Key,
		AssetURL:     coverURL,
		CoverID:      d.CoverID,
		EditionCount: d.EditionCount,
		HasFulltext:  d.HasFulltext,
	}
	if c.Title == "" {
		c.Title = "unknown title"
	}
	if len(d.AuthorNames) > 0 && d.AuthorNames[0] != "" {
		c.Author = d.AuthorNames[0]
	}
	if d.FirstPublishYear > 0 {
		c.PublishYear = strconv.Itoa(d.FirstPublishYear)
	}
	if len(d.ISBN) > 0 {
		c.ISBN = d.ISBN[0]
	}
	if c.EditionCount == 0 {
		c.EditionCount = 1
	}
	return c
}
