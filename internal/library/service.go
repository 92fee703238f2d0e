package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service provides library business logic.
type Service struct {
	repo      Repository
	coverBase string
}

// NewService creates a library service. coverBase is the path prefix of the
// internal cover endpoint, e.g. "/api/books/covers".
func NewService(repo Repository, coverBase string) *Service {
	return &Service{repo: repo, coverBase: strings.TrimRight(coverBase, "/")}
}

// CoverURL builds the internally hosted asset reference for a saved book.
func (s *Service) CoverURL(id string) string {
	return s.coverBase + "/" + id
}

func (s *Service) decorate(b *Book) {
	if b.HasCover {
		b.CoverURL = s.CoverURL(b.ID)
	}
}

func (s *Service) Save(ctx context.Context, ownerID string, in NewBook) (Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)

	_, err := s.repo.FindByOwnerTitleAuthor(ctx, ownerID, in.Title, in.Author)
	switch {
	case err == nil:
		return Book{}, ErrAlreadyInLibrary
	case !errors.Is(err, ErrNotFound):
		return Book{}, fmt.Errorf("check duplicate: %w", err)
	}

	b, err := s.repo.Create(ctx, ownerID, in)
	if err != nil {
		return Book{}, err
	}
	s.decorate(&b)
	return b, nil
}

// FindAllByOwner returns the owner's whole library in store order.
func (s *Service) FindAllByOwner(ctx context.Context, ownerID string) ([]Book, error) {
	books, err := s.repo.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range books {
		s.decorate(&books[i])
	}
	return books, nil
}

func (s *Service) List(ctx context.Context, ownerID string, q ListQuery) ([]Book, int, error) {
	books, total, err := s.repo.List(ctx, ownerID, q)
	if err != nil {
		return nil, 0, err
	}
	for i := range books {
		s.decorate(&books[i])
	}
	return books, total, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (Book, error) {
	b, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return Book{}, err
	}
	s.decorate(&b)
	return b, nil
}

func (s *Service) UpdateReview(ctx context.Context, ownerID, id, review string, rating int) (Book, error) {
	b, err := s.repo.UpdateReview(ctx, ownerID, id, strings.TrimSpace(review), rating)
	if err != nil {
		return Book{}, err
	}
	s.decorate(&b)
	return b, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func (s *Service) Stats(ctx context.Context, ownerID string) (Stats, error) {
	return s.repo.Stats(ctx, ownerID)
}

func (s *Service) Cover(ctx context.Context, id string) (Cover, error) {
	return s.repo.GetCover(ctx, id)
}
