package library

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=library

// Repository defines the contract for saved book storage. Every method is
// scoped to a single owner except GetCover, which backs the public asset route.
type Repository interface {
	Create(ctx context.Context, ownerID string, b NewBook) (Book, error)
	// FindAllByOwner returns every book of the owner ordered by creation time,
	// oldest first, ties broken by id.
	FindAllByOwner(ctx context.Context, ownerID string) ([]Book, error)
	FindByOwnerTitleAuthor(ctx context.Context, ownerID, title, author string) (Book, error)
	List(ctx context.Context, ownerID string, q ListQuery) ([]Book, int, error)
	GetByID(ctx context.Context, ownerID, id string) (Book, error)
	UpdateReview(ctx context.Context, ownerID, id, review string, rating int) (Book, error)
	Delete(ctx context.Context, ownerID, id string) error
	Stats(ctx context.Context, ownerID string) (Stats, error)
	GetCover(ctx context.Context, id string) (Cover, error)
}
