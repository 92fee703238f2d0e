package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"bookshelf/internal/platform/postgres"
)

const bookColumns = `id, user_id, title, author, publish_year, isbn, open_library_id, review, rating,
	cover IS NOT NULL AS has_cover, created_at, updated_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresRepo struct {
	db      postgres.Querier
	timeout time.Duration
}

func NewPostgresRepo(db postgres.Querier, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return postgres.WithTimeout(ctx, r.timeout)
}

// mapError converts pgx errors to library errors. Context errors pass through.
func mapError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case postgres.IsContext(err):
		return fmt.Errorf("library %s: %w", op, err)
	case postgres.IsNoRows(err), postgres.IsInvalidInput(err):
		return fmt.Errorf("library %s: %w", op, ErrNotFound)
	case postgres.IsUniqueViolation(err):
		return fmt.Errorf("library %s: %w", op, ErrAlreadyInLibrary)
	}
	return fmt.Errorf("library %s: %w", op, err)
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Author, &b.PublishYear, &b.ISBN, &b.ExternalID,
		&b.Review, &b.Rating, &b.HasCover, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func collectBooks(rows pgx.Rows) ([]Book, error) {
	defer rows.Close()
	books := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *PostgresRepo) Create(ctx context.Context, ownerID string, in NewBook) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var cover any
	if len(in.Cover) > 0 {
		cover = in.Cover
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO saved_books
			(user_id, title, author, publish_year, isbn, open_library_id, review, rating, cover, cover_content_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+bookColumns,
		ownerID, in.Title, in.Author, in.PublishYear, in.ISBN, in.ExternalID, in.Review, in.Rating,
		cover, in.CoverContentType,
	)
	b, err := scanBook(row)
	if err != nil {
		return Book{}, mapError(err, "create")
	}
	return b, nil
}

func (r *PostgresRepo) FindAllByOwner(ctx context.Context, ownerID string) ([]Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+bookColumns+`
		FROM saved_books
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, mapError(err, "find all")
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, mapError(err, "find all")
	}
	return books, nil
}

func (r *PostgresRepo) FindByOwnerTitleAuthor(ctx context.Context, ownerID, title, author string) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT `+bookColumns+`
		FROM saved_books
		WHERE user_id = $1 AND lower(title) = lower($2) AND lower(author) = lower($3)
		ORDER BY created_at ASC, id ASC
		LIMIT 1`, ownerID, title, author)
	b, err := scanBook(row)
	if err != nil {
		return Book{}, mapError(err, "find by title and author")
	}
	return b, nil
}

// escapeLike escapes LIKE metacharacters so search input is matched literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func orderBy(sortBy string) []string {
	switch sortBy {
	case SortRatingAsc:
		return []string{"rating ASC", "created_at DESC"}
	case SortRatingDesc:
		return []string{"rating DESC", "created_at DESC"}
	case SortTitleAsc:
		return []string{"lower(title) ASC", "created_at DESC"}
	case SortTitleDesc:
		return []string{"lower(title) DESC", "created_at DESC"}
	case SortOldest:
		return []string{"created_at ASC", "id ASC"}
	default:
		return []string{"created_at DESC", "id DESC"}
	}
}

func listFilter(ownerID string, q ListQuery) sq.And {
	where := sq.And{sq.Eq{"user_id": ownerID}}
	if s := strings.TrimSpace(q.Search); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		where = append(where, sq.Or{sq.ILike{"title": pattern}, sq.ILike{"author": pattern}})
	}
	if q.ExcludeNoReview {
		where = append(where, sq.NotEq{"review": ""})
	}
	return where
}

func (r *PostgresRepo) List(ctx context.Context, ownerID string, q ListQuery) ([]Book, int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where := listFilter(ownerID, q)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("saved_books").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("library list: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "list count")
	}

	sel := psql.Select(bookColumns).
		From("saved_books").
		Where(where).
		OrderBy(orderBy(q.SortBy)...)
	if q.Limit > 0 {
		sel = sel.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		sel = sel.Offset(uint64(q.Offset))
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("library list: build select: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err, "list")
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, 0, mapError(err, "list")
	}
	return books, total, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, ownerID, id string) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT `+bookColumns+`
		FROM saved_books
		WHERE id = $1 AND user_id = $2`, id, ownerID)
	b, err := scanBook(row)
	if err != nil {
		return Book{}, mapError(err, "get")
	}
	return b, nil
}

func (r *PostgresRepo) UpdateReview(ctx context.Context, ownerID, id, review string, rating int) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		UPDATE saved_books
		SET review = $3, rating = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+bookColumns, id, ownerID, review, rating)
	b, err := scanBook(row)
	if err != nil {
		return Book{}, mapError(err, "update review")
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM saved_books WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return mapError(err, "delete")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("library delete: %w", ErrNotFound)
	}
	return nil
}

func (r *PostgresRepo) Stats(ctx context.Context, ownerID string) (Stats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var s Stats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE review <> ''),
		       COALESCE(AVG(rating), 0)::float8,
		       COALESCE(MAX(rating), 0),
		       COALESCE(MIN(rating), 0)
		FROM saved_books
		WHERE user_id = $1`, ownerID).
		Scan(&s.TotalBooks, &s.BooksWithReview, &s.AverageRating, &s.HighestRating, &s.LowestRating)
	if err != nil {
		return Stats{}, mapError(err, "stats")
	}
	s.BooksWithoutReview = s.TotalBooks - s.BooksWithReview
	return s, nil
}

func (r *PostgresRepo) GetCover(ctx context.Context, id string) (Cover, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var c Cover
	err := r.db.QueryRow(ctx, `
		SELECT cover, cover_content_type, title
		FROM saved_books
		WHERE id = $1`, id).Scan(&c.Data, &c.ContentType, &c.Title)
	if err != nil {
		return Cover{}, mapError(err, "cover")
	}
	if len(c.Data) == 0 {
		return Cover{}, fmt.Errorf("library cover: %w", ErrNotFound)
	}
	return c, nil
}
