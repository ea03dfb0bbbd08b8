package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/catalog/model"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

const (
	booksCacheKey = "books:all"
	booksCacheTTL = 30 * time.Second
)

// postgresRepository - raw SQL with pgxpool, list snapshot cached in Redis.
type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) RepositoryInterface {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

const bookColumns = `id, title, author, subject, publish_date, available_copies, created_at, updated_at`

func scanBook(row pgx.Row) (model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Subject,
		&b.PublishDate,
		&b.AvailableCopies,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

func (r *postgresRepository) collectBooks(rows pgx.Rows) ([]model.Book, error) {
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return books, nil
}

// ========================= SEARCH =====================
// Search - case-insensitive substring match across the searchable columns.
// Ordering is fixed (title, id) so identical queries return stable results.
func (r *postgresRepository) Search(ctx context.Context, query string) ([]model.Book, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM books
		WHERE title ILIKE $1
		   OR author ILIKE $1
		   OR subject ILIKE $1
		   OR publish_date ILIKE $1
		ORDER BY title, id
	`, bookColumns)

	rows, err := r.pool.Query(ctx, sql, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	return r.collectBooks(rows)
}

// ========================= LIST =====================
// List - full inventory snapshot, served from cache when warm.
func (r *postgresRepository) List(ctx context.Context) ([]model.Book, error) {
	var cached []model.Book
	if found, err := r.cache.Get(ctx, booksCacheKey, &cached); err == nil && found {
		return cached, nil
	} else if err != nil {
		// Cache trouble is not fatal, fall through to the database
		logger.Warn("books cache read failed", map[string]interface{}{"error": err.Error()})
	}

	sql := fmt.Sprintf(`SELECT %s FROM books ORDER BY title, id`, bookColumns)

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list query failed: %w", err)
	}

	books, err := r.collectBooks(rows)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, booksCacheKey, books, booksCacheTTL); err != nil {
		logger.Warn("books cache write failed", map[string]interface{}{"error": err.Error()})
	}

	return books, nil
}

// ========================= INSERT =====================
func (r *postgresRepository) Insert(ctx context.Context, book *model.Book) error {
	sql := `
		INSERT INTO books (title, author, subject, publish_date, available_copies, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, sql,
		book.Title,
		book.Author,
		book.Subject,
		book.PublishDate,
		book.AvailableCopies,
		book.CreatedAt,
		book.UpdatedAt,
	).Scan(&book.ID)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	r.invalidate(ctx)
	return nil
}

// ========================= DELETE =====================
// DeleteByTitle removes every row carrying the title (remove-all policy).
func (r *postgresRepository) DeleteByTitle(ctx context.Context, title string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE title = $1`, title)
	if err != nil {
		return 0, fmt.Errorf("delete book: %w", err)
	}

	if tag.RowsAffected() > 0 {
		r.invalidate(ctx)
	}
	return tag.RowsAffected(), nil
}

// ========================= CONDITIONAL DECREMENT =====================
// DecrementCopies is the critical section of the borrow flow. The guard
// (available_copies > 0) and the write are a single UPDATE, so two
// concurrent borrows on the same row serialize on the row lock; a writer
// that blocked re-checks the guard on the locked row, so the count can
// never go negative. When multiple rows share a title, the
// oldest row with stock is decremented.
func (r *postgresRepository) DecrementCopies(ctx context.Context, title string) (*DecrementResult, error) {
	sql := `
		UPDATE books
		SET available_copies = available_copies - 1,
		    updated_at = now()
		WHERE available_copies > 0
		  AND id = (
			SELECT id FROM books
			WHERE title = $1 AND available_copies > 0
			ORDER BY created_at, id
			LIMIT 1
		)
		RETURNING id, available_copies
	`

	var result DecrementResult
	err := r.pool.QueryRow(ctx, sql, title).Scan(&result.BookID, &result.AvailableCopies)
	if errors.Is(err, pgx.ErrNoRows) {
		// Guard failed or title absent; the service tells them apart.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decrement copies: %w", err)
	}

	r.invalidate(ctx)
	return &result, nil
}

func (r *postgresRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE title = $1)`, title,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check book exists: %w", err)
	}
	return exists, nil
}

// invalidate drops the list snapshot after any mutation.
func (r *postgresRepository) invalidate(ctx context.Context) {
	if err := r.cache.Delete(ctx, booksCacheKey); err != nil {
		logger.Warn("books cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
