package repository

import (
	"context"

	"library-backend/internal/domains/catalog/model"
)

// DecrementResult reports a successful conditional decrement.
type DecrementResult struct {
	BookID          string
	AvailableCopies int
}

// RepositoryInterface is the persistence contract for the catalog.
// The conditional decrement relies on the store's native atomicity:
// the guard check and the write are one statement, never two.
type RepositoryInterface interface {
	// Search matches query as a case-insensitive substring against
	// title, author, subject or publish date.
	Search(ctx context.Context, query string) ([]model.Book, error)

	// List returns the full inventory snapshot.
	List(ctx context.Context) ([]model.Book, error)

	// Insert persists a new book and fills in its assigned id.
	Insert(ctx context.Context, book *model.Book) error

	// DeleteByTitle removes every row with the title, returning the count.
	DeleteByTitle(ctx context.Context, title string) (int64, error)

	// DecrementCopies atomically decrements available copies for one row
	// with the title where copies > 0. Returns nil when no row qualified,
	// either because the title is absent or every pool is exhausted; the
	// caller distinguishes the two via ExistsByTitle.
	DecrementCopies(ctx context.Context, title string) (*DecrementResult, error)

	// ExistsByTitle reports whether any row carries the title.
	ExistsByTitle(ctx context.Context, title string) (bool, error)
}
