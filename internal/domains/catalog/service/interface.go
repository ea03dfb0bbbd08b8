package service

import (
	"context"

	"library-backend/internal/domains/catalog/model"
)

// EventPublisher is the sink for committed inventory changes.
// Implemented by the notification hub; delivery failures never
// propagate back through this interface.
type EventPublisher interface {
	Publish(event model.ChangeEvent)
}

// ServiceInterface owns the catalog business rules.
type ServiceInterface interface {
	Search(ctx context.Context, query string) ([]model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	AddBook(ctx context.Context, req model.AddBookRequest) (*model.Book, error)
	RemoveBook(ctx context.Context, title string) (int64, error)
	BorrowBook(ctx context.Context, title string) (*model.BorrowResponse, error)
}
