package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"library-backend/internal/domains/catalog/model"
	"library-backend/internal/domains/catalog/repository"
	"library-backend/pkg/logger"
)

// CatalogService implements the inventory business rules.
//
// The store guarantees that a borrow can never drive a count negative
// (conditional UPDATE). On top of that, a per-title mutex wraps each
// mutation together with its event emission, so events for one book reach
// the hub in the same order the mutations committed. Mutations on
// different titles stay fully concurrent.
type CatalogService struct {
	repo      repository.RepositoryInterface
	publisher EventPublisher

	mu     sync.Mutex
	titles map[string]*sync.Mutex
}

func NewCatalogService(repo repository.RepositoryInterface, publisher EventPublisher) ServiceInterface {
	return &CatalogService{
		repo:      repo,
		publisher: publisher,
		titles:    make(map[string]*sync.Mutex),
	}
}

// titleLock returns the mutex serializing mutations on one title.
func (s *CatalogService) titleLock(title string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.titles[title]
	if !ok {
		l = &sync.Mutex{}
		s.titles[title] = l
	}
	return l
}

// Search matches query as a case-insensitive substring against title,
// author, subject or publish date. No match is an empty slice, not an error.
func (s *CatalogService) Search(ctx context.Context, query string) ([]model.Book, error) {
	books, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// List returns the full inventory snapshot.
func (s *CatalogService) List(ctx context.Context) ([]model.Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// AddBook validates, persists and announces a new book.
// Nothing is persisted and no event is emitted on a validation failure.
func (s *CatalogService) AddBook(ctx context.Context, req model.AddBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	book := &model.Book{
		Title:           req.Title,
		Author:          req.Author,
		Subject:         req.Subject,
		PublishDate:     req.PublishDate,
		AvailableCopies: *req.AvailableCopies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	lock := s.titleLock(req.Title)
	lock.Lock()
	defer lock.Unlock()

	if err := s.repo.Insert(ctx, book); err != nil {
		return nil, fmt.Errorf("add book: %w", err)
	}

	s.publisher.Publish(model.BookAddedEvent(book))
	return book, nil
}

// RemoveBook deletes every record with the title (remove-all policy,
// matching the original delete-by-title behavior) and announces it.
func (s *CatalogService) RemoveBook(ctx context.Context, title string) (int64, error) {
	lock := s.titleLock(title)
	lock.Lock()
	defer lock.Unlock()

	removed, err := s.repo.DeleteByTitle(ctx, title)
	if err != nil {
		return 0, fmt.Errorf("remove book: %w", err)
	}
	if removed == 0 {
		return 0, model.ErrBookNotFound
	}

	s.publisher.Publish(model.BookRemovedEvent(title, removed))
	return removed, nil
}

// BorrowBook takes one copy of the title and reports the new count.
//
// The decrement itself is atomic in the store, so over-allocation is
// impossible regardless of interleaving. The title lock exists for the
// notification contract: it pins event order to commit order, and it
// makes the not-found / out-of-stock distinction race-free against a
// concurrent RemoveBook.
func (s *CatalogService) BorrowBook(ctx context.Context, title string) (*model.BorrowResponse, error) {
	lock := s.titleLock(title)
	lock.Lock()
	defer lock.Unlock()

	result, err := s.repo.DecrementCopies(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("borrow book: %w", err)
	}

	if result == nil {
		// No row qualified: either the title does not exist or every
		// pool is exhausted.
		exists, err := s.repo.ExistsByTitle(ctx, title)
		if err != nil {
			return nil, fmt.Errorf("borrow book: %w", err)
		}
		if !exists {
			return nil, model.ErrBookNotFound
		}
		return nil, model.ErrOutOfStock
	}

	logger.Info("book borrowed", map[string]interface{}{
		"book_id":          result.BookID,
		"title":            title,
		"available_copies": result.AvailableCopies,
	})

	s.publisher.Publish(model.BookBorrowedEvent(result.BookID, title, result.AvailableCopies))

	return &model.BorrowResponse{
		BookID:          result.BookID,
		Title:           title,
		AvailableCopies: result.AvailableCopies,
	}, nil
}
