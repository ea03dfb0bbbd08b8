package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/catalog/model"
	"library-backend/internal/domains/catalog/repository"
)

// memoryRepository is a mutex-guarded in-memory stand-in for the postgres
// repository. Its DecrementCopies mirrors the store contract: guard check
// and write are one critical section.
type memoryRepository struct {
	mu    sync.Mutex
	books []model.Book
}

func newMemoryRepository(books ...model.Book) *memoryRepository {
	for i := range books {
		if books[i].ID == uuid.Nil {
			books[i].ID = uuid.New()
		}
	}
	return &memoryRepository{books: books}
}

func (r *memoryRepository) Search(ctx context.Context, query string) ([]model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := strings.ToLower(query)
	matches := make([]model.Book, 0)
	for _, b := range r.books {
		haystack := strings.ToLower(b.Title + " " + b.Author + " " + b.Subject + " " + b.PublishDate)
		if strings.Contains(haystack, q) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

func (r *memoryRepository) List(ctx context.Context) ([]model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Book, len(r.books))
	copy(out, r.books)
	return out, nil
}

func (r *memoryRepository) Insert(ctx context.Context, book *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	book.ID = uuid.New()
	r.books = append(r.books, *book)
	return nil
}

func (r *memoryRepository) DeleteByTitle(ctx context.Context, title string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.books[:0]
	var removed int64
	for _, b := range r.books {
		if b.Title == title {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	r.books = kept
	return removed, nil
}

func (r *memoryRepository) DecrementCopies(ctx context.Context, title string) (*repository.DecrementResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.books {
		if r.books[i].Title == title && r.books[i].AvailableCopies > 0 {
			r.books[i].AvailableCopies--
			return &repository.DecrementResult{
				BookID:          r.books[i].ID.String(),
				AvailableCopies: r.books[i].AvailableCopies,
			}, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) copies(title string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, b := range r.books {
		if b.Title == title {
			total += b.AvailableCopies
		}
	}
	return total
}

// recordingPublisher captures published events in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ChangeEvent
}

func (p *recordingPublisher) Publish(event model.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) all() []model.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.ChangeEvent, len(p.events))
	copy(out, p.events)
	return out
}

func intPtr(v int) *int { return &v }

func book(title string, copies int) model.Book {
	now := time.Now()
	return model.Book{
		ID:              uuid.New(),
		Title:           title,
		Author:          "Frank Herbert",
		Subject:         "Science Fiction",
		PublishDate:     "1965-08-01",
		AvailableCopies: copies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestBorrowBook_Success(t *testing.T) {
	repo := newMemoryRepository(book("Dune", 3))
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	resp, err := svc.BorrowBook(context.Background(), "Dune")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.AvailableCopies)
	assert.Equal(t, "Dune", resp.Title)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventBookBorrowed, events[0].Kind)
	assert.Equal(t, 2, *events[0].AvailableCopies)
}

func TestBorrowBook_NotFound(t *testing.T) {
	repo := newMemoryRepository()
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	_, err := svc.BorrowBook(context.Background(), "NoSuchBook")
	assert.ErrorIs(t, err, model.ErrBookNotFound)
	assert.Empty(t, pub.all())
}

func TestBorrowBook_OutOfStock(t *testing.T) {
	repo := newMemoryRepository(book("Dune", 0))
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	_, err := svc.BorrowBook(context.Background(), "Dune")
	assert.ErrorIs(t, err, model.ErrOutOfStock)
	assert.Empty(t, pub.all())
	assert.Equal(t, 0, repo.copies("Dune"))
}

// Two concurrent borrows against one remaining copy: exactly one succeeds
// with a new count of 0, the other reports out of stock, and exactly one
// event is emitted.
func TestBorrowBook_DuneScenario(t *testing.T) {
	repo := newMemoryRepository(book("Dune", 1))
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	results := make(chan error, 2)
	var zeroCount atomic.Int32

	for i := 0; i < 2; i++ {
		go func() {
			resp, err := svc.BorrowBook(context.Background(), "Dune")
			if err == nil && resp.AvailableCopies == 0 {
				zeroCount.Add(1)
			}
			results <- err
		}()
	}

	var successes, outOfStock int
	for i := 0; i < 2; i++ {
		err := <-results
		switch {
		case err == nil:
			successes++
		case errors.Is(err, model.ErrOutOfStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, outOfStock)
	assert.Equal(t, int32(1), zeroCount.Load())
	assert.Equal(t, 0, repo.copies("Dune"))
	require.Len(t, pub.all(), 1)
}

// k concurrent borrows against m < k copies: exactly m successes,
// k-m out-of-stock errors, final count 0, and the emitted counts are a
// permutation-free descending sequence m-1 .. 0.
func TestBorrowBook_ConcurrentNeverOverAllocates(t *testing.T) {
	const (
		copies    = 25
		borrowers = 64
	)

	repo := newMemoryRepository(book("Dune", copies))
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	var successCount, stockoutCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.BorrowBook(context.Background(), "Dune")
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, model.ErrOutOfStock):
				stockoutCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(copies), successCount.Load())
	assert.Equal(t, int32(borrowers-copies), stockoutCount.Load())
	assert.Equal(t, 0, repo.copies("Dune"))

	events := pub.all()
	require.Len(t, events, copies)
	for i, ev := range events {
		require.Equal(t, model.EventBookBorrowed, ev.Kind)
		assert.Equal(t, copies-1-i, *ev.AvailableCopies, "event %d out of commit order", i)
	}
}

// Borrows on different titles proceed independently.
func TestBorrowBook_DifferentTitlesIndependent(t *testing.T) {
	repo := newMemoryRepository(book("Dune", 1), book("Foundation", 1))
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	var wg sync.WaitGroup
	for _, title := range []string{"Dune", "Foundation"} {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			_, err := svc.BorrowBook(context.Background(), title)
			assert.NoError(t, err)
		}(title)
	}
	wg.Wait()

	assert.Equal(t, 0, repo.copies("Dune"))
	assert.Equal(t, 0, repo.copies("Foundation"))
	assert.Len(t, pub.all(), 2)
}

// Duplicate titles: borrowing drains the first pool before falling through
// to the next row with stock.
func TestBorrowBook_DuplicateTitlesFallThrough(t *testing.T) {
	repo := newMemoryRepository(book("Dune", 1), book("Dune", 1))
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	for i := 0; i < 2; i++ {
		_, err := svc.BorrowBook(context.Background(), "Dune")
		require.NoError(t, err)
	}

	_, err := svc.BorrowBook(context.Background(), "Dune")
	assert.ErrorIs(t, err, model.ErrOutOfStock)
	assert.Equal(t, 0, repo.copies("Dune"))
}

func TestAddBook_Success(t *testing.T) {
	repo := newMemoryRepository()
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	created, err := svc.AddBook(context.Background(), model.AddBookRequest{
		Title:           "Dune",
		Author:          "Frank Herbert",
		Subject:         "Science Fiction",
		PublishDate:     "1965-08-01",
		AvailableCopies: intPtr(5),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, 5, created.AvailableCopies)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventBookAdded, events[0].Kind)
	require.NotNil(t, events[0].Book)
	assert.Equal(t, created.ID, events[0].Book.ID)
}

func TestAddBook_NegativeCopiesRejected(t *testing.T) {
	repo := newMemoryRepository()
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	_, err := svc.AddBook(context.Background(), model.AddBookRequest{
		Title:           "Dune",
		Author:          "Frank Herbert",
		Subject:         "Science Fiction",
		PublishDate:     "1965-08-01",
		AvailableCopies: intPtr(-1),
	})
	require.Error(t, err)

	// Nothing persisted, nothing announced
	books, _ := repo.List(context.Background())
	assert.Empty(t, books)
	assert.Empty(t, pub.all())
}

func TestAddBook_MissingFieldsRejected(t *testing.T) {
	repo := newMemoryRepository()
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	_, err := svc.AddBook(context.Background(), model.AddBookRequest{
		Title: "Dune",
	})
	require.Error(t, err)
	assert.Empty(t, pub.all())
}

func TestRemoveBook_RemovesAllMatchesAndAnnouncesOnce(t *testing.T) {
	repo := newMemoryRepository(book("Dune", 1), book("Dune", 4), book("Foundation", 2))
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	removed, err := svc.RemoveBook(context.Background(), "Dune")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	books, _ := repo.List(context.Background())
	require.Len(t, books, 1)
	assert.Equal(t, "Foundation", books[0].Title)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventBookRemoved, events[0].Kind)
	assert.Equal(t, "Dune", events[0].BookTitle)
	assert.Equal(t, int64(2), events[0].RemovedCount)
}

func TestRemoveBook_NotFound(t *testing.T) {
	repo := newMemoryRepository(book("Dune", 1))
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	_, err := svc.RemoveBook(context.Background(), "NoSuchBook")
	assert.ErrorIs(t, err, model.ErrBookNotFound)
	assert.Empty(t, pub.all())
}

func TestSearch_EmptyResultIsNotAnError(t *testing.T) {
	repo := newMemoryRepository(book("Dune", 1))
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	books, err := svc.Search(context.Background(), "zzz-no-match")
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestSearch_MatchesAcrossFields(t *testing.T) {
	repo := newMemoryRepository(book("Dune", 1), book("Foundation", 1))
	pub := &recordingPublisher{}
	svc := NewCatalogService(repo, pub)

	byAuthor, err := svc.Search(context.Background(), "herbert")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	byTitle, err := svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Dune", byTitle[0].Title)

	byDate, err := svc.Search(context.Background(), "1965")
	require.NoError(t, err)
	assert.Len(t, byDate, 2)
}
