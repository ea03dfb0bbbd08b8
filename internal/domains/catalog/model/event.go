package model

// EventKind discriminates inventory change notifications on the wire.
type EventKind string

const (
	EventBookAdded    EventKind = "book_added"
	EventBookRemoved  EventKind = "book_removed"
	EventBookBorrowed EventKind = "book_borrowed"
)

// ChangeEvent describes one committed inventory mutation. Events are created
// at commit time and discarded after fan-out; there is no replay log, so a
// subscriber only ever sees events published after it connected.
type ChangeEvent struct {
	Kind      EventKind `json:"kind"`
	BookID    string    `json:"book_id,omitempty"`
	BookTitle string    `json:"book_title,omitempty"`

	// book_added carries the full created record.
	Book *Book `json:"book,omitempty"`

	// book_removed carries how many rows the title matched.
	RemovedCount int64 `json:"removed_count,omitempty"`

	// book_borrowed carries the post-decrement count.
	AvailableCopies *int `json:"available_copies,omitempty"`
}

// BookAddedEvent builds the notification for a newly persisted book.
func BookAddedEvent(b *Book) ChangeEvent {
	return ChangeEvent{
		Kind:      EventBookAdded,
		BookID:    b.ID.String(),
		BookTitle: b.Title,
		Book:      b,
	}
}

// BookRemovedEvent builds the notification for a deleted title.
func BookRemovedEvent(title string, removed int64) ChangeEvent {
	return ChangeEvent{
		Kind:         EventBookRemoved,
		BookTitle:    title,
		RemovedCount: removed,
	}
}

// BookBorrowedEvent builds the notification for a successful borrow.
func BookBorrowedEvent(bookID, title string, newCount int) ChangeEvent {
	return ChangeEvent{
		Kind:            EventBookBorrowed,
		BookID:          bookID,
		BookTitle:       title,
		AvailableCopies: &newCount,
	}
}
