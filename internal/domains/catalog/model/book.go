package model

import (
	"time"

	"github.com/google/uuid"
)

// Book represents one catalog record with a shared pool of borrowable copies.
// AvailableCopies is the only field with a concurrency hazard: it must never
// go negative under concurrent borrows.
type Book struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Subject         string    `json:"subject" db:"subject"`
	PublishDate     string    `json:"publish_date" db:"publish_date"`
	AvailableCopies int       `json:"available_copies" db:"available_copies"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
