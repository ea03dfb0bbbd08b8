package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AddBookRequest is the payload for creating a book.
type AddBookRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	Subject         string `json:"subject" binding:"required"`
	PublishDate     string `json:"publish_date" binding:"required"`
	AvailableCopies *int   `json:"available_copies" binding:"required"`
}

func (r AddBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Subject,
			validation.Required.Error("subject is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.PublishDate,
			validation.Required.Error("publish date is required"),
			validation.Date("2006-01-02").Error("publish date must be YYYY-MM-DD"),
		),
		validation.Field(&r.AvailableCopies,
			validation.NotNil.Error("available copies is required"),
			validation.Min(0).Error("available copies cannot be negative"),
		),
	)
}

// TitleRequest is the payload for remove and borrow, which address
// books by title (matching the original client protocol).
type TitleRequest struct {
	Title string `json:"title" binding:"required"`
}

func (r TitleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
	)
}

// BorrowResponse reports the post-decrement count to the borrower.
type BorrowResponse struct {
	BookID          string `json:"book_id"`
	Title           string `json:"title"`
	AvailableCopies int    `json:"available_copies"`
}

// RemoveResponse reports how many records the removal deleted.
type RemoveResponse struct {
	Title        string `json:"title"`
	RemovedCount int64  `json:"removed_count"`
}
