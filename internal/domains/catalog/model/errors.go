package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/response"
	"library-backend/pkg/logger"
)

var (
	// ErrBookNotFound is returned when no book matches the requested title.
	ErrBookNotFound = errors.New("book not found")

	// ErrOutOfStock is returned when a borrow finds zero available copies.
	ErrOutOfStock = errors.New("no available copies for borrowing")

	// ErrDatabaseQuery wraps unexpected persistence failures.
	ErrDatabaseQuery = errors.New("database query error")
)

var catalogErrorMap = map[error]struct {
	Status  int
	Code    string
	Message string
}{
	ErrBookNotFound: {
		Status:  http.StatusNotFound,
		Code:    "BOOK_NOT_FOUND",
		Message: "The specified book does not exist",
	},
	ErrOutOfStock: {
		Status:  http.StatusConflict,
		Code:    "OUT_OF_STOCK",
		Message: "No available copies for borrowing",
	},
}

// HandleCatalogError maps domain errors onto HTTP responses.
// Returns true when a response was written.
func HandleCatalogError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for sentinel, cfg := range catalogErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, cfg.Status, cfg.Code, cfg.Message)
			return true
		}
	}

	logger.Error("catalog operation failed", err)
	response.InternalServerError(c, "Internal server error")
	return true
}
