package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"library-backend/internal/domains/catalog/model"
	"library-backend/internal/domains/catalog/service"
	"library-backend/internal/shared/response"
)

// CatalogHandler translates HTTP requests into catalog service calls.
type CatalogHandler struct {
	service service.ServiceInterface
}

func NewCatalogHandler(service service.ServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

// ListBooks handles GET /books - full inventory snapshot.
func (h *CatalogHandler) ListBooks(c *gin.Context) {
	books, err := h.service.List(c.Request.Context())
	if model.HandleCatalogError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, books)
}

// SearchBooks handles GET /books/search?query=...
// An empty result is a 200 with an empty list, never an error.
func (h *CatalogHandler) SearchBooks(c *gin.Context) {
	query := c.Query("query")

	books, err := h.service.Search(c.Request.Context(), query)
	if model.HandleCatalogError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, books)
}

// AddBook handles POST /books.
func (h *CatalogHandler) AddBook(c *gin.Context) {
	var req model.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	book, err := h.service.AddBook(c.Request.Context(), req)
	if err != nil {
		// ozzo validation errors carry per-field details worth surfacing
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid book fields", verrs)
			return
		}
		model.HandleCatalogError(c, err)
		return
	}

	c.Header("Location", "/api/v1/books/"+book.ID.String())
	response.Success(c, http.StatusCreated, book)
}

// RemoveBook handles POST /books/remove.
func (h *CatalogHandler) RemoveBook(c *gin.Context) {
	var req model.TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", err.Error())
		return
	}

	removed, err := h.service.RemoveBook(c.Request.Context(), req.Title)
	if model.HandleCatalogError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, model.RemoveResponse{
		Title:        req.Title,
		RemovedCount: removed,
	})
}

// BorrowBook handles POST /books/borrow.
func (h *CatalogHandler) BorrowBook(c *gin.Context) {
	var req model.TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", err.Error())
		return
	}

	result, err := h.service.BorrowBook(c.Request.Context(), req.Title)
	if model.HandleCatalogError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, result)
}
