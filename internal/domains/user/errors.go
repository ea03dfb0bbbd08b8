package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/response"
	"library-backend/pkg/logger"
)

var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

var userErrorMap = map[error]struct {
	Status  int
	Code    string
	Message string
}{
	ErrEmailAlreadyExists: {
		Status:  http.StatusConflict,
		Code:    "EMAIL_EXISTS",
		Message: "This email is already registered",
	},
	ErrInvalidCredentials: {
		Status:  http.StatusUnauthorized,
		Code:    "INVALID_CREDENTIALS",
		Message: "Invalid email or password",
	},
	ErrUserNotFound: {
		Status:  http.StatusNotFound,
		Code:    "USER_NOT_FOUND",
		Message: "The specified user does not exist",
	},
}

// HandleUserError maps domain errors onto HTTP responses.
func HandleUserError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for sentinel, cfg := range userErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, cfg.Status, cfg.Code, cfg.Message)
			return true
		}
	}

	logger.Error("user operation failed", err)
	response.InternalServerError(c, "Internal server error")
	return true
}
