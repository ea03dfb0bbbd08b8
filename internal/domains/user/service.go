package user

import (
	"context"
)

// Service owns the auth flows. The rest of the system treats it as an
// opaque collaborator: authenticate(credentials) -> user id or error.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}
