package user

import "context"

// Service defines the interface for operator account business logic.
type Service interface {
	RegisterUser(ctx context.Context, req RegisterRequest) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	// EnsureUser registers req unless an operator with that email exists.
	// created reports whether a new account was made.
	EnsureUser(ctx context.Context, req RegisterRequest) (u *User, created bool, err error)
}
