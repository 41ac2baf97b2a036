package auth

import (
	"context"

	"github.com/dgrijalva/jwt-go"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login checks the credentials and returns a signed token.
	Login(ctx context.Context, email, password string) (string, error)

	// ParseToken validates a token and returns the operator it was issued to.
	ParseToken(token string) (*Operator, error)
}

// Operator is the signed-in identity carried on a request.
type Operator struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Claims is the JWT payload issued at login.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.StandardClaims
}

type ctxKey string

const operatorKey ctxKey = "operator"

// WithOperator returns a context carrying op.
func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorKey, op)
}

// OperatorFromContext returns the signed-in operator, if any.
func OperatorFromContext(ctx context.Context) (*Operator, bool) {
	op, ok := ctx.Value(operatorKey).(*Operator)
	return op, ok && op != nil
}
