package customer

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no customer matches a lookup. For a lookup by
// name this is an expected outcome, not a failure.
var ErrNotFound = errors.New("customer not found")

// Customer is a customer record owned by the backend.
type Customer struct {
	// ID is nil when the backend did not report one on creation.
	ID            *int64
	Name          string
	Phone         string
	Email         string
	LoyaltyPoints int
	Preferences   string
}

// NewCustomer holds the fields sent when a customer is created on the fly.
type NewCustomer struct {
	Name  string
	Phone string
}

// Directory provides customer lookups and creation.
type Directory interface {
	// FindByName returns ErrNotFound when no customer has exactly this name.
	FindByName(ctx context.Context, name string) (*Customer, error)
	Create(ctx context.Context, c NewCustomer) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
}
