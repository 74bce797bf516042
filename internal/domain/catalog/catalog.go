package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("item not found")

// Category groups menu items.
type Category struct {
	ID   int64
	Name string
}

// Item is a menu entry that can be added to a cart.
type Item struct {
	ID       int64
	Code     string
	Name     string
	Price    decimal.Decimal
	Stock    int
	DoExpire string
	Category Category
}

// Repository defines read operations for the menu.
type Repository interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	ListItemsByCategory(ctx context.Context, categoryID int64) ([]Item, error)
	SearchItems(ctx context.Context, term string) ([]Item, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
