package backend

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/pos-console/internal/domain/catalog"
)

var _ catalog.Repository = (*Catalog)(nil)

type categoryJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type itemJSON struct {
	ID       int64           `json:"id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	DoExpire string          `json:"doexpire"`
	Category *categoryJSON   `json:"category"`
}

func (j itemJSON) domain() catalog.Item {
	it := catalog.Item{
		ID:       j.ID,
		Code:     j.Code,
		Name:     j.Name,
		Price:    j.Price,
		Stock:    j.Stock,
		DoExpire: j.DoExpire,
	}
	if j.Category != nil {
		it.Category = catalog.Category{ID: j.Category.ID, Name: j.Category.Name}
	}
	return it
}

// Catalog implements catalog.Repository over the item and category endpoints.
type Catalog struct {
	c *Client
}

// NewCatalog returns a Catalog that uses the given client.
func NewCatalog(c *Client) *Catalog {
	return &Catalog{c: c}
}

// ListItems returns the whole menu.
func (r *Catalog) ListItems(ctx context.Context) ([]catalog.Item, error) {
	return r.items(ctx, pathf("/item/get-all/list"))
}

// GetItem returns one item. It returns catalog.ErrNotFound on a 404 or an
// empty answer.
func (r *Catalog) GetItem(ctx context.Context, id int64) (*catalog.Item, error) {
	var j *itemJSON
	if err := r.c.get(ctx, pathf("/item/search-by-id/%s", id), &j); err != nil {
		if IsNotFound(err) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}
	if j == nil {
		return nil, catalog.ErrNotFound
	}
	it := j.domain()
	return &it, nil
}

// ListItemsByCategory returns the items of one category.
func (r *Catalog) ListItemsByCategory(ctx context.Context, categoryID int64) ([]catalog.Item, error) {
	return r.items(ctx, pathf("/item/search-by-category/%s", categoryID))
}

// SearchItems returns the items whose name matches term.
func (r *Catalog) SearchItems(ctx context.Context, term string) ([]catalog.Item, error) {
	return r.items(ctx, pathf("/item/search/%s", term))
}

// ListCategories returns all categories.
func (r *Catalog) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var rows []categoryJSON
	if err := r.c.get(ctx, pathf("/category/get-all/list"), &rows); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	out := make([]catalog.Category, len(rows))
	for i, row := range rows {
		out[i] = catalog.Category{ID: row.ID, Name: row.Name}
	}
	return out, nil
}

func (r *Catalog) items(ctx context.Context, path string) ([]catalog.Item, error) {
	var rows []itemJSON
	if err := r.c.get(ctx, path, &rows); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	out := make([]catalog.Item, len(rows))
	for i, row := range rows {
		out[i] = row.domain()
	}
	return out, nil
}
