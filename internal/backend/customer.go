package backend

import (
	"context"
	"fmt"

	"github.com/xenking/pos-console/internal/domain/customer"
)

var _ customer.Directory = (*Customers)(nil)

type customerJSON struct {
	ID            *int64 `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	LoyaltyPoints int    `json:"loyaltyPoints,omitempty"`
	Preferences   string `json:"preferences,omitempty"`
}

func (j customerJSON) domain() customer.Customer {
	return customer.Customer{
		ID:            j.ID,
		Name:          j.Name,
		Phone:         j.Phone,
		Email:         j.Email,
		LoyaltyPoints: j.LoyaltyPoints,
		Preferences:   j.Preferences,
	}
}

type newCustomerJSON struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Customers implements customer.Directory over the customer endpoints.
type Customers struct {
	c *Client
}

// NewCustomers returns a Customers directory that uses the given client.
func NewCustomers(c *Client) *Customers {
	return &Customers{c: c}
}

// FindByName looks a customer up by exact name. Both a 404 and an empty or
// null answer mean the customer does not exist.
func (r *Customers) FindByName(ctx context.Context, name string) (*customer.Customer, error) {
	return r.one(ctx, pathf("/customer/search-by-name/%s", name))
}

// GetByID returns one customer or customer.ErrNotFound.
func (r *Customers) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	return r.one(ctx, pathf("/customer/search-by-id/%s", id))
}

// Create adds a customer. The answer may carry no id; the returned customer
// then has a nil ID and the submitted name and phone.
func (r *Customers) Create(ctx context.Context, c customer.NewCustomer) (*customer.Customer, error) {
	var j *customerJSON
	if err := r.c.post(ctx, pathf("/customer/add"), newCustomerJSON{Name: c.Name, Phone: c.Phone}, &j); err != nil {
		return nil, fmt.Errorf("creating customer %q: %w", c.Name, err)
	}
	if j == nil {
		return &customer.Customer{Name: c.Name, Phone: c.Phone}, nil
	}

	out := j.domain()
	if out.Name == "" {
		out.Name = c.Name
	}
	if out.Phone == "" {
		out.Phone = c.Phone
	}
	return &out, nil
}

// List returns all customers.
func (r *Customers) List(ctx context.Context) ([]customer.Customer, error) {
	var rows []customerJSON
	if err := r.c.get(ctx, pathf("/customer/get-all/list"), &rows); err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}

	out := make([]customer.Customer, len(rows))
	for i, row := range rows {
		out[i] = row.domain()
	}
	return out, nil
}

func (r *Customers) one(ctx context.Context, path string) (*customer.Customer, error) {
	var j *customerJSON
	if err := r.c.get(ctx, path, &j); err != nil {
		if IsNotFound(err) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer: %w", err)
	}
	if j == nil {
		return nil, customer.ErrNotFound
	}
	out := j.domain()
	return &out, nil
}
