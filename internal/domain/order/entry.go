package order

import "strings"

// Entry is the customer-entry form of the console: who the order is for and
// the discount typed by the cashier. Discount is kept as raw field text.
type Entry struct {
	CustomerName string
	Phone        string
	Discount     string
}

// Reset clears the form after a successful placement.
func (e *Entry) Reset() {
	*e = Entry{Discount: "0"}
}

// validate checks the required customer fields, in form order.
func (e *Entry) validate() error {
	if strings.TrimSpace(e.CustomerName) == "" {
		return &ValidationError{Field: "customerName", Message: "customer name is required"}
	}
	if strings.TrimSpace(e.Phone) == "" {
		return &ValidationError{Field: "phone", Message: "contact number is required"}
	}
	return nil
}
