package order

import (
	"fmt"

	"github.com/xenking/pos-console/internal/domain/customer"
)

// ValidationError reports a missing required input. It is raised before any
// backend call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Step names a backend step of order placement.
type Step string

const (
	StepLookupCustomer Step = "lookup customer"
	StepCreateCustomer Step = "create customer"
	StepSubmitOrder    Step = "submit order"
)

// StepError reports the backend step that aborted a placement. Cart and entry
// are left untouched so the placement can be retried as is.
//
// OrphanCustomer is set when the run had already created a customer that is
// now left without an order. Customer creation is not rolled back.
type StepError struct {
	Step           Step
	OrphanCustomer *customer.Customer
	Err            error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
