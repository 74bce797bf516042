package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/pos-console/internal/domain/catalog"
	"github.com/xenking/pos-console/internal/domain/customer"
	"github.com/xenking/pos-console/internal/domain/order"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	// Field names the missing input of a validation error.
	Field string `json:"field,omitempty"`
	// Step names the backend step that aborted an order placement.
	Step string `json:"step,omitempty"`
	// OrphanCustomer is true when the failed placement left a newly created
	// customer without an order.
	OrphanCustomer bool `json:"orphanCustomer,omitempty"`
}

// writeError maps domain and backend errors to console API responses.
// Anything that is not a validation, request or not-found error came from
// the backend and is reported as 502 with its reason.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := mapError(err)
	if resp.Code >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, resp.Code, resp)
}

func mapError(err error) errorResponse {
	var verr *order.ValidationError
	if errors.As(err, &verr) {
		return errorResponse{
			Code:    http.StatusBadRequest,
			Message: verr.Message,
			Field:   verr.Field,
		}
	}

	var brErr *badRequestError
	if errors.As(err, &brErr) {
		return errorResponse{Code: http.StatusBadRequest, Message: brErr.Error()}
	}

	var stepErr *order.StepError
	if errors.As(err, &stepErr) {
		return errorResponse{
			Code:           http.StatusBadGateway,
			Message:        stepErr.Error(),
			Step:           string(stepErr.Step),
			OrphanCustomer: stepErr.OrphanCustomer != nil,
		}
	}

	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		return errorResponse{Code: http.StatusNotFound, Message: err.Error()}
	}

	return errorResponse{Code: http.StatusBadGateway, Message: "backend request failed: " + err.Error()}
}
