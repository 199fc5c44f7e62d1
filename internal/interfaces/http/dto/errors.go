package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Input validation failures map to 400, business rule rejections on an
// otherwise well-formed request map to 422, write races map to 409 and
// upstream lookup failures map to 502.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	// Validation errors -> 400 Bad Request
	"INVALID_INPUT":     http.StatusBadRequest,
	"INVALID_QUANTITY":  http.StatusBadRequest,
	"INVALID_RATE":      http.StatusBadRequest,
	"INVALID_PRICE":     http.StatusBadRequest,
	"INVALID_AMOUNT":    http.StatusBadRequest,
	"MISSING_REFERENCE": http.StatusBadRequest,
	"EMPTY_BILL":        http.StatusBadRequest,

	// Business rule errors -> 422 Unprocessable Entity
	"OVERPAYMENT":        http.StatusUnprocessableEntity,
	"BILL_CLOSED":        http.StatusUnprocessableEntity,
	"INVALID_TRANSITION": http.StatusUnprocessableEntity,

	// Write races -> 409 Conflict
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Collaborator lookups exhausted retries -> 502 Bad Gateway
	"COLLABORATOR_ERROR": http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not mapped.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
