package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/examhub/exam-room-scheduler/internal/domain/exam"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// Error codes carried in APIError.Code.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidDate    = "INVALID_DATE"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotFound       = "NOT_FOUND"
	CodeSlotOccupied   = "SLOT_OCCUPIED"
	CodeCodeCollision  = "SESSION_CODE_TAKEN"
	CodeConstraint     = "CONSTRAINT_VIOLATION"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError pairs a status with the body sent to the client.
type httpError struct {
	status   int
	apiError APIError
}

func (e *httpError) Error() string {
	return e.apiError.Message
}

func newInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

func newUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// toHTTPError classifies err by its domain kind. Messages of expected
// rejections and store constraint violations are passed through; everything
// else is hidden behind a generic message.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var conflict *exam.ConflictError
	switch {
	case errors.As(err, &conflict):
		return &httpError{http.StatusConflict, APIError{Code: CodeSlotOccupied, Message: conflict.Error()}}
	case exam.IsCodeCollision(err):
		return &httpError{http.StatusConflict, APIError{Code: CodeCodeCollision, Message: "Generated session code is already in use, please retry"}}
	case errors.Is(err, shared.ErrInvalidDate):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidDate, Message: "Date must be YYYY-MM-DD"}}
	case shared.IsValidation(err):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: domainMessage(err)}}
	case errors.Is(err, shared.ErrAuth):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired session"}}
	case shared.IsNotFound(err):
		return &httpError{http.StatusNotFound, APIError{Code: CodeNotFound, Message: domainMessage(err)}}
	case shared.IsConstraint(err):
		return &httpError{http.StatusUnprocessableEntity, APIError{Code: CodeConstraint, Message: domainMessage(err)}}
	case shared.IsUnavailable(err):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeUnavailable, Message: "A backing service is unavailable"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// domainMessage returns the message of the outermost DomainError in err.
func domainMessage(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// writeError writes err as a JSON error response and reports the status used.
func writeError(w http.ResponseWriter, err error) int {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(JSONResponse{Success: false, Error: &he.apiError})
	return he.status
}
