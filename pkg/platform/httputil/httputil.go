// Package httputil renders JSON responses and coded domain errors.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "tns/pkg/domain-errors"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// StatusMapper maps codes outside the base set to HTTP statuses.
// It returns false when it does not know the code.
type StatusMapper func(code dErrors.Code) (int, bool)

var baseStatus = map[dErrors.Code]int{
	dErrors.CodeInternal:           http.StatusInternalServerError,
	dErrors.CodeInvariantViolation: http.StatusInternalServerError,
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeInvalidInput:       http.StatusBadRequest,
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeTimeout:            http.StatusGatewayTimeout,
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err using the base code table.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorWith(w, err, nil)
}

// WriteErrorWith renders err, consulting mapper for codes the base table lacks.
// Uncoded and internal errors never leak their description.
func WriteErrorWith(w http.ResponseWriter, err error, mapper StatusMapper) {
	code, ok := dErrors.CodeOf(err)
	if !ok {
		code = dErrors.CodeInternal
	}

	status, known := baseStatus[code]
	if !known && mapper != nil {
		status, known = mapper(code)
	}
	if !known {
		status = http.StatusInternalServerError
	}

	resp := errorResponse{Error: string(code)}
	if status < http.StatusInternalServerError {
		resp.ErrorDescription = dErrors.MessageOf(err)
	}
	WriteJSON(w, status, resp)
}
