package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stewardly/ledger-api/internal/data"
	apperrors "github.com/stewardly/ledger-api/internal/errors"
	"github.com/stewardly/ledger-api/internal/ports"
)

// DecodeJSON decodes JSON from the request body into the destination.
// Returns true if successful, false if there was an error (error response
// already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Client disconnects surface here; nothing to recover.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
	Field   string
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := map[string]string{"error": p.ErrCode, "message": p.Err.Error()}
	if p.Field != "" {
		body["field"] = p.Field
	}
	WriteJSON(w, p.Code, body)
}

// RenderError maps application and store errors onto HTTP error responses.
// AppError codes carry their own category; known sentinels are translated;
// anything else is an opaque 500 so internal details never leak.
func RenderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrInvalidCredentials):
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "invalid_credentials", Err: err})
		return
	case errors.Is(err, ports.ErrEmailInUse):
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "email_in_use", Err: err})
		return
	case errors.Is(err, ports.ErrWeakPassword):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "weak_password", Err: err})
		return
	case errors.Is(err, ports.ErrProfileNotFound),
		errors.Is(err, ports.ErrIdentityNotFound),
		errors.Is(err, data.ErrTransactionNotFound),
		errors.Is(err, data.ErrInventoryItemNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
		return
	case errors.Is(err, ports.ErrSessionNotFound):
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "session_expired", Err: err})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteError(w, ErrorParams{
			Code:    statusForCode(appErr.Code),
			ErrCode: string(appErr.Code),
			Err:     appErr,
			Field:   appErr.Field,
		})
		return
	}

	WriteError(w, ErrorParams{
		Code:    http.StatusInternalServerError,
		ErrCode: "internal",
		Err:     errors.New("internal server error"),
	})
}

func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
