package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"

	"github.com/kkkatsube/picc/internal/repository/storage"
)

// APIError is the uniform error envelope: message plus optional per-field
// messages for validation failures.
type APIError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, APIError{Message: message})
}

func writeFieldErrors(w http.ResponseWriter, code int, fields map[string][]string) {
	writeJSON(w, code, APIError{
		Message: "The given data was invalid.",
		Errors:  fields,
	})
}

func fieldError(field, message string) map[string][]string {
	return map[string][]string{field: {message}}
}

// newValidator reports fields under their json names so envelope keys match
// the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func validationErrorsToMap(err error) map[string][]string {
	errs := map[string][]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["body"] = []string{err.Error()}
		return errs
	}

	for _, e := range verrs {
		field := e.Field()
		var msg string
		switch e.Tag() {
		case "required":
			msg = "is required"
		case "email":
			msg = "must be a valid email address"
		case "max":
			msg = "exceeds maximum length"
		case "min", "gte", "lte":
			msg = "out of allowed range"
		default:
			msg = "invalid value"
		}
		errs[field] = append(errs[field], msg)
	}
	return errs
}

// decodeAndValidate reads the JSON body into dst and runs the validator;
// false means the response has already been written.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, "Invalid request body", http.StatusUnprocessableEntity)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		writeFieldErrors(w, http.StatusUnprocessableEntity, validationErrorsToMap(err))
		return false
	}
	return true
}

// storageError maps storage failures onto the envelope. Ownership misses
// are plain 404s; reorder rejections carry the offending ids; anything else
// is captured and reported as a generic 500.
func storageError(w http.ResponseWriter, err error) {
	var rerr *storage.ReorderError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, "Not found", http.StatusNotFound)
	case errors.As(err, &rerr):
		writeFieldErrors(w, http.StatusUnprocessableEntity, fieldError("ids", rerr.Error()))
	default:
		sentry.CaptureException(err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}
