package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	arborerrors "github.com/matzehuels/arbor/pkg/errors"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    arborerrors.Code `json:"code"`
	Message string           `json:"message"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorBody. Errors without a code, and
// internal errors, are reported without their message.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	body := ErrorBody{Code: arborerrors.GetCode(err), Message: arborerrors.UserMessage(err)}
	if status == http.StatusInternalServerError {
		body = ErrorBody{Code: arborerrors.ErrCodeInternal, Message: "internal error"}
	}
	WriteJSON(w, status, body)
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(err error) int {
	switch arborerrors.GetCode(err) {
	case arborerrors.ErrCodeInvalidArgument, arborerrors.ErrCodeInvalidInput,
		arborerrors.ErrCodeInvalidSpecies, arborerrors.ErrCodeInvalidFormat,
		arborerrors.ErrCodeInvalidBranch:
		return http.StatusBadRequest
	case arborerrors.ErrCodeNotFound, arborerrors.ErrCodeSpeciesNotFound,
		arborerrors.ErrCodeBranchNotFound, arborerrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case arborerrors.ErrCodeSessionExpired:
		return http.StatusGone
	case arborerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into v. An empty body leaves v
// unchanged. Failures carry ErrCodeInvalidInput.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return arborerrors.Wrap(arborerrors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	if dec.More() {
		return arborerrors.New(arborerrors.ErrCodeInvalidInput, "invalid JSON body: %s", "trailing data")
	}
	return nil
}

// ContentType returns the MIME type for a rendered artifact format.
func ContentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "svg", "sketch":
		return "image/svg+xml"
	case "dot":
		return "text/vnd.graphviz; charset=utf-8"
	case "txt":
		return "text/plain; charset=utf-8"
	default:
		return fmt.Sprintf("application/octet-stream; format=%q", format)
	}
}
