package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-profile-cache/domain"
	"github.com/goliatone/go-profile-cache/logging"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Category         goerrors.Category         `json:"category"`
	TextCode         string                    `json:"text_code"`
	Message          string                    `json:"message"`
	ValidationErrors goerrors.ValidationErrors `json:"validation_errors,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Warn("failed to encode response", zap.Error(err))
	}
}

// respondErr renders err as an errorBody with the status of its typed form.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var typed *goerrors.Error
	if !errors.As(domain.ToTypedError(err), &typed) {
		typed = domain.UpstreamFailure(err, "generic error")
	}

	status := typed.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	log := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.String("textCode", typed.TextCode))
	}

	respond(w, r, status, errorBody{
		Category:         typed.Category,
		TextCode:         typed.TextCode,
		Message:          typed.Message,
		ValidationErrors: typed.ValidationErrors,
	})
}

// decodeJSON reads a single JSON value from the body. Malformed bodies are
// reported as validation errors.
func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.ValidationError(err, "malformed request body")
	}
	return nil
}
