// Package handlers exposes the case intelligence engine over HTTP: analysis
// triggering, insight and action lifecycle, document access and the
// dashboard summary.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/pkg/errors"
)

// errorBody is the JSON error envelope every failure response uses.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps an error to its HTTP status through the AppError code.
// Unknown errors become a generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, log logging.Logger, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	body := errorBody{Code: string(code), Message: "internal error"}
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		body.Message = ae.Message
		body.Detail = ae.Detail
	}
	if status >= 500 && log != nil {
		log.Error("Request failed", logging.Err(err))
		body = errorBody{Code: string(code), Message: "internal error"}
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a small JSON body.  An empty body decodes into the zero
// value so endpoints with optional bodies stay lenient.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read request body")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "malformed JSON body")
	}
	return nil
}
