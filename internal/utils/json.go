package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	errs "opening_tree/internal/errors"
)

// DecodeJSONRequest reads r's body into dst, rejecting unknown fields. A
// positive limit caps the body size; going over it yields
// errs.ErrPayloadTooLarge.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	defer r.Body.Close()
	var body io.Reader = r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body over %d bytes", errs.ErrPayloadTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
