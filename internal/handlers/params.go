// internal/handlers/params.go
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

const (
	// DefaultLimit applies when a list request carries no limit
	DefaultLimit int64 = 100

	maxBodyBytes = 1 << 20
)

func pathID(r *http.Request) (int32, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("Invalid id %q: must be a 32-bit integer", raw)
	}
	return int32(id), nil
}

// queryID reads the item id of add and remove requests
func queryID(r *http.Request) (int32, error) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		return 0, fmt.Errorf("Missing query parameter id")
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("Invalid query parameter id %q: must be a 32-bit integer", raw)
	}
	return int32(id), nil
}

func parseLimit(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultLimit, nil
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("Invalid limit %q: must be a non-negative integer", raw)
	}
	return limit, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("Invalid request body: %s", err.Error())
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("Invalid request body: unexpected data after JSON value")
	}
	return nil
}
