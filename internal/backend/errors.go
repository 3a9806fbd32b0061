package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Method string `json:"-"`
	Path   string `json:"-"`
	Status int    `json:"-"`
	Detail string `json:"-"`
}

// UnmarshalJSON accepts FastAPI's {"detail": "..."} as well as validation
// errors where detail is a list of objects.
func (e *APIError) UnmarshalJSON(data []byte) error {
	var raw struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Detail = raw.Message
	if len(raw.Detail) == 0 {
		return nil
	}
	var text string
	if err := json.Unmarshal(raw.Detail, &text); err == nil {
		e.Detail = text
		return nil
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw.Detail, &items); err == nil && len(items) > 0 {
		e.Detail = items[0].Msg
		return nil
	}
	e.Detail = string(raw.Detail)
	return nil
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
}

// IsUnauthorized reports whether err is a 401 or 403 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
