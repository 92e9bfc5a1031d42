package infra

import (
	"fmt"
	"io"
	"net/http"
)

const maxErrorBody = 4096

// APIError is a non-2xx response from a remote service.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Service, e.StatusCode, e.Body)
}

// CheckResponse returns an *APIError when resp has a non-2xx status. The
// caller still owns resp.Body.
func CheckResponse(service string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
