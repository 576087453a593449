package sdk

import "fmt"

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bookgraph api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}
