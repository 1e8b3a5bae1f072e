package chessdto

import "fmt"

// APIError is a non-2xx reply. For rejected moves Body carries the
// unchanged FEN.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("status %d", e.Status)
}
