package genai

import "fmt"

// APIError is a non-2xx reply from the generative-language API.
type APIError struct {
	StatusCode int    // HTTP status of the reply
	Status     string // upstream status name, e.g. RESOURCE_EXHAUSTED
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("generative API error (status %d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("generative API error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the HTTP status code of the reply.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// BlockedError reports output withheld by the upstream safety policy.
// It is a property of the content, not of the credential, so callers
// must not treat it as grounds for trying another key.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("response blocked by upstream safety policy: %s", e.Reason)
}
