package exchange

import "fmt"

// CredentialResponse is the success body of GET /credential-exchange.
type CredentialResponse struct {
	AccessToken string `json:"access_token"`
	ClientID    string `json:"client_id"`
}

// ErrorResponse is the failure body of both endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RemoteError is returned by Client when an endpoint answers with a non-200 status.
type RemoteError struct {
	Endpoint   string
	StatusCode int
	Body       ErrorResponse
}

func (e *RemoteError) Error() string {
	if e.Body.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s: %s", e.Endpoint, e.StatusCode, e.Body.Error, e.Body.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}
