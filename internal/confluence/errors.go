package confluence

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	configInvalidCode    = "CONFLUENCE_CONFIG_INVALID"
	requestInvalidCode   = "CONFLUENCE_REQUEST_INVALID"
	requestFailedCode    = "CONFLUENCE_REQUEST_FAILED"
	retriesExhaustedCode = "CONFLUENCE_RETRIES_EXHAUSTED"
	notFoundCode         = "CONFLUENCE_NOT_FOUND"
	authFailedCode       = "CONFLUENCE_AUTH_FAILED"
	conflictCode         = "CONFLUENCE_CONFLICT"
)

// apiError wraps a non-success API response. The response body is
// carried in the error message so operators see what the server said.
func apiError(status int, body []byte) error {
	err := fmt.Errorf("confluence API error (status %d): %s", status, strings.TrimSpace(string(body)))

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return goerrors.Wrap(err, goerrors.CategoryAuth, "confluence rejected the credentials").
			WithTextCode(authFailedCode)
	case status == http.StatusNotFound:
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "confluence resource not found").
			WithTextCode(notFoundCode)
	case status == http.StatusConflict:
		return goerrors.Wrap(err, goerrors.CategoryConflict, "confluence resource conflict").
			WithTextCode(conflictCode)
	default:
		return goerrors.Wrap(err, goerrors.CategoryExternal, "confluence request failed").
			WithTextCode(requestFailedCode)
	}
}

// IsNotFound reports whether err represents a 404 from the API.
func IsNotFound(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryNotFound)
}

// IsConflict reports whether err represents a 409 from the API.
func IsConflict(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryConflict)
}

// IsAuthError reports whether err represents rejected credentials.
func IsAuthError(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryAuth)
}
