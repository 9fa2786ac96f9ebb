// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a failed remote operation.
type Kind int

// The error kinds a remote operation can fail with. Callers catch the
// kind they care about and propagate the rest.
const (
	// KindConnectivity covers DNS, connection and timeout failures
	// where no HTTP response was obtained.
	KindConnectivity Kind = iota + 1
	// KindClient covers HTTP 4xx responses other than 404 and 409/422.
	KindClient
	// KindNotFound covers HTTP 404.
	KindNotFound
	// KindConflict covers HTTP 409 and 422, duplicate-resource
	// semantics.
	KindConflict
	// KindServer covers HTTP 5xx.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindClient:
		return "client"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Error describes a failed remote operation. It carries the method and
// path attempted, the HTTP status if a response was obtained, and a
// best-effort parsed error body for diagnostics.
type Error struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int    // 0 when no response was obtained
	Message    string // parsed from the error body when possible
	Body       string // raw response body
	cause      error
}

func (e *Error) Error() string {
	if e.Kind == KindConnectivity {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is makes errors.Is match against another *Error of the same kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

func newConnectivityError(method, path string, cause error) *Error {
	return &Error{
		Kind:   KindConnectivity,
		Method: method,
		Path:   path,
		cause:  cause,
	}
}

func newStatusError(method, path string, status int, body []byte) *Error {
	kind := KindClient
	switch {
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		kind = KindConflict
	case status >= http.StatusInternalServerError:
		kind = KindServer
	}
	return &Error{
		Kind:       kind,
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    errorMessage(body),
		Body:       string(body),
	}
}

// errorMessage extracts a human-readable message from a FIWARE error
// body. Orion answers {"error": ..., "description": ...}, the IoT
// Agent {"name": ..., "message": ...}; anything else is used verbatim.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	for _, field := range []string{"description", "message", "error", "name"} {
		if v := gjson.GetBytes(body, field); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return strings.TrimSpace(string(body))
}

// IsConnectivity reports whether err is a connectivity failure, i.e.
// no HTTP response was obtained at all.
func IsConnectivity(err error) bool {
	return hasKind(err, KindConnectivity)
}

// IsNotFound reports whether err is an HTTP 404 failure.
func IsNotFound(err error) bool {
	return hasKind(err, KindNotFound)
}

// IsConflict reports whether err is an HTTP 409/422 failure.
func IsConflict(err error) bool {
	return hasKind(err, KindConflict)
}

// IsClientError reports whether err is an HTTP 4xx failure other than
// 404 and 409/422.
func IsClientError(err error) bool {
	return hasKind(err, KindClient)
}

// IsServerError reports whether err is an HTTP 5xx failure.
func IsServerError(err error) bool {
	return hasKind(err, KindServer)
}

func hasKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
