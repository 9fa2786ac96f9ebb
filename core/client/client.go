// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

/*
Package client provides the shared REST core for the FIWARE clients.

The client builds requests with the FIWARE tenant headers, serializes
JSON bodies, and maps HTTP outcomes to the typed errors defined in this
package. It can talk to a real service over HTTP or directly to a mux
router in-process, which makes it the tool of choice for unit tests.
*/
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

// HeaderService is the FIWARE tenant service header.
const HeaderService = "fiware-service"

// HeaderServicePath is the FIWARE tenant service-path header.
const HeaderServicePath = "fiware-servicepath"

// DefaultTimeout bounds a request when no timeout was configured.
const DefaultTimeout = 20 * time.Second

// Client issues REST requests against a FIWARE service.
//
// A client holds exactly one configuration, fixed at construction. The
// With* builders return modified copies, so a single client can safely
// be used from concurrent goroutines.
type Client struct {
	router     *mux.Router
	httpClient *http.Client
	url        string
	token      string
	ctx        context.Context

	defaultHeaders map[string]string
}

// NewWithURL creates a client that makes REST requests to the service
// at the given base URL.
//
// WithTenant() sets the FIWARE tenant headers, WithTimeout() the
// per-request timeout, WithToken() an authorization token.
func NewWithURL(url string) Client {
	return Client{
		url:            strings.TrimSuffix(url, "/"),
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		defaultHeaders: map[string]string{},
	}
}

// NewWithRouter creates a client that makes pseudo-REST requests
// directly to the mux router, without marshalling HTTP over a socket.
// This is perfectly suited for unit tests against mock services.
func NewWithRouter(router *mux.Router) Client {
	return Client{
		router:         router,
		defaultHeaders: map[string]string{},
	}
}

// WithTenant returns a new client carrying the FIWARE tenant headers on
// every request.
func (c Client) WithTenant(service, servicePath string) Client {
	return c.WithHeader(HeaderService, service).WithHeader(HeaderServicePath, servicePath)
}

// WithHeader returns a new client with a default header added.
func (c Client) WithHeader(key string, value string) Client {
	// we want a true copy to avoid side effects
	headers := map[string]string{key: value}
	for k, v := range c.defaultHeaders {
		if k != key {
			headers[k] = v
		}
	}
	c.defaultHeaders = headers
	return c
}

// WithTimeout returns a new client with the given per-request timeout.
// The timeout covers one single attempt; there are no retries.
func (c Client) WithTimeout(timeout time.Duration) Client {
	if c.httpClient != nil {
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c
}

// WithToken returns a new client that sends a bearer token.
func (c Client) WithToken(token string) Client {
	c.token = token
	return c
}

// WithContext returns a new client with a specific base context.
func (c Client) WithContext(ctx context.Context) Client {
	c.ctx = ctx
	return c
}

// Context returns the base context of the client.
func (c Client) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// URL returns the configured base URL. Empty in router mode.
func (c Client) URL() string {
	return c.url
}

// Get requests the resource at path and decodes the JSON response into
// result. result can be nil.
func (c Client) Get(path string, result interface{}) error {
	_, err := c.Do(http.MethodGet, path, nil, nil, result)
	return err
}

// GetQuery requests the resource at path with the given query values.
func (c Client) GetQuery(path string, query url.Values, result interface{}) error {
	_, err := c.Do(http.MethodGet, path, query, nil, result)
	return err
}

// Post creates a resource at path. result can be nil.
func (c Client) Post(path string, body interface{}, result interface{}) error {
	_, err := c.Do(http.MethodPost, path, nil, body, result)
	return err
}

// PostWithHeader creates a resource at path and also returns the
// response header, for services that report the created resource
// location as a header only.
func (c Client) PostWithHeader(path string, body interface{}, result interface{}) (http.Header, error) {
	return c.Do(http.MethodPost, path, nil, body, result)
}

// Put replaces or partially replaces the resource at path.
func (c Client) Put(path string, query url.Values, body interface{}) error {
	_, err := c.Do(http.MethodPut, path, query, body, nil)
	return err
}

// Patch applies the body as a partial update to the resource at path.
func (c Client) Patch(path string, body interface{}) error {
	_, err := c.Do(http.MethodPatch, path, nil, body, nil)
	return err
}

// Delete removes the resource at path.
func (c Client) Delete(path string, query url.Values) error {
	_, err := c.Do(http.MethodDelete, path, query, nil, nil)
	return err
}

// CheckStatus issues a GET against the given health path and reports
// whether the service answered with a 2xx status. It never returns an
// error; connectivity failures and error statuses yield false.
func (c Client) CheckStatus(path string) bool {
	_, err := c.Do(http.MethodGet, path, nil, nil, nil)
	return err == nil
}

// Do executes a single request and interprets the response.
//
// The default headers are sent on every request; Content-Type is set
// only when a body is present. A 2xx response with a JSON body is
// decoded into result, a 2xx response without content leaves result
// untouched. Any other outcome returns an *Error describing the
// failure.
//
// body can also be a []byte, result can also be a raw *[]byte.
func (c Client) Do(method string, path string, query url.Values, body interface{}, result interface{}) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		j, ok := body.([]byte)
		if !ok {
			var err error
			j, err = json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("%s to %s: %w", method, path, err)
			}
		}
		reader = bytes.NewReader(j)
	}

	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	r, err := http.NewRequestWithContext(c.Context(), method, c.url+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s to %s: %w", method, path, err)
	}
	for key, value := range c.defaultHeaders {
		r.Header.Set(key, value)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}

	var res *http.Response
	var resBody []byte
	if c.router != nil {
		rec := httptest.NewRecorder()
		c.router.ServeHTTP(rec, r)
		res = rec.Result()
		resBody = rec.Body.Bytes()
	} else {
		res, err = c.httpClient.Do(r)
		if err != nil {
			return nil, newConnectivityError(method, path, err)
		}
		defer res.Body.Close()
		resBody, _ = io.ReadAll(res.Body)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return res.Header, newStatusError(method, path, res.StatusCode, resBody)
	}

	if res.StatusCode == http.StatusNoContent || len(resBody) == 0 || result == nil {
		return res.Header, nil
	}

	if raw, ok := result.(*[]byte); ok {
		*raw = resBody
		return res.Header, nil
	}
	if !declaresJSON(res.Header) {
		return res.Header, nil
	}
	if err := json.Unmarshal(resBody, result); err != nil {
		return res.Header, fmt.Errorf("%s to %s: decoding response: %w", method, path, err)
	}
	return res.Header, nil
}

// declaresJSON reports whether the response announced a JSON payload.
// Mock handlers frequently omit the header, so an absent Content-Type
// counts as JSON.
func declaresJSON(header http.Header) bool {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
