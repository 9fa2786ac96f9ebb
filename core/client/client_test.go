package client

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRouter records every request the client issues so tests can
// assert on headers and call counts.
type recordingRouter struct {
	mu       sync.Mutex
	requests []*http.Request
	router   *mux.Router
}

func newRecordingRouter(status int, body string) *recordingRouter {
	rec := &recordingRouter{router: mux.NewRouter()}
	rec.router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.requests = append(rec.requests, r.Clone(r.Context()))
		rec.mu.Unlock()
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
	return rec
}

func (rec *recordingRouter) last(t *testing.T) *http.Request {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.requests, "no request was recorded")
	return rec.requests[len(rec.requests)-1]
}

func TestTenantHeadersOnEveryRequest(t *testing.T) {
	rec := newRecordingRouter(http.StatusOK, `{}`)
	c := NewWithRouter(rec.router).WithTenant("openiot", "/")

	operations := []struct {
		name string
		call func() error
	}{
		{"get", func() error { return c.Get("/things", nil) }},
		{"post", func() error { return c.Post("/things", map[string]string{"a": "b"}, nil) }},
		{"put", func() error { return c.Put("/things/1", nil, map[string]string{"a": "b"}) }},
		{"patch", func() error { return c.Patch("/things/1", map[string]string{"a": "b"}) }},
		{"delete", func() error { return c.Delete("/things/1", nil) }},
	}
	for _, op := range operations {
		t.Run(op.name, func(t *testing.T) {
			require.NoError(t, op.call())
			r := rec.last(t)
			assert.Equal(t, "openiot", r.Header.Get(HeaderService))
			assert.Equal(t, "/", r.Header.Get(HeaderServicePath))
		})
	}
}

func TestContentTypeOnlyWithBody(t *testing.T) {
	rec := newRecordingRouter(http.StatusNoContent, "")
	c := NewWithRouter(rec.router).WithTenant("openiot", "/")

	require.NoError(t, c.Get("/things", nil))
	assert.Empty(t, rec.last(t).Header.Get("Content-Type"))

	require.NoError(t, c.Delete("/things/1", nil))
	assert.Empty(t, rec.last(t).Header.Get("Content-Type"))

	require.NoError(t, c.Post("/things", map[string]string{}, nil))
	assert.Equal(t, "application/json", rec.last(t).Header.Get("Content-Type"))

	require.NoError(t, c.Put("/things/1", nil, map[string]string{}))
	assert.Equal(t, "application/json", rec.last(t).Header.Get("Content-Type"))

	require.NoError(t, c.Patch("/things/1", map[string]string{}))
	assert.Equal(t, "application/json", rec.last(t).Header.Get("Content-Type"))
}

func TestQueryEncoding(t *testing.T) {
	rec := newRecordingRouter(http.StatusNoContent, "")
	c := NewWithRouter(rec.router).WithTenant("openiot", "/")

	q := url.Values{}
	q.Set("apikey", "key with spaces")
	q.Set("resource", "/iot/d")
	require.NoError(t, c.Delete("/iot/services", q))

	r := rec.last(t)
	assert.Equal(t, "key with spaces", r.URL.Query().Get("apikey"))
	assert.Equal(t, "/iot/d", r.URL.Query().Get("resource"))
}

func TestDecodeResult(t *testing.T) {
	rec := newRecordingRouter(http.StatusOK, `{"name":"valve","type":"command"}`)
	c := NewWithRouter(rec.router).WithTenant("openiot", "/")

	var result map[string]string
	require.NoError(t, c.Get("/things/1", &result))
	assert.Equal(t, "valve", result["name"])

	// raw result bypasses decoding
	var raw []byte
	require.NoError(t, c.Get("/things/1", &raw))
	assert.JSONEq(t, `{"name":"valve","type":"command"}`, string(raw))
}

func TestNoContentLeavesResultUntouched(t *testing.T) {
	rec := newRecordingRouter(http.StatusNoContent, "")
	c := NewWithRouter(rec.router).WithTenant("openiot", "/")

	result := map[string]string{"pre": "existing"}
	require.NoError(t, c.Get("/things/1", &result))
	assert.Equal(t, "existing", result["pre"])
}

func TestStatusMapping(t *testing.T) {
	testCases := []struct {
		status int
		kind   Kind
	}{
		{http.StatusBadRequest, KindClient},
		{http.StatusUnauthorized, KindClient},
		{http.StatusForbidden, KindClient},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusUnprocessableEntity, KindConflict},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
		{http.StatusServiceUnavailable, KindServer},
	}
	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			rec := newRecordingRouter(tc.status, `{"error":"oops","description":"it failed"}`)
			c := NewWithRouter(rec.router).WithTenant("openiot", "/")

			err := c.Get("/things/1", nil)
			require.Error(t, err)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.status, e.StatusCode)
			assert.Equal(t, http.MethodGet, e.Method)
			assert.Equal(t, "/things/1", e.Path)
			assert.Equal(t, "it failed", e.Message)
		})
	}
}

func TestConnectivityErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		c := NewWithURL("http://127.0.0.1:1").WithTenant("openiot", "/").WithTimeout(time.Second)
		err := c.Get("/things", nil)
		require.Error(t, err)
		assert.True(t, IsConnectivity(err))
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 0, e.StatusCode)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		c := NewWithURL(server.URL).WithTenant("openiot", "/").WithTimeout(20 * time.Millisecond)
		err := c.Get("/things", nil)
		require.Error(t, err)
		assert.True(t, IsConnectivity(err))
	})
}

func TestCheckStatusNeverFails(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		rec := newRecordingRouter(http.StatusOK, `{"version":"3.10.1"}`)
		c := NewWithRouter(rec.router).WithTenant("openiot", "/")
		assert.True(t, c.CheckStatus("/version"))
	})

	t.Run("server error", func(t *testing.T) {
		rec := newRecordingRouter(http.StatusInternalServerError, "")
		c := NewWithRouter(rec.router).WithTenant("openiot", "/")
		assert.False(t, c.CheckStatus("/version"))
	})

	t.Run("connection refused", func(t *testing.T) {
		c := NewWithURL("http://127.0.0.1:1").WithTenant("openiot", "/").WithTimeout(time.Second)
		assert.False(t, c.CheckStatus("/version"))
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()
		c := NewWithURL(server.URL).WithTimeout(20 * time.Millisecond)
		assert.False(t, c.CheckStatus("/version"))
	})
}

func TestBearerToken(t *testing.T) {
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewWithURL(server.URL).WithTenant("openiot", "/").WithToken("secret")
	require.NoError(t, c.Get("/things", nil))
	assert.Equal(t, "Bearer secret", authorization)
}

func TestBearerTokenInRouterMode(t *testing.T) {
	var authorization string
	router := mux.NewRouter()
	router.HandleFunc("/things", func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	c := NewWithRouter(router).WithTenant("openiot", "/").WithToken("secret")
	require.NoError(t, c.Get("/things", nil))
	assert.Equal(t, "Bearer secret", authorization)
}

func TestWithHeaderDoesNotAliasTheOriginal(t *testing.T) {
	base := NewWithRouter(mux.NewRouter()).WithTenant("openiot", "/")
	derived := base.WithHeader(HeaderService, "other")

	assert.Equal(t, "openiot", base.defaultHeaders[HeaderService])
	assert.Equal(t, "other", derived.defaultHeaders[HeaderService])
}

func TestPostWithHeaderExposesLocation(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/v2/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/v2/subscriptions/abc123")
		w.WriteHeader(http.StatusCreated)
	}).Methods(http.MethodPost)

	c := NewWithRouter(router).WithTenant("openiot", "/")
	header, err := c.PostWithHeader("/v2/subscriptions", map[string]string{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/v2/subscriptions/abc123", header.Get("Location"))
}

func TestNonJSONSuccessBodyIsIgnored(t *testing.T) {
	router := mux.NewRouter()
	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("pong"))
	})

	c := NewWithRouter(router).WithTenant("openiot", "/")
	var result map[string]interface{}
	require.NoError(t, c.Get("/ping", &result))
	assert.Nil(t, result)
}

func TestBodyPassthrough(t *testing.T) {
	rec := newRecordingRouter(http.StatusCreated, "")
	c := NewWithRouter(rec.router).WithTenant("openiot", "/")

	raw, err := json.Marshal(map[string]string{"device_id": "probe001"})
	require.NoError(t, err)
	require.NoError(t, c.Post("/iot/devices", raw, nil))
	assert.Equal(t, "application/json", rec.last(t).Header.Get("Content-Type"))
}
