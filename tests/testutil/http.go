package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/interfaces/http/dto"
)

// API sends requests straight into a gin engine.
type API struct {
	t       *testing.T
	Engine  *gin.Engine
	Headers map[string]string
}

// NewAPI wraps engine for request helpers.
func NewAPI(t *testing.T, engine *gin.Engine) *API {
	return &API{t: t, Engine: engine, Headers: map[string]string{}}
}

// Do sends a request with body encoded as JSON when it is not nil.
func (a *API) Do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var r io.Reader
	if body != nil {
		r = ToJSONReader(a.t, body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)
	return w
}

// DoRaw sends a request with a verbatim body.
func (a *API) DoRaw(method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	a.t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)
	return w
}

// Envelope decodes the standard response envelope.
func Envelope(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to parse response: %s", w.Body.String())
	return resp
}

// Data decodes the data member of a success envelope into T.
func Data[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp struct {
		Success bool      `json:"success"`
		Data    T         `json:"data"`
		Meta    *dto.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to parse response: %s", w.Body.String())
	require.True(t, resp.Success, "Expected success: %s", w.Body.String())
	return resp.Data
}

// ErrorCode returns the error code of an error envelope.
func ErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	resp := Envelope(t, w)
	require.False(t, resp.Success, "Expected an error response")
	require.NotNil(t, resp.Error, "Expected error object in response")
	return resp.Error.Code
}

// RequireStatus fails the test with the body when the status differs.
func RequireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "Unexpected status, body: %s", w.Body.String())
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
