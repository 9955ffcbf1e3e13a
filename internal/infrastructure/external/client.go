// Package external holds the adapters for Bitrix24 and 1C.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/factory/internal/domain/integration"
	"github.com/erp/factory/internal/infrastructure/telemetry"
)

// maxResponseSize caps how much of a response body is read (10MB)
const maxResponseSize = 10 << 20

const defaultTimeout = 30 * time.Second

// CallRecorder receives the outcome of every request to an external system
type CallRecorder interface {
	RecordExternalCall(ctx context.Context, system, operation string, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordExternalCall(context.Context, string, string, time.Duration, error) {}

type clientOptions struct {
	httpClient *http.Client
	recorder   CallRecorder
}

// Option configures an adapter
type Option func(*clientOptions)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithRecorder reports call durations and failures to r
func WithRecorder(r CallRecorder) Option {
	return func(o *clientOptions) {
		if r != nil {
			o.recorder = r
		}
	}
}

func buildOptions(timeout time.Duration, opts []Option) clientOptions {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	o := clientOptions{
		httpClient: &http.Client{Timeout: timeout},
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// observe wraps one external request in a client span and records its outcome
func observe(ctx context.Context, rec CallRecorder, system, operation string, fn func(context.Context) error) error {
	ctx, span := telemetry.StartClientSpan(ctx, system, operation)
	start := time.Now()
	err := fn(ctx)
	rec.RecordExternalCall(ctx, system, operation, time.Since(start), err)
	telemetry.End(span, err)
	return err
}

type httpError struct {
	status int
	body   []byte
}

// send performs req and returns the body of a 2xx response. Other statuses
// come back as *httpError so callers can decode the vendor error payload.
func send(c *http.Client, req *http.Request) ([]byte, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", integration.ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, &httpError{status: resp.StatusCode, body: body}
	}
	return body, nil
}

func (e *httpError) Error() string {
	return "HTTP " + strconv.Itoa(e.status)
}

// statusError maps a failed HTTP status to an integration error with detail
func statusError(status int, detail string) error {
	if detail == "" {
		detail = http.StatusText(status)
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", integration.ErrAuthFailed, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", integration.ErrRecordNotFound, detail)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", integration.ErrRequestFailed, status, detail)
	}
}

func asHTTPError(err error) (*httpError, bool) {
	var he *httpError
	ok := errors.As(err, &he)
	return he, ok
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// flexDecimal accepts JSON numbers, numeric strings, empty strings and null
type flexDecimal struct {
	decimal.Decimal
}

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || s == "null" {
		d.Decimal = decimal.Zero
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	d.Decimal = v
	return nil
}

// flexInt accepts JSON numbers and numeric strings
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %s", b)
	}
	*n = flexInt(v)
	return nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
}

// flexTime accepts the date formats both systems emit. The zero value means absent.
type flexTime struct {
	time.Time
}

// zeroDate is how 1C encodes an empty date
const zeroDate = "0001-01-01T00:00:00"

func (t *flexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" || s == zeroDate {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("invalid date %s", b)
}

// Ptr returns nil for the zero time
func (t flexTime) Ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
