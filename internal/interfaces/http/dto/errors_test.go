package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeStorage, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeSchemaValidation, http.StatusUnprocessableEntity},
		{ErrCodeUnknownColumn, http.StatusBadRequest},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeSessionExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeInUse, http.StatusConflict},
		{ErrCodeOverproduction, http.StatusUnprocessableEntity},
		{ErrCodeBOMCycle, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyReceived, http.StatusUnprocessableEntity},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{ErrCodeUpstream, http.StatusBadGateway},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"PRODUCT_IN_USE", ErrCodeInUse},
		{"WAREHOUSE_IN_USE", ErrCodeInUse},
		{"BOM_CYCLE", ErrCodeBOMCycle},
		{"VALIDATION_ERRORS", ErrCodeSchemaValidation},
		{"UPSTREAM_ERROR", ErrCodeUpstream},
		{"SERVICE_UNAVAILABLE", ErrCodeServiceUnavailable},
		{ErrCodeRateLimited, ErrCodeRateLimited},
		{"INVALID_PAGE_SIZE", ErrCodeInvalidInput},
		{"INVALID_QUANTITY", ErrCodeInvalidInput},
		{"NEGATIVE_STOCK", ErrCodeBusinessRule},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestEveryMappedCodeHasStatus(t *testing.T) {
	for domain, api := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[api]
		assert.True(t, ok, "%s maps to %s which has no status", domain, api)
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		pageSize   int
		totalPages int
	}{
		{"exact pages", 40, 20, 2},
		{"partial last page", 41, 20, 3},
		{"empty result", 0, 20, 1},
		{"show all", 123, -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]int{}, tt.total, 1, tt.pageSize)
			require.NotNil(t, resp.Meta)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.totalPages, resp.Meta.TotalPages)
			assert.Equal(t, tt.total, resp.Meta.Total)
		})
	}
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewValidationErrorResponse(ErrCodeSchemaValidation, "Request validation failed", "req-1",
		[]FieldDetail{{Field: "externalId", Message: "is required"}})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "ERR_SCHEMA_VALIDATION",
			"message": "Request validation failed",
			"request_id": "req-1",
			"details": [{"field": "externalId", "message": "is required"}]
		}
	}`, string(raw))
}

func TestMetaJSON(t *testing.T) {
	raw, err := json.Marshal(NewSuccessResponseWithMeta([]string{"a"}, 1, 1, 20))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":["a"],"meta":{"total":1,"page":1,"page_size":20,"total_pages":1}}`, string(raw))
}
