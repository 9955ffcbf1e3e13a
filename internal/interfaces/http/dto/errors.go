package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeDatabase is used when the store rejected or lost a write
	ErrCodeDatabase = "ERR_DATABASE"
	// ErrCodeStorage is used when object storage failed
	ErrCodeStorage = "ERR_STORAGE"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for malformed request bodies and parameters
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeSchemaValidation is used when a payload decodes but breaks its schema
	ErrCodeSchemaValidation = "ERR_SCHEMA_VALIDATION"
	ErrCodeUnknownColumn    = "ERR_UNKNOWN_COLUMN"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountDeactivated = "ERR_ACCOUNT_DEACTIVATED"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeInUse is used when a record is still referenced elsewhere
	ErrCodeInUse = "ERR_IN_USE"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeOverproduction    = "ERR_OVERPRODUCTION"
	ErrCodeBOMCycle          = "ERR_BOM_CYCLE"
	ErrCodeAlreadyReceived   = "ERR_ALREADY_RECEIVED"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Upstream error codes
const (
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeUpstream           = "ERR_UPSTREAM"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeDatabase: http.StatusInternalServerError,
	ErrCodeStorage:  http.StatusInternalServerError,

	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeSchemaValidation: http.StatusUnprocessableEntity,
	ErrCodeUnknownColumn:    http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountDeactivated: http.StatusUnauthorized,
	ErrCodeSessionExpired:     http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeInUse:         http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeOverproduction:    http.StatusUnprocessableEntity,
	ErrCodeBOMCycle:          http.StatusUnprocessableEntity,
	ErrCodeAlreadyReceived:   http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeUpstream:           http.StatusBadGateway,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes get 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"ALREADY_EXISTS":      ErrCodeAlreadyExists,
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"INVALID_STATE":       ErrCodeInvalidState,
	"UNAUTHORIZED":        ErrCodeUnauthorized,
	"FORBIDDEN":           ErrCodeForbidden,
	"INVALID_CREDENTIALS": ErrCodeInvalidCredentials,
	"ACCOUNT_DEACTIVATED": ErrCodeAccountDeactivated,
	"SESSION_EXPIRED":     ErrCodeSessionExpired,
	"INSUFFICIENT_STOCK":  ErrCodeInsufficientStock,
	"OVERPRODUCTION":      ErrCodeOverproduction,
	"BOM_CYCLE":           ErrCodeBOMCycle,
	"ALREADY_RECEIVED":    ErrCodeAlreadyReceived,
	"PRODUCT_IN_USE":      ErrCodeInUse,
	"WAREHOUSE_IN_USE":    ErrCodeInUse,
	"VALIDATION_ERRORS":   ErrCodeSchemaValidation,
	"UNKNOWN_COLUMN":      ErrCodeUnknownColumn,
	"SERVICE_UNAVAILABLE": ErrCodeServiceUnavailable,
	"UPSTREAM_ERROR":      ErrCodeUpstream,
	"INTERNAL_ERROR":      ErrCodeInternal,
	"DB_ERROR":            ErrCodeDatabase,
	"STORAGE_ERROR":       ErrCodeStorage,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes without a mapping fall back by prefix: INVALID_* is bad input and
// anything else is a business rule violation.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	return ErrCodeBusinessRule
}
