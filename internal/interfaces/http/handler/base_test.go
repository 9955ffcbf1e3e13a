package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestParseTableQuery(t *testing.T) {
	t.Run("all parameters", func(t *testing.T) {
		c, _ := testContext(http.MethodGet, "/x?search=bolt&sort=name&dir=DESC&page=2&pageSize=50&filter[status]=active&filter[category]=hw", "")
		q, err := ParseTableQuery(c)

		require.NoError(t, err)
		assert.Equal(t, "bolt", q.Search)
		assert.Equal(t, datatable.Sort{Field: "name", Direction: datatable.SortDesc}, q.Sort)
		assert.Equal(t, 2, q.Page)
		assert.Equal(t, 50, q.PageSize)
		assert.Equal(t, map[string]string{"status": "active", "category": "hw"}, q.Filters)
	})

	t.Run("defaults", func(t *testing.T) {
		c, _ := testContext(http.MethodGet, "/x?sort=sku", "")
		q, err := ParseTableQuery(c)

		require.NoError(t, err)
		assert.Equal(t, datatable.SortAsc, q.Sort.Direction)
		assert.Zero(t, q.Page)
		assert.Zero(t, q.PageSize)
	})

	t.Run("show all", func(t *testing.T) {
		c, _ := testContext(http.MethodGet, "/x?pageSize=all", "")
		q, err := ParseTableQuery(c)

		require.NoError(t, err)
		assert.Equal(t, datatable.ShowAll, q.PageSize)
	})

	for _, target := range []string{"/x?page=0", "/x?page=abc", "/x?pageSize=-5", "/x?pageSize=many"} {
		t.Run("rejects "+target, func(t *testing.T) {
			c, _ := testContext(http.MethodGet, target, "")
			_, err := ParseTableQuery(c)
			assert.Error(t, err)
		})
	}
}

type stubResolver struct {
	userID uuid.UUID
	called bool
}

func (r *stubResolver) ResolveQuery(_ context.Context, userID uuid.UUID, _ string, q datatable.Query) datatable.Query {
	r.called = true
	r.userID = userID
	if q.PageSize == 0 {
		q.PageSize = 7
	}
	return q
}

func TestTableQuery_ResolvesWithoutSessionUser(t *testing.T) {
	h := &BaseHandler{}
	resolver := &stubResolver{}

	c, w := testContext(http.MethodGet, "/x?page=1", "")
	q, ok := h.tableQuery(c, resolver, "products")

	assert.True(t, ok)
	assert.False(t, resolver.called)
	assert.Zero(t, q.PageSize)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = testContext(http.MethodGet, "/x?page=0", "")
	_, ok = h.tableQuery(c, resolver, "products")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decode(t, w).Error.Code)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.NotFoundError("Product", "1"), http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"conflict", shared.NewDomainError("ALREADY_EXISTS", "SKU taken"), http.StatusConflict, dto.ErrCodeAlreadyExists},
		{"in use", shared.NewDomainError("PRODUCT_IN_USE", "used"), http.StatusConflict, dto.ErrCodeInUse},
		{"bad input", shared.NewDomainError("INVALID_QUANTITY", "bad"), http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"business rule", shared.NewDomainError("NEGATIVE_STOCK", "no"), http.StatusUnprocessableEntity, dto.ErrCodeBusinessRule},
		{"unavailable", shared.ErrServiceUnavailable, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := testContext(http.MethodGet, "/", "")
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
		})
	}

	t.Run("unknown error hides details", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := testContext(http.MethodGet, "/", "")
		h.HandleError(c, errors.New("pq: password authentication failed"))

		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("validation details", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := testContext(http.MethodGet, "/", "")
		h.HandleError(c, &shared.ValidationError{Fields: []shared.FieldError{
			{Field: "externalId", Message: "is required"},
			{Field: "items[0].quantity", Message: "must be a number"},
		}})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeSchemaValidation, resp.Error.Code)
		assert.Equal(t, []dto.FieldDetail{
			{Field: "externalId", Message: "is required"},
			{Field: "items[0].quantity", Message: "must be a number"},
		}, resp.Error.Details)
	})

	t.Run("cancelled request", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := testContext(http.MethodGet, "/", "")
		h.HandleError(c, context.Canceled)
		assert.Equal(t, 499, w.Code)
	})
}

type bindTarget struct {
	Name     string `json:"name" binding:"required,max=5"`
	Quantity int    `json:"quantity" binding:"gte=1"`
}

func TestBindJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		h := &BaseHandler{}
		c, _ := testContext(http.MethodPost, "/", `{"name":"bolt","quantity":2}`)
		var req bindTarget
		require.True(t, h.BindJSON(c, &req))
		assert.Equal(t, bindTarget{Name: "bolt", Quantity: 2}, req)
	})

	t.Run("field errors", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := testContext(http.MethodPost, "/", `{"name":"too long","quantity":0}`)
		var req bindTarget
		require.False(t, h.BindJSON(c, &req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.ElementsMatch(t, []dto.FieldDetail{
			{Field: "name", Message: "must be at most 5"},
			{Field: "quantity", Message: "must be greater than or equal to 1"},
		}, resp.Error.Details)
	})

	t.Run("malformed json", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := testContext(http.MethodPost, "/", `{"name":`)
		var req bindTarget
		require.False(t, h.BindJSON(c, &req))
		assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
	})
}

func TestParamID(t *testing.T) {
	h := &BaseHandler{}
	c, w := testContext(http.MethodGet, "/", "")
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	_, ok := h.ParamID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := uuid.New()
	c, _ = testContext(http.MethodGet, "/", "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	got, ok := h.ParamID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
