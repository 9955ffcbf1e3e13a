// Package handler contains the gin handlers of the ERP API.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/identity"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/infrastructure/auth"
	"github.com/erp/factory/internal/infrastructure/logger"
	"github.com/erp/factory/internal/interfaces/http/dto"
	"github.com/erp/factory/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends field details with the given status
func (h *BaseHandler) ValidationError(c *gin.Context, status int, code string, details []dto.FieldDetail) {
	c.JSON(status, dto.NewValidationErrorResponse(code, "Request validation failed", middleware.GetRequestID(c), details))
}

// HandleError converts service errors to HTTP responses. Unknown errors are
// logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		details := make([]dto.FieldDetail, len(verr.Fields))
		for i, f := range verr.Fields {
			details[i] = dto.FieldDetail{Field: f.Field, Message: f.Message}
		}
		h.ValidationError(c, http.StatusUnprocessableEntity, dto.ErrCodeSchemaValidation, details)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		h.Error(c, status, code, domainErr.Message)
		return
	}

	if errors.Is(err, context.Canceled) {
		// client went away
		c.Status(499)
		return
	}

	_ = c.Error(err)
	logger.FromGin(c).Error("Unhandled error", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}

// BindJSON decodes the request body into req. Binding failures are answered
// with 400 and field details; the caller must return when false.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// BindQuery decodes query parameters into req
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]dto.FieldDetail, len(verrs))
		for i, fe := range verrs {
			details[i] = dto.FieldDetail{Field: jsonFieldName(fe), Message: validationMessage(fe)}
		}
		h.ValidationError(c, http.StatusBadRequest, dto.ErrCodeValidation, details)
		return
	}
	if errors.Is(err, io.EOF) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is empty")
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
}

func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.Namespace()
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid UUID"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

// ParamID parses a UUID path parameter. An invalid id is answered with 400.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// CurrentUser returns the session user set by the session middleware
func (h *BaseHandler) CurrentUser(c *gin.Context) (identity.SessionUser, bool) {
	u, ok := auth.UserFromContext(c.Request.Context())
	if !ok {
		h.Unauthorized(c, "Authentication required")
	}
	return u, ok
}

// QueryResolver completes a table query with the user's stored settings
type QueryResolver interface {
	ResolveQuery(ctx context.Context, userID uuid.UUID, key string, q datatable.Query) datatable.Query
}

// ParseTableQuery reads search, sort, dir, page, pageSize and filter[<column>]
// from the query string. pageSize=all returns every row.
func ParseTableQuery(c *gin.Context) (datatable.Query, error) {
	q := datatable.Query{
		Search:  c.Query("search"),
		Filters: c.QueryMap("filter"),
	}
	if field := c.Query("sort"); field != "" {
		q.Sort = datatable.Sort{Field: field, Direction: datatable.SortDirection(strings.ToLower(c.DefaultQuery("dir", "asc")))}
	}
	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return q, shared.NewDomainError("INVALID_PAGE", "page must be a positive integer")
		}
		q.Page = page
	}
	if v := c.Query("pageSize"); v != "" {
		if strings.EqualFold(v, "all") {
			q.PageSize = datatable.ShowAll
		} else {
			size, err := strconv.Atoi(v)
			if err != nil || size < 1 {
				return q, shared.NewDomainError("INVALID_PAGE_SIZE", "pageSize must be a positive integer or all")
			}
			q.PageSize = size
		}
	}
	return q, nil
}

// tableQuery parses the request query and fills the gaps from the user's
// stored settings for the table key.
func (h *BaseHandler) tableQuery(c *gin.Context, resolver QueryResolver, key string) (datatable.Query, bool) {
	q, err := ParseTableQuery(c)
	if err != nil {
		h.HandleError(c, err)
		return q, false
	}
	if resolver != nil {
		if u, ok := auth.UserFromContext(c.Request.Context()); ok {
			q = resolver.ResolveQuery(c.Request.Context(), u.UserID, key, q)
		}
	}
	return q, true
}

// respondPage writes one DataTable page with its meta
func respondPage[T any](h *BaseHandler, c *gin.Context, res datatable.Result[T]) {
	h.SuccessWithMeta(c, res.Rows, int64(res.Total), res.Page, res.PageSize)
}
