package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	workforceapp "github.com/erp/factory/internal/application/workforce"
)

// WorkerHandler handles workers
type WorkerHandler struct {
	BaseHandler
	workerService *workforceapp.WorkerService
	tables        *Tables
}

// NewWorkerHandler creates a new WorkerHandler
func NewWorkerHandler(workerService *workforceapp.WorkerService, tables *Tables) *WorkerHandler {
	return &WorkerHandler{workerService: workerService, tables: tables}
}

// List returns one page of workers
func (h *WorkerHandler) List(c *gin.Context) {
	q, ok := h.tableQuery(c, h.tables.resolver(), workforceapp.WorkersTableKey)
	if !ok {
		return
	}
	res, err := h.workerService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, res)
}

// Export downloads the worker list as a spreadsheet
func (h *WorkerHandler) Export(c *gin.Context) {
	exportTable(&h.BaseHandler, c, h.tables, h.workerService.Table(), h.workerService.Export)
}

// Get returns one worker
func (h *WorkerHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	w, err := h.workerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, w)
}

// Create hires a worker
func (h *WorkerHandler) Create(c *gin.Context) {
	var req workforceapp.CreateWorkerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	w, err := h.workerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, w)
}

// Update changes a worker
func (h *WorkerHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req workforceapp.UpdateWorkerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	w, err := h.workerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, w)
}

// Delete removes a worker
func (h *WorkerHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.workerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// refService is the CRUD shared by positions and departments
type refService interface {
	List(ctx context.Context) ([]workforceapp.RefResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*workforceapp.RefResponse, error)
	Create(ctx context.Context, req workforceapp.RefRequest) (*workforceapp.RefResponse, error)
	Update(ctx context.Context, id uuid.UUID, req workforceapp.RefRequest) (*workforceapp.RefResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RefHandler serves a named reference list (positions, departments)
type RefHandler struct {
	BaseHandler
	service refService
}

// NewPositionHandler creates a RefHandler for positions
func NewPositionHandler(svc *workforceapp.PositionService) *RefHandler {
	return &RefHandler{service: svc}
}

// NewDepartmentHandler creates a RefHandler for departments
func NewDepartmentHandler(svc *workforceapp.DepartmentService) *RefHandler {
	return &RefHandler{service: svc}
}

// List returns every entry
func (h *RefHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Get returns one entry
func (h *RefHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ref, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ref)
}

// Create adds an entry
func (h *RefHandler) Create(c *gin.Context) {
	var req workforceapp.RefRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ref, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ref)
}

// Update renames an entry
func (h *RefHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req workforceapp.RefRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ref, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ref)
}

// Delete removes an entry
func (h *RefHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
