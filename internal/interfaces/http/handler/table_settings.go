package handler

import (
	"github.com/gin-gonic/gin"

	datatableapp "github.com/erp/factory/internal/application/datatable"
	"github.com/erp/factory/internal/domain/datatable"
)

// TableSettingsHandler stores per-user DataTable settings
type TableSettingsHandler struct {
	BaseHandler
	settingsService *datatableapp.SettingsService
}

// NewTableSettingsHandler creates a new TableSettingsHandler
func NewTableSettingsHandler(settingsService *datatableapp.SettingsService) *TableSettingsHandler {
	return &TableSettingsHandler{settingsService: settingsService}
}

// Definitions lists every table with its columns and defaults
func (h *TableSettingsHandler) Definitions(c *gin.Context) {
	h.Success(c, h.settingsService.Definitions())
}

// Get returns the effective settings of a table
func (h *TableSettingsHandler) Get(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	resp, err := h.settingsService.Get(c.Request.Context(), user.UserID, c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Save replaces the settings of a table
func (h *TableSettingsHandler) Save(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var settings datatable.Settings
	if !h.BindJSON(c, &settings) {
		return
	}
	resp, err := h.settingsService.Save(c.Request.Context(), user.UserID, c.Param("key"), settings)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reset restores the defaults of a table
func (h *TableSettingsHandler) Reset(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	resp, err := h.settingsService.Reset(c.Request.Context(), user.UserID, c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ToggleSort cycles the sort of a column: asc, desc, then off
func (h *TableSettingsHandler) ToggleSort(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req datatableapp.ToggleSortRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.settingsService.ToggleSort(c.Request.Context(), user.UserID, c.Param("key"), req.Field)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MoveColumn moves a column to a new position
func (h *TableSettingsHandler) MoveColumn(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req datatableapp.MoveColumnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.settingsService.MoveColumn(c.Request.Context(), user.UserID, c.Param("key"), req.Column, *req.Index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ToggleColumn shows or hides a column
func (h *TableSettingsHandler) ToggleColumn(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	resp, err := h.settingsService.ToggleColumn(c.Request.Context(), user.UserID, c.Param("key"), c.Param("column"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
