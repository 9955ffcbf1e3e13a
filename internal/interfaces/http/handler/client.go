package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/erp/factory/internal/application/partner"
)

// ClientHandler handles clients and their contacts
type ClientHandler struct {
	BaseHandler
	clientService *partnerapp.ClientService
	tables        *Tables
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *partnerapp.ClientService, tables *Tables) *ClientHandler {
	return &ClientHandler{clientService: clientService, tables: tables}
}

// List returns one page of clients
func (h *ClientHandler) List(c *gin.Context) {
	q, ok := h.tableQuery(c, h.tables.resolver(), partnerapp.ClientsTableKey)
	if !ok {
		return
	}
	res, err := h.clientService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, res)
}

// Export downloads the client list as a spreadsheet
func (h *ClientHandler) Export(c *gin.Context) {
	exportTable(&h.BaseHandler, c, h.tables, h.clientService.Table(), h.clientService.Export)
}

// Get returns one client
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Create adds a client
func (h *ClientHandler) Create(c *gin.Context) {
	var req partnerapp.CreateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// Update changes a client
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete removes a client
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListContacts returns the contacts of a client
func (h *ClientHandler) ListContacts(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	list, err := h.clientService.ListContacts(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// CreateContact adds a contact to a client
func (h *ClientHandler) CreateContact(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.ContactRequest
	if !h.BindJSON(c, &req) {
		return
	}
	contact, err := h.clientService.CreateContact(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contact)
}

// UpdateContact changes a contact of a client
func (h *ClientHandler) UpdateContact(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	contactID, ok := h.ParamID(c, "contactId")
	if !ok {
		return
	}
	var req partnerapp.ContactRequest
	if !h.BindJSON(c, &req) {
		return
	}
	contact, err := h.clientService.UpdateContact(c.Request.Context(), id, contactID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// DeleteContact removes a contact of a client
func (h *ClientHandler) DeleteContact(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	contactID, ok := h.ParamID(c, "contactId")
	if !ok {
		return
	}
	if err := h.clientService.DeleteContact(c.Request.Context(), id, contactID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
