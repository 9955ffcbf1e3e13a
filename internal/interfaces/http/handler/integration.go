package handler

import (
	"github.com/gin-gonic/gin"

	integrationapp "github.com/erp/factory/internal/application/integration"
)

// IntegrationHandler triggers pulls from Bitrix24 and 1C
type IntegrationHandler struct {
	BaseHandler
	integrationService *integrationapp.Service
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(integrationService *integrationapp.Service) *IntegrationHandler {
	return &IntegrationHandler{integrationService: integrationService}
}

// PullBitrix24 imports companies, contacts and invoices from the CRM
func (h *IntegrationHandler) PullBitrix24(c *gin.Context) {
	res, err := h.integrationService.PullBitrix24(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// ListOneCInvoices pages through invoices in the accounting system
func (h *IntegrationHandler) ListOneCInvoices(c *gin.Context) {
	var req integrationapp.ListRemoteInvoicesRequest
	if !h.BindQuery(c, &req) {
		return
	}
	list, err := h.integrationService.ListOneCInvoices(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// ImportOneCInvoice imports one accounting invoice and its counterparty
func (h *IntegrationHandler) ImportOneCInvoice(c *gin.Context) {
	res, err := h.integrationService.ImportOneCInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}
