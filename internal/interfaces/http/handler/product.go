package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/erp/factory/internal/application/catalog"
	"github.com/erp/factory/internal/interfaces/http/dto"
)

// MaxPhotoSize bounds uploaded product photos
const MaxPhotoSize = 10 << 20

// ProductHandler handles products and their bills of materials
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	tables         *Tables
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, tables *Tables) *ProductHandler {
	return &ProductHandler{productService: productService, tables: tables}
}

// List returns one page of products
func (h *ProductHandler) List(c *gin.Context) {
	q, ok := h.tableQuery(c, h.tables.resolver(), catalogapp.ProductsTableKey)
	if !ok {
		return
	}
	res, err := h.productService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, res)
}

// Export downloads the product list as a spreadsheet
func (h *ProductHandler) Export(c *gin.Context) {
	exportTable(&h.BaseHandler, c, h.tables, h.productService.Table(), h.productService.Export)
}

// Get returns one product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create adds a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update changes the supplied product fields
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListComponents returns the bill of materials of a product
func (h *ProductHandler) ListComponents(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	lines, err := h.productService.ListComponents(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}

// SetComponent adds a component or changes its quantity
func (h *ProductHandler) SetComponent(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ComponentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	line, err := h.productService.SetComponent(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

// RemoveComponent drops a component from the bill of materials
func (h *ProductHandler) RemoveComponent(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	componentID, ok := h.ParamID(c, "componentId")
	if !ok {
		return
	}
	if err := h.productService.RemoveComponent(c.Request.Context(), id, componentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Cost returns the material cost of a product
func (h *ProductHandler) Cost(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	cost, err := h.productService.Cost(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cost)
}

// UploadPhoto stores the multipart "photo" file as the product photo
func (h *ProductHandler) UploadPhoto(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("photo")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Multipart field photo is required")
		return
	}
	if header.Size > MaxPhotoSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeInvalidInput, "Photo exceeds 10 MB")
		return
	}
	f, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxPhotoSize))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	product, err := h.productService.UploadPhoto(c.Request.Context(), id, contentType, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// PhotoURL returns a download link for the product photo
func (h *ProductHandler) PhotoURL(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	photo, err := h.productService.PhotoURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, photo)
}
