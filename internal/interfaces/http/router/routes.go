package router

import (
	"github.com/gin-gonic/gin"

	"github.com/erp/factory/internal/interfaces/http/handler"
)

// Handlers are the API handlers. A nil handler leaves its group unmounted.
type Handlers struct {
	Auth          *handler.AuthHandler
	Products      *handler.ProductHandler
	Warehouses    *handler.WarehouseHandler
	Inventory     *handler.InventoryHandler
	Orders        *handler.OrderHandler
	Payments      *handler.PaymentHandler
	Manufacturing *handler.ManufacturingHandler
	Shipments     *handler.ShipmentHandler
	Workers       *handler.WorkerHandler
	Positions     *handler.RefHandler
	Departments   *handler.RefHandler
	Clients       *handler.ClientHandler
	Invoices      *handler.InvoiceHandler
	Receipts      *handler.ReceiptHandler
	TableSettings *handler.TableSettingsHandler
	Sync          *handler.SyncHandler
	Integrations  *handler.IntegrationHandler
}

// Guards are the access middlewares of the API
type Guards struct {
	// Session rejects requests without a live session
	Session gin.HandlerFunc
	// LoginLimit throttles login attempts; optional
	LoginLimit gin.HandlerFunc
}

// APIGroups builds the route groups of every non-nil handler. Everything
// except login runs behind the session guard.
func APIGroups(h Handlers, g Guards) []RouteRegistrar {
	var groups []RouteRegistrar
	add := func(dg *DomainGroup) { groups = append(groups, dg) }

	if h.Auth != nil {
		authGroup := NewDomainGroup("auth", "/auth")
		authGroup.POST("/simple-login", withGuard(g.LoginLimit, h.Auth.Login)...)
		authGroup.POST("/logout", withGuard(g.Session, h.Auth.Logout)...)
		authGroup.GET("/me", withGuard(g.Session, h.Auth.Me)...)
		add(authGroup)
	}

	if p := h.Products; p != nil {
		dg := NewDomainGroup("catalog", "/products").Use(g.Session)
		dg.GET("", p.List).GET("/export", p.Export).POST("", p.Create)
		dg.GET("/:id", p.Get).PUT("/:id", p.Update).DELETE("/:id", p.Delete)
		dg.GET("/:id/components", p.ListComponents).POST("/:id/components", p.SetComponent)
		dg.DELETE("/:id/components/:componentId", p.RemoveComponent)
		dg.GET("/:id/cost", p.Cost)
		dg.POST("/:id/photo", p.UploadPhoto).GET("/:id/photo", p.PhotoURL)
		add(dg)
	}

	if w := h.Warehouses; w != nil {
		dg := NewDomainGroup("warehouses", "/warehouses").Use(g.Session)
		dg.GET("", w.List).POST("", w.Create)
		dg.GET("/:id", w.Get).PUT("/:id", w.Update).DELETE("/:id", w.Delete)
		add(dg)
	}

	if inv := h.Inventory; inv != nil {
		dg := NewDomainGroup("inventory", "/inventory").Use(g.Session)
		dg.GET("", inv.List).GET("/export", inv.Export).GET("/low-stock", inv.LowStock)
		dg.POST("", inv.Set)
		dg.GET("/:id", inv.Get).PUT("/:id", inv.Update).DELETE("/:id", inv.Delete)
		dg.POST("/:id/adjust", inv.Adjust)
		add(dg)
	}

	if o := h.Orders; o != nil {
		dg := NewDomainGroup("orders", "/orders").Use(g.Session)
		dg.GET("", o.List).GET("/export", o.Export).GET("/ordered-products", o.OrderedProducts)
		dg.POST("", o.Create)
		dg.GET("/:id", o.Get).PUT("/:id", o.Update).DELETE("/:id", o.Delete)
		dg.PUT("/:id/status", o.UpdateStatus)
		dg.GET("/:id/payments", o.Payments)
		add(dg)
	}

	if p := h.Payments; p != nil {
		dg := NewDomainGroup("payments", "/payments").Use(g.Session)
		dg.GET("", p.List).GET("/export", p.Export).POST("", p.Create)
		dg.GET("/:id", p.Get).PUT("/:id", p.Update).DELETE("/:id", p.Delete)
		add(dg)
	}

	if m := h.Manufacturing; m != nil {
		dg := NewDomainGroup("manufacturing", "/manufacturing-orders").Use(g.Session)
		dg.GET("", m.List).GET("/export", m.Export).POST("", m.Create)
		dg.GET("/:id", m.Get).PUT("/:id", m.Update).DELETE("/:id", m.Delete)
		dg.POST("/:id/start", m.Start).POST("/:id/pause", m.Pause)
		dg.POST("/:id/resume", m.Resume).POST("/:id/stop", m.Stop)
		dg.POST("/:id/complete", m.Complete)
		dg.POST("/:id/serial-numbers", m.GenerateSerialNumbers)
		add(dg)
	}

	if s := h.Shipments; s != nil {
		dg := NewDomainGroup("shipping", "/shipments").Use(g.Session)
		dg.GET("", s.List).GET("/export", s.Export).POST("", s.Create)
		dg.GET("/:id", s.Get).PUT("/:id", s.Update).DELETE("/:id", s.Delete)
		dg.PUT("/:id/status", s.UpdateStatus)
		add(dg)
	}

	if w := h.Workers; w != nil {
		dg := NewDomainGroup("workers", "/workers").Use(g.Session)
		dg.GET("", w.List).GET("/export", w.Export).POST("", w.Create)
		dg.GET("/:id", w.Get).PUT("/:id", w.Update).DELETE("/:id", w.Delete)
		add(dg)
	}
	refs := []struct {
		name string
		h    *handler.RefHandler
	}{{"positions", h.Positions}, {"departments", h.Departments}}
	for _, r := range refs {
		ref := r.h
		if ref == nil {
			continue
		}
		dg := NewDomainGroup(r.name, "/"+r.name).Use(g.Session)
		dg.GET("", ref.List).POST("", ref.Create)
		dg.GET("/:id", ref.Get).PUT("/:id", ref.Update).DELETE("/:id", ref.Delete)
		add(dg)
	}

	if cl := h.Clients; cl != nil {
		dg := NewDomainGroup("partner", "/clients").Use(g.Session)
		dg.GET("", cl.List).GET("/export", cl.Export).POST("", cl.Create)
		dg.GET("/:id", cl.Get).PUT("/:id", cl.Update).DELETE("/:id", cl.Delete)
		dg.GET("/:id/contacts", cl.ListContacts).POST("/:id/contacts", cl.CreateContact)
		dg.PUT("/:id/contacts/:contactId", cl.UpdateContact).DELETE("/:id/contacts/:contactId", cl.DeleteContact)
		add(dg)
	}

	if i := h.Invoices; i != nil {
		dg := NewDomainGroup("invoicing", "/invoices").Use(g.Session)
		dg.GET("", i.List).GET("/export", i.Export)
		dg.GET("/:id", i.Get).DELETE("/:id", i.Delete)
		add(dg)
	}

	if r := h.Receipts; r != nil {
		dg := NewDomainGroup("procurement", "/supplier-receipts").Use(g.Session)
		dg.GET("", r.List).POST("", r.Create)
		dg.GET("/:id", r.Get).PUT("/:id", r.Update).DELETE("/:id", r.Delete)
		dg.POST("/:id/receive", r.Receive).POST("/:id/cancel", r.Cancel)
		add(dg)
	}

	if ts := h.TableSettings; ts != nil {
		dg := NewDomainGroup("datatable", "/table-settings").Use(g.Session)
		dg.GET("", ts.Definitions)
		dg.GET("/:key", ts.Get).PUT("/:key", ts.Save).DELETE("/:key", ts.Reset)
		dg.POST("/:key/sort", ts.ToggleSort).POST("/:key/move", ts.MoveColumn)
		dg.POST("/:key/columns/:column/toggle", ts.ToggleColumn)
		add(dg)
	}

	if s := h.Sync; s != nil {
		dg := NewDomainGroup("sync", "/sync").Use(g.Session)
		dg.POST("/clients", s.UpsertClient).POST("/companies", s.UpsertCompany)
		dg.POST("/contacts", s.UpsertContact).POST("/invoices", s.UpsertInvoice)
		dg.POST("/invoice-items", s.UpsertInvoiceItem)
		dg.POST("/batch", s.Batch).POST("/bulk-invoices", s.BulkInvoices)
		dg.GET("/stats", s.Stats)
		add(dg)
	}

	if in := h.Integrations; in != nil {
		bitrix := NewDomainGroup("bitrix24", "/integrations/bitrix24").Use(g.Session)
		bitrix.POST("/pull", in.PullBitrix24)
		add(bitrix)

		onec := NewDomainGroup("1c", "/1c").Use(g.Session)
		onec.GET("/invoices", in.ListOneCInvoices)
		onec.POST("/invoices/:id/import", in.ImportOneCInvoice)
		add(onec)
	}

	return groups
}

func withGuard(guard gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{guard, h}
}
