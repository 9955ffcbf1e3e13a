package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	catalogapp "github.com/erp/factory/internal/application/catalog"
	inventoryapp "github.com/erp/factory/internal/application/inventory"
	partnerapp "github.com/erp/factory/internal/application/partner"
	"github.com/erp/factory/tests/testutil"
)

// newLoggedInServer starts a server on a clean database with an admin session
func newLoggedInServer(t *testing.T, opts ...ServerOption) *TestServer {
	t.Helper()
	srv := NewTestServer(t, NewTestDB(t).Database, opts...)
	srv.Login()
	return srv
}

func createProduct(t *testing.T, api *testutil.API, body map[string]any) catalogapp.ProductResponse {
	t.Helper()
	w := api.Do(http.MethodPost, "/api/products", body)
	testutil.RequireStatus(t, w, http.StatusCreated)
	return testutil.Data[catalogapp.ProductResponse](t, w)
}

func createWarehouse(t *testing.T, api *testutil.API, code string) inventoryapp.WarehouseResponse {
	t.Helper()
	w := api.Do(http.MethodPost, "/api/warehouses", map[string]any{"code": code, "name": "Warehouse " + code})
	testutil.RequireStatus(t, w, http.StatusCreated)
	return testutil.Data[inventoryapp.WarehouseResponse](t, w)
}

func createSupplier(t *testing.T, api *testutil.API, name string) partnerapp.ClientResponse {
	t.Helper()
	w := api.Do(http.MethodPost, "/api/clients", map[string]any{"name": name, "type": "supplier", "kind": "company"})
	testutil.RequireStatus(t, w, http.StatusCreated)
	return testutil.Data[partnerapp.ClientResponse](t, w)
}

// stockOf returns the quantity of product in warehouse, or "" without a stock row
func stockOf(t *testing.T, api *testutil.API, productID, warehouseID uuid.UUID) string {
	t.Helper()
	w := api.Do(http.MethodGet, "/api/inventory?pageSize=all", nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	for _, row := range testutil.Data[[]inventoryapp.StockResponse](t, w) {
		if row.ProductID == productID && row.WarehouseID == warehouseID {
			return row.Quantity.String()
		}
	}
	return ""
}
