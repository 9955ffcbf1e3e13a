package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	partnerapp "github.com/erp/factory/internal/application/partner"
	syncapp "github.com/erp/factory/internal/application/sync"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/interfaces/http/dto"
	"github.com/erp/factory/tests/testutil"
)

func TestSync_ClientUpsert(t *testing.T) {
	srv := newLoggedInServer(t)
	api := srv.API

	w := api.Do(http.MethodPost, "/api/sync/clients", map[string]any{
		"externalId": 1042,
		"source":     "bitrix24",
		"name":       "Horns and Hooves",
		"type":       "customer",
		"email":      "office@horns.example",
	})
	testutil.RequireStatus(t, w, http.StatusCreated)
	first := testutil.Data[syncapp.UpsertResult](t, w)
	assert.Equal(t, syncapp.OutcomeCreated, first.Outcome)
	assert.Equal(t, "1042", first.ExternalID)

	w = api.Do(http.MethodPost, "/api/sync/clients", map[string]any{
		"externalId": "1042",
		"source":     "bitrix24",
		"name":       "Horns and Hooves Ltd",
	})
	testutil.RequireStatus(t, w, http.StatusOK)
	second := testutil.Data[syncapp.UpsertResult](t, w)
	assert.Equal(t, syncapp.OutcomeUpdated, second.Outcome)
	assert.Equal(t, first.ID, second.ID)

	w = api.Do(http.MethodGet, "/api/clients/"+first.ID.String(), nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	client := testutil.Data[partnerapp.ClientResponse](t, w)
	assert.Equal(t, "Horns and Hooves Ltd", client.Name)
	assert.Equal(t, "customer", client.Type)

	// the same external id from another system is a different record
	w = api.Do(http.MethodPost, "/api/sync/clients", map[string]any{
		"externalId": "1042",
		"source":     "1c",
		"name":       "Horns and Hooves (1C)",
	})
	testutil.RequireStatus(t, w, http.StatusCreated)
	assert.NotEqual(t, first.ID, testutil.Data[syncapp.UpsertResult](t, w).ID)
}

func TestSync_Validation(t *testing.T) {
	srv := newLoggedInServer(t)
	api := srv.API

	w := api.Do(http.MethodPost, "/api/sync/clients", map[string]any{"externalId": "7", "name": "No source"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeSchemaValidation, testutil.ErrorCode(t, w))

	w = api.Do(http.MethodPost, "/api/sync/clients", map[string]any{"externalId": "7", "source": "sap", "name": "Bad source"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.DoRaw(http.MethodPost, "/api/sync/clients", "application/json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, testutil.ErrorCode(t, w))
}

func TestSync_InvoiceWithItems(t *testing.T) {
	srv := newLoggedInServer(t)
	api := srv.API

	w := api.Do(http.MethodPost, "/api/sync/clients", map[string]any{
		"externalId": "C-1",
		"source":     "1c",
		"name":       "Buyer",
	})
	testutil.RequireStatus(t, w, http.StatusCreated)

	invoice := map[string]any{
		"externalId":       "INV-1",
		"source":           "1c",
		"invoiceNumber":    "0001",
		"clientExternalId": "C-1",
		"issueDate":        "2026-03-01",
		"totalAmount":      "1500.00",
		"items": []map[string]any{
			{"externalId": "INV-1-1", "lineNumber": 1, "productName": "Cabinet", "quantity": 2, "price": "500", "total": "1000"},
			{"externalId": "INV-1-2", "lineNumber": "2", "productName": "Shelf", "quantity": "1", "price": 500, "total": 500},
		},
	}
	w = api.Do(http.MethodPost, "/api/sync/invoices", invoice)
	testutil.RequireStatus(t, w, http.StatusCreated)
	res := testutil.Data[syncapp.UpsertResult](t, w)
	assert.Equal(t, syncapp.EntityInvoice, res.Entity)
	require.Len(t, res.Items, 2)
	for _, item := range res.Items {
		assert.Equal(t, syncapp.OutcomeCreated, item.Outcome)
	}

	w = api.Do(http.MethodPost, "/api/sync/invoices", invoice)
	testutil.RequireStatus(t, w, http.StatusOK)
	again := testutil.Data[syncapp.UpsertResult](t, w)
	assert.Equal(t, res.ID, again.ID)
	require.Len(t, again.Items, 2)
	assert.Equal(t, syncapp.OutcomeUpdated, again.Items[0].Outcome)

	w = api.Do(http.MethodPost, "/api/sync/invoices", map[string]any{
		"externalId":       "INV-2",
		"source":           "1c",
		"invoiceNumber":    "0002",
		"clientExternalId": "missing",
	})
	assert.GreaterOrEqual(t, w.Code, 400)

	w = api.Do(http.MethodGet, "/api/sync/stats", nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	stats := testutil.Data[syncapp.Stats](t, w)
	assert.EqualValues(t, 1, stats.Clients[shared.Source("1c")])
	assert.EqualValues(t, 1, stats.Invoices[shared.Source("1c")])
	assert.EqualValues(t, 2, stats.InvoiceItems[shared.Source("1c")])
	assert.NotNil(t, stats.LastSyncAt)
}

func TestSync_BatchCollectsItemErrors(t *testing.T) {
	srv := newLoggedInServer(t)
	api := srv.API

	w := api.Do(http.MethodPost, "/api/sync/batch", map[string]any{
		"source": "bitrix24",
		"clients": []map[string]any{
			{"externalId": "10", "name": "First"},
			{"externalId": "11", "name": "Second", "email": "not-an-email"},
		},
		"contacts": []map[string]any{
			{"externalId": "100", "clientExternalId": "10", "firstName": "Ivan", "isPrimary": true},
		},
	})
	testutil.RequireStatus(t, w, http.StatusOK)
	res := testutil.Data[syncapp.BatchResult](t, w)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, syncapp.EntityClient, res.Errors[0].Entity)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, "11", res.Errors[0].ExternalID)

	w = api.Do(http.MethodGet, "/api/sync/stats", nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	stats := testutil.Data[syncapp.Stats](t, w)
	assert.EqualValues(t, 1, stats.Clients[shared.SourceBitrix24])
	assert.EqualValues(t, 1, stats.Contacts[shared.SourceBitrix24])
}

func TestIntegrations_DisabledAdapters(t *testing.T) {
	srv := newLoggedInServer(t)

	w := srv.API.Do(http.MethodPost, "/api/integrations/bitrix24/pull", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = srv.API.Do(http.MethodGet, "/api/1c/invoices", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
