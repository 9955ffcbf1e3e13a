package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	syncapp "github.com/erp/factory/internal/application/sync"
	"github.com/erp/factory/internal/domain/integration"
	"github.com/erp/factory/internal/domain/shared"
)

type MockCRM struct {
	mock.Mock
}

func (m *MockCRM) ListCompanies(ctx context.Context) ([]integration.Company, error) {
	args := m.Called(ctx)
	return args.Get(0).([]integration.Company), args.Error(1)
}

func (m *MockCRM) ListInvoices(ctx context.Context) ([]integration.Invoice, error) {
	args := m.Called(ctx)
	return args.Get(0).([]integration.Invoice), args.Error(1)
}

type MockAccounting struct {
	mock.Mock
}

func (m *MockAccounting) ListInvoices(ctx context.Context, q integration.InvoiceQuery) ([]integration.Invoice, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]integration.Invoice), args.Error(1)
}

func (m *MockAccounting) GetInvoice(ctx context.Context, id string) (*integration.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Invoice), args.Error(1)
}

type MockSyncer struct {
	mock.Mock
}

func (m *MockSyncer) Batch(ctx context.Context, req syncapp.BatchRequest) (*syncapp.BatchResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*syncapp.BatchResult), args.Error(1)
}

func (m *MockSyncer) UpsertClient(ctx context.Context, p syncapp.ClientPayload) (*syncapp.UpsertResult, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(*syncapp.UpsertResult), args.Error(1)
}

func (m *MockSyncer) UpsertCompany(ctx context.Context, p syncapp.CompanyPayload) (*syncapp.UpsertResult, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(*syncapp.UpsertResult), args.Error(1)
}

func (m *MockSyncer) UpsertInvoice(ctx context.Context, p syncapp.InvoicePayload) (*syncapp.UpsertResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncapp.UpsertResult), args.Error(1)
}

func TestService_PullBitrix24(t *testing.T) {
	ctx := context.Background()
	crm := new(MockCRM)
	syncer := new(MockSyncer)
	svc := NewService(crm, nil, syncer, nil)

	crm.On("ListCompanies", ctx).Return([]integration.Company{
		{ID: "1", Title: "Romashka", TaxCode: "7701234567"},
		{ID: "2", Title: "No INN Ltd"},
	}, nil)
	crm.On("ListInvoices", ctx).Return([]integration.Invoice{
		{ID: "10", Number: "B-10", CompanyID: "1", Total: decimal.NewFromInt(100), Status: "P",
			Lines: []integration.InvoiceLine{{ProductName: "Desk", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(100)}}},
	}, nil)

	var captured syncapp.BatchRequest
	syncer.On("Batch", ctx, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(syncapp.BatchRequest)
	}).Return(&syncapp.BatchResult{Total: 3, Succeeded: 3}, nil)

	res, err := svc.PullBitrix24(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded)

	assert.Equal(t, "bitrix24", captured.Source)
	assert.Len(t, captured.Companies, 1)
	assert.Len(t, captured.Clients, 1)
	require.Len(t, captured.Invoices, 1)

	inv, err := syncapp.Decode[syncapp.InvoicePayload](captured.Invoices[0])
	require.NoError(t, err)
	assert.Equal(t, syncapp.ID("1"), inv.ClientExternalID)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, syncapp.ID("10/1"), inv.Items[0].ExternalID)

	var client map[string]any
	require.NoError(t, json.Unmarshal(captured.Clients[0], &client))
	assert.Equal(t, "company", client["kind"])
}

func TestService_NotConfigured(t *testing.T) {
	svc := NewService(nil, nil, new(MockSyncer), nil)

	_, err := svc.PullBitrix24(context.Background())
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "SERVICE_UNAVAILABLE", de.Code)

	_, err = svc.ImportOneCInvoice(context.Background(), "x")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "SERVICE_UNAVAILABLE", de.Code)
}

func TestService_ImportOneCInvoice(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("upserts the counterparty then the invoice", func(t *testing.T) {
		acc := new(MockAccounting)
		syncer := new(MockSyncer)
		svc := NewService(nil, acc, syncer, nil)

		acc.On("GetInvoice", ctx, "guid-1").Return(&integration.Invoice{
			ID: "guid-1", Number: "0000-000123", IssueDate: &issued, Status: "Оплачен",
			Company: &integration.Company{ID: "cp-1", Title: "Vector", TaxCode: "5001112223"},
			Lines: []integration.InvoiceLine{
				{LineNumber: 1, ProductName: "Chair", Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(50), Total: decimal.NewFromInt(100)},
			},
		}, nil)
		syncer.On("UpsertCompany", ctx, mock.MatchedBy(func(p syncapp.CompanyPayload) bool {
			return p.ExternalID == "cp-1" && p.Source == "1c" && p.TaxCode == "5001112223"
		})).Return(&syncapp.UpsertResult{Entity: syncapp.EntityCompany, Outcome: syncapp.OutcomeCreated}, nil)
		syncer.On("UpsertInvoice", ctx, mock.MatchedBy(func(p syncapp.InvoicePayload) bool {
			return p.ClientExternalID == "cp-1" && p.ClientTaxCode == "5001112223" &&
				p.IssueDate.Valid && len(p.Items) == 1 && p.Items[0].ExternalID == "guid-1/1"
		})).Return(&syncapp.UpsertResult{Entity: syncapp.EntityInvoice, Outcome: syncapp.OutcomeCreated}, nil)

		res, err := svc.ImportOneCInvoice(ctx, "guid-1")
		require.NoError(t, err)
		assert.Equal(t, syncapp.OutcomeCreated, res.Invoice.Outcome)
		assert.NotNil(t, res.Company)
		syncer.AssertExpectations(t)
	})

	t.Run("missing invoice is not found", func(t *testing.T) {
		acc := new(MockAccounting)
		svc := NewService(nil, acc, new(MockSyncer), nil)
		acc.On("GetInvoice", ctx, "nope").Return(nil, integration.ErrRecordNotFound)

		_, err := svc.ImportOneCInvoice(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("upstream failures are reported", func(t *testing.T) {
		acc := new(MockAccounting)
		svc := NewService(nil, acc, new(MockSyncer), nil)
		acc.On("GetInvoice", ctx, "x").Return(nil, integration.ErrRequestFailed)

		_, err := svc.ImportOneCInvoice(ctx, "x")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "UPSTREAM_ERROR", de.Code)
	})
}

func TestService_ListOneCInvoices(t *testing.T) {
	ctx := context.Background()
	acc := new(MockAccounting)
	svc := NewService(nil, acc, new(MockSyncer), nil)
	acc.On("ListInvoices", ctx, integration.InvoiceQuery{Top: 50}).Return([]integration.Invoice{
		{ID: "g", Number: "1", Company: &integration.Company{Title: "Vector"}, Total: decimal.NewFromInt(5)},
	}, nil)

	out, err := svc.ListOneCInvoices(ctx, ListRemoteInvoicesRequest{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Vector", out[0].CompanyName)
}
