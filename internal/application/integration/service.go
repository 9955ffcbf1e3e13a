package integration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	syncapp "github.com/erp/factory/internal/application/sync"
	"github.com/erp/factory/internal/domain/integration"
	"github.com/erp/factory/internal/domain/shared"
)

// Syncer reconciles payloads with local records
type Syncer interface {
	Batch(ctx context.Context, req syncapp.BatchRequest) (*syncapp.BatchResult, error)
	UpsertClient(ctx context.Context, p syncapp.ClientPayload) (*syncapp.UpsertResult, error)
	UpsertCompany(ctx context.Context, p syncapp.CompanyPayload) (*syncapp.UpsertResult, error)
	UpsertInvoice(ctx context.Context, p syncapp.InvoicePayload) (*syncapp.UpsertResult, error)
}

// Service pulls records from Bitrix24 and 1C through the sync logic.
// A nil CRM or Accounting means the integration is not configured.
type Service struct {
	crm        integration.CRM
	accounting integration.Accounting
	sync       Syncer
	logger     *zap.Logger
}

// NewService creates a new integration Service
func NewService(crm integration.CRM, accounting integration.Accounting, sync Syncer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{crm: crm, accounting: accounting, sync: sync, logger: logger}
}

// Bitrix24Enabled reports whether a CRM adapter is configured
func (s *Service) Bitrix24Enabled() bool {
	return s.crm != nil
}

var errBitrix24Disabled = shared.NewDomainError("SERVICE_UNAVAILABLE", "Bitrix24 integration is not configured")
var err1CDisabled = shared.NewDomainError("SERVICE_UNAVAILABLE", "1C integration is not configured")

// PullBitrix24 reads all companies and invoices from Bitrix24 and reconciles
// them as one batch with source bitrix24.
func (s *Service) PullBitrix24(ctx context.Context) (*syncapp.BatchResult, error) {
	if s.crm == nil {
		return nil, errBitrix24Disabled
	}
	companies, err := s.crm.ListCompanies(ctx)
	if err != nil {
		return nil, upstreamError("Bitrix24", err)
	}
	invoices, err := s.crm.ListInvoices(ctx)
	if err != nil {
		return nil, upstreamError("Bitrix24", err)
	}

	source := string(shared.SourceBitrix24)
	req := syncapp.BatchRequest{Source: source}
	for _, c := range companies {
		company, client := companyPayload(c, source)
		if company != nil {
			req.Companies, err = appendRaw(req.Companies, company)
		} else {
			req.Clients, err = appendRaw(req.Clients, client)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, inv := range invoices {
		if req.Invoices, err = appendRaw(req.Invoices, invoicePayload(inv, source)); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Pulled Bitrix24 records",
		zap.Int("companies", len(companies)),
		zap.Int("invoices", len(invoices)))
	return s.sync.Batch(ctx, req)
}

// ListOneCInvoices lists invoices available for import from 1C
func (s *Service) ListOneCInvoices(ctx context.Context, req ListRemoteInvoicesRequest) ([]RemoteInvoiceResponse, error) {
	if s.accounting == nil {
		return nil, err1CDisabled
	}
	top := req.Top
	if top == 0 {
		top = 50
	}
	invoices, err := s.accounting.ListInvoices(ctx, integration.InvoiceQuery{Top: top, Skip: req.Skip, Since: req.Since})
	if err != nil {
		return nil, upstreamError("1C", err)
	}
	out := make([]RemoteInvoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = ToRemoteInvoiceResponse(inv)
	}
	return out, nil
}

// ImportOneCInvoice fetches one invoice with its lines and counterparty from
// 1C and upserts both with source 1c.
func (s *Service) ImportOneCInvoice(ctx context.Context, id string) (*ImportResult, error) {
	if s.accounting == nil {
		return nil, err1CDisabled
	}
	inv, err := s.accounting.GetInvoice(ctx, id)
	if err != nil {
		if errors.Is(err, integration.ErrRecordNotFound) {
			return nil, shared.NotFoundError("1C invoice", id)
		}
		return nil, upstreamError("1C", err)
	}

	source := string(shared.Source1C)
	result := &ImportResult{}
	if inv.Company != nil {
		if inv.CompanyID == "" {
			inv.CompanyID = inv.Company.ID
		}
		company, client := companyPayload(*inv.Company, source)
		if company != nil {
			result.Company, err = s.sync.UpsertCompany(ctx, *company)
		} else {
			result.Company, err = s.sync.UpsertClient(ctx, *client)
		}
		if err != nil {
			return nil, err
		}
	}
	if result.Invoice, err = s.sync.UpsertInvoice(ctx, invoicePayload(*inv, source)); err != nil {
		return nil, err
	}

	s.logger.Info("Imported 1C invoice",
		zap.String("external_id", id),
		zap.String("number", inv.Number),
		zap.String("outcome", string(result.Invoice.Outcome)),
		zap.Int("lines", len(inv.Lines)))
	return result, nil
}

func upstreamError(system string, err error) error {
	if errors.Is(err, integration.ErrNotConfigured) {
		return shared.NewDomainError("SERVICE_UNAVAILABLE", system+" integration is not configured")
	}
	return shared.NewDomainError("UPSTREAM_ERROR", fmt.Sprintf("%s request failed: %v", system, err))
}
