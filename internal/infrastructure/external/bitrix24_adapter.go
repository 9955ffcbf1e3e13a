package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/erp/factory/internal/domain/integration"
	"github.com/erp/factory/internal/infrastructure/config"
)

var _ integration.CRM = (*Bitrix24Adapter)(nil)

const (
	bitrixSystem = "bitrix24"
	// Bitrix24 allows two requests per second per portal
	defaultBitrixRPS = 2
	// maxPages stops a paging loop that never ends
	maxPages = 10000
	// bitrixCompanyEntity is ENTITY_TYPE_ID of companies in requisite lists
	bitrixCompanyEntity = 4
)

var (
	bitrixCompanyFields = []string{"ID", "TITLE", "ADDRESS", "PHONE", "EMAIL"}
	bitrixInvoiceFields = []string{
		"ID", "ACCOUNT_NUMBER", "UF_COMPANY_ID", "DATE_BILL", "DATE_PAY_BEFORE",
		"PRICE", "CURRENCY", "STATUS_ID", "COMMENTS",
	}
)

// Bitrix24Adapter reads companies and invoices through an inbound webhook
type Bitrix24Adapter struct {
	webhook string
	opts    clientOptions
	limiter *rate.Limiter
}

// NewBitrix24Adapter creates the adapter. The webhook URL has the form
// https://<portal>/rest/<user>/<token>/.
func NewBitrix24Adapter(cfg config.Bitrix24Config, opts ...Option) (*Bitrix24Adapter, error) {
	if cfg.WebhookURL == "" {
		return nil, integration.ErrNotConfigured
	}
	u, err := url.Parse(cfg.WebhookURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("bitrix24: invalid webhook url")
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultBitrixRPS
	}
	return &Bitrix24Adapter{
		webhook: strings.TrimRight(cfg.WebhookURL, "/") + "/",
		opts:    buildOptions(cfg.Timeout, opts),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// ListCompanies returns every company with the tax code and KPP taken from
// its first requisite that carries an INN.
func (a *Bitrix24Adapter) ListCompanies(ctx context.Context) ([]integration.Company, error) {
	companies, err := listAll[bitrixCompany](ctx, a, "crm.company.list", map[string]any{
		"select": bitrixCompanyFields,
		"order":  map[string]string{"ID": "ASC"},
	})
	if err != nil {
		return nil, err
	}
	requisites, err := listAll[bitrixRequisite](ctx, a, "crm.requisite.list", map[string]any{
		"select": []string{"ENTITY_ID", "RQ_INN", "RQ_KPP"},
		"filter": map[string]any{"ENTITY_TYPE_ID": bitrixCompanyEntity},
	})
	if err != nil {
		return nil, err
	}
	byCompany := make(map[string]bitrixRequisite, len(requisites))
	for _, r := range requisites {
		if _, seen := byCompany[r.EntityID]; !seen && strings.TrimSpace(r.INN) != "" {
			byCompany[r.EntityID] = r
		}
	}

	out := make([]integration.Company, len(companies))
	for i, c := range companies {
		rq := byCompany[c.ID]
		out[i] = integration.Company{
			ID:      c.ID,
			Title:   strings.TrimSpace(c.Title),
			TaxCode: strings.TrimSpace(rq.INN),
			KPP:     strings.TrimSpace(rq.KPP),
			Email:   firstValue(c.Email),
			Phone:   firstValue(c.Phone),
			Address: strings.TrimSpace(c.Address),
		}
	}
	return out, nil
}

// ListInvoices returns every invoice header. Lines are not part of list responses.
func (a *Bitrix24Adapter) ListInvoices(ctx context.Context) ([]integration.Invoice, error) {
	invoices, err := listAll[bitrixInvoice](ctx, a, "crm.invoice.list", map[string]any{
		"select": bitrixInvoiceFields,
		"order":  map[string]string{"ID": "ASC"},
	})
	if err != nil {
		return nil, err
	}
	out := make([]integration.Invoice, len(invoices))
	for i, inv := range invoices {
		companyID := inv.CompanyID
		if companyID == "0" {
			companyID = ""
		}
		out[i] = integration.Invoice{
			ID:        inv.ID,
			Number:    inv.AccountNumber,
			CompanyID: companyID,
			IssueDate: inv.DateBill.Ptr(),
			DueDate:   inv.DatePayBefore.Ptr(),
			Total:     inv.Price.Decimal,
			Currency:  inv.Currency,
			Status:    inv.StatusID,
			Comment:   inv.Comments,
		}
	}
	return out, nil
}

// listAll follows the start/next cursor of a list method
func listAll[T any](ctx context.Context, a *Bitrix24Adapter, method string, params map[string]any) ([]T, error) {
	var all []T
	start := 0
	for page := 0; page < maxPages; page++ {
		params["start"] = start
		var items []T
		env, err := a.call(ctx, method, params, &items)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if env.Next == nil || *env.Next <= start {
			return all, nil
		}
		start = *env.Next
	}
	return nil, fmt.Errorf("%w: %s did not finish paging", integration.ErrInvalidResponse, method)
}

// call invokes one REST method and decodes its result into out
func (a *Bitrix24Adapter) call(ctx context.Context, method string, params any, out any) (*bitrixEnvelope, error) {
	var env bitrixEnvelope
	err := observe(ctx, a.opts.recorder, bitrixSystem, method, func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		body, err := jsonBody(params)
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhook+method+".json", body)
		if err != nil {
			return fmt.Errorf("bitrix24: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		raw, err := send(a.opts.httpClient, req)
		if he, ok := asHTTPError(err); ok {
			_ = json.Unmarshal(he.body, &env)
			return bitrixError(he.status, env)
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
		}
		if env.Error != "" {
			return bitrixError(http.StatusOK, env)
		}
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("%w: %s result: %v", integration.ErrInvalidResponse, method, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

func bitrixError(status int, env bitrixEnvelope) error {
	detail := env.Error
	if env.ErrorDescription != "" {
		detail += ": " + env.ErrorDescription
	}
	switch env.Error {
	case "NO_AUTH_FOUND", "INVALID_CREDENTIALS", "insufficient_scope", "expired_token":
		return fmt.Errorf("%w: %s", integration.ErrAuthFailed, detail)
	case "":
		return statusError(status, "")
	}
	if status == http.StatusOK {
		return fmt.Errorf("%w: %s", integration.ErrRequestFailed, detail)
	}
	return statusError(status, detail)
}
