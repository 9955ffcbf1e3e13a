package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/erp/factory/internal/domain/integration"
	"github.com/erp/factory/internal/infrastructure/config"
)

var _ integration.Accounting = (*OneCAdapter)(nil)

const (
	oneCSystem   = "1c"
	oneCCurrency = "RUB"
	oneCMaxTop   = 500
)

// OneCAdapter reads invoices through the standard OData interface of 1C
type OneCAdapter struct {
	baseURL  string
	username string
	password string
	opts     clientOptions
}

// NewOneCAdapter creates the adapter. BaseURL points at .../odata/standard.odata/.
func NewOneCAdapter(cfg config.OneCConfig, opts ...Option) (*OneCAdapter, error) {
	if cfg.BaseURL == "" {
		return nil, integration.ErrNotConfigured
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("1c: invalid base url")
	}
	return &OneCAdapter{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/") + "/",
		username: cfg.Username,
		password: cfg.Password,
		opts:     buildOptions(cfg.Timeout, opts),
	}, nil
}

// ListInvoices returns invoice headers newest first with the counterparty expanded
func (a *OneCAdapter) ListInvoices(ctx context.Context, q integration.InvoiceQuery) ([]integration.Invoice, error) {
	top := q.Top
	if top <= 0 || top > oneCMaxTop {
		top = oneCMaxTop
	}
	params := url.Values{}
	params.Set("$format", "json")
	params.Set("$top", strconv.Itoa(top))
	if q.Skip > 0 {
		params.Set("$skip", strconv.Itoa(q.Skip))
	}
	params.Set("$orderby", "Date desc")
	params.Set("$expand", "Контрагент")
	params.Set("$select", "Ref_Key,Number,Date,Контрагент_Key,Контрагент/Description,Контрагент/ИНН,Контрагент/КПП,"+
		"СуммаДокумента,Комментарий,Posted,DeletionMark")
	if q.Since != nil {
		params.Set("$filter", "Date ge datetime'"+q.Since.Format("2006-01-02T15:04:05")+"'")
	}

	var list oneCList[oneCInvoice]
	if err := a.get(ctx, "invoices.list", oneCInvoiceSet, params, &list); err != nil {
		return nil, err
	}
	out := make([]integration.Invoice, len(list.Value))
	for i, inv := range list.Value {
		out[i] = toInvoice(inv)
	}
	return out, nil
}

// GetInvoice returns one invoice with its lines, counterparty and product names
func (a *OneCAdapter) GetInvoice(ctx context.Context, id string) (*integration.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: invalid 1C reference %q", integration.ErrRecordNotFound, id)
	}
	params := url.Values{}
	params.Set("$format", "json")
	params.Set("$expand", "Контрагент")

	var doc oneCInvoice
	if err := a.get(ctx, "invoices.get", entity(oneCInvoiceSet, id), params, &doc); err != nil {
		return nil, err
	}
	if doc.Counterparty == nil && refSet(doc.CounterpartyID) {
		var cp oneCCounterparty
		if err := a.get(ctx, "counterparties.get", entity(oneCCounterpartySet, doc.CounterpartyID), jsonFormat(), &cp); err != nil {
			return nil, err
		}
		doc.Counterparty = &cp
	}

	inv := toInvoice(doc)
	products := map[string]oneCProduct{}
	for _, line := range doc.Goods {
		if !refSet(line.ProductID) {
			continue
		}
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		var p oneCProduct
		if err := a.get(ctx, "products.get", entity(oneCProductSet, line.ProductID), jsonFormat(), &p); err != nil {
			return nil, err
		}
		products[line.ProductID] = p
	}
	for i, line := range doc.Goods {
		p := products[line.ProductID]
		name := p.Description
		if name == "" {
			name = line.Content
		}
		number := int(line.LineNumber)
		if number <= 0 {
			number = i + 1
		}
		total := line.Amount.Decimal
		if total.IsZero() {
			total = line.Price.Mul(line.Quantity.Decimal)
		}
		inv.Lines = append(inv.Lines, integration.InvoiceLine{
			ID:          doc.RefKey + "/" + strconv.Itoa(number),
			LineNumber:  number,
			ProductName: name,
			SKU:         p.SKU,
			Quantity:    line.Quantity.Decimal,
			Price:       line.Price.Decimal,
			Total:       total,
			VatRate:     vatRate(line.VatRate),
		})
	}
	return &inv, nil
}

func toInvoice(doc oneCInvoice) integration.Invoice {
	inv := integration.Invoice{
		ID:        doc.RefKey,
		Number:    strings.TrimSpace(doc.Number),
		IssueDate: doc.Date.Ptr(),
		DueDate:   doc.DueDate.Ptr(),
		Total:     doc.Amount.Decimal,
		Currency:  oneCCurrency,
		Status:    doc.status(),
		Comment:   doc.Comment,
	}
	if refSet(doc.CounterpartyID) {
		inv.CompanyID = doc.CounterpartyID
	}
	if cp := doc.Counterparty; cp != nil && refSet(cp.RefKey) {
		title := cp.FullName
		if title == "" {
			title = cp.Description
		}
		inv.Company = &integration.Company{
			ID:      cp.RefKey,
			Title:   strings.TrimSpace(title),
			TaxCode: strings.TrimSpace(cp.INN),
			KPP:     strings.TrimSpace(cp.KPP),
			Email:   cp.contact("АдресЭлектроннойПочты"),
			Phone:   cp.contact("Телефон"),
			Address: cp.contact("Адрес"),
		}
		if inv.CompanyID == "" {
			inv.CompanyID = cp.RefKey
		}
	}
	return inv
}

func entity(set, key string) string {
	return set + "(guid'" + key + "')"
}

func jsonFormat() url.Values {
	return url.Values{"$format": {"json"}}
}

func (a *OneCAdapter) get(ctx context.Context, operation, path string, params url.Values, out any) error {
	return observe(ctx, a.opts.recorder, oneCSystem, operation, func(ctx context.Context) error {
		target := a.baseURL + (&url.URL{Path: path}).EscapedPath() + "?" + params.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("1c: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if a.username != "" {
			req.SetBasicAuth(a.username, a.password)
		}

		body, err := send(a.opts.httpClient, req)
		if he, ok := asHTTPError(err); ok {
			var oe oneCError
			_ = json.Unmarshal(he.body, &oe)
			return statusError(he.status, oe.Error.Message.Value)
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
		}
		return nil
	})
}
