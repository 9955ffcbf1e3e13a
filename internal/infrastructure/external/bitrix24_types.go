package external

import "encoding/json"

// bitrixEnvelope is the common REST response wrapper
type bitrixEnvelope struct {
	Result           json.RawMessage `json:"result"`
	Next             *int            `json:"next,omitempty"`
	Total            int             `json:"total"`
	Error            string          `json:"error,omitempty"`
	ErrorDescription string          `json:"error_description,omitempty"`
}

// bitrixMultiField is one entry of PHONE, EMAIL and similar multi-value fields
type bitrixMultiField struct {
	Value     string `json:"VALUE"`
	ValueType string `json:"VALUE_TYPE"`
}

type bitrixCompany struct {
	ID      string             `json:"ID"`
	Title   string             `json:"TITLE"`
	Address string             `json:"ADDRESS"`
	Phone   []bitrixMultiField `json:"PHONE"`
	Email   []bitrixMultiField `json:"EMAIL"`
}

type bitrixRequisite struct {
	EntityID string `json:"ENTITY_ID"`
	INN      string `json:"RQ_INN"`
	KPP      string `json:"RQ_KPP"`
}

type bitrixInvoice struct {
	ID            string      `json:"ID"`
	AccountNumber string      `json:"ACCOUNT_NUMBER"`
	CompanyID     string      `json:"UF_COMPANY_ID"`
	DateBill      flexTime    `json:"DATE_BILL"`
	DatePayBefore flexTime    `json:"DATE_PAY_BEFORE"`
	Price         flexDecimal `json:"PRICE"`
	Currency      string      `json:"CURRENCY"`
	StatusID      string      `json:"STATUS_ID"`
	Comments      string      `json:"COMMENTS"`
}

func firstValue(fields []bitrixMultiField) string {
	for _, f := range fields {
		if f.Value != "" {
			return f.Value
		}
	}
	return ""
}
