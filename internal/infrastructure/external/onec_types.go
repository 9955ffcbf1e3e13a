package external

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// OData entity sets of the standard accounting configuration
const (
	oneCInvoiceSet      = "Document_СчетНаОплатуПокупателю"
	oneCCounterpartySet = "Catalog_Контрагенты"
	oneCProductSet      = "Catalog_Номенклатура"
	oneCEmptyRef        = "00000000-0000-0000-0000-000000000000"
)

type oneCList[T any] struct {
	Value []T `json:"value"`
}

type oneCError struct {
	Error struct {
		Code    string `json:"code"`
		Message struct {
			Value string `json:"value"`
		} `json:"message"`
	} `json:"odata.error"`
}

type oneCInvoice struct {
	RefKey         string            `json:"Ref_Key"`
	Number         string            `json:"Number"`
	Date           flexTime          `json:"Date"`
	DueDate        flexTime          `json:"СрокОплаты"`
	CounterpartyID string            `json:"Контрагент_Key"`
	Counterparty   *oneCCounterparty `json:"Контрагент,omitempty"`
	Amount         flexDecimal       `json:"СуммаДокумента"`
	Comment        string            `json:"Комментарий"`
	Status         string            `json:"Статус"`
	Posted         bool              `json:"Posted"`
	DeletionMark   bool              `json:"DeletionMark"`
	Goods          []oneCInvoiceLine `json:"Товары"`
}

type oneCInvoiceLine struct {
	LineNumber flexInt     `json:"LineNumber"`
	ProductID  string      `json:"Номенклатура_Key"`
	Content    string      `json:"Содержание"`
	Quantity   flexDecimal `json:"Количество"`
	Price      flexDecimal `json:"Цена"`
	Amount     flexDecimal `json:"Сумма"`
	VatAmount  flexDecimal `json:"СуммаНДС"`
	VatRate    string      `json:"СтавкаНДС"`
}

type oneCContact struct {
	Type  string `json:"Тип"`
	Value string `json:"Представление"`
}

type oneCCounterparty struct {
	RefKey      string        `json:"Ref_Key"`
	Description string        `json:"Description"`
	FullName    string        `json:"НаименованиеПолное"`
	INN         string        `json:"ИНН"`
	KPP         string        `json:"КПП"`
	Contacts    []oneCContact `json:"КонтактнаяИнформация"`
}

type oneCProduct struct {
	RefKey      string `json:"Ref_Key"`
	Description string `json:"Description"`
	SKU         string `json:"Артикул"`
}

func (c oneCCounterparty) contact(kind string) string {
	for _, ci := range c.Contacts {
		if ci.Type == kind && ci.Value != "" {
			return ci.Value
		}
	}
	return ""
}

// oneCStatuses normalizes payment state enum names
var oneCStatusNames = map[string]string{
	"неоплачен":       "notpaid",
	"оплачен":         "paid",
	"частичнооплачен": "partiallypaid",
	"отменен":         "отменен",
	"отменён":         "отменен",
	"черновик":        "черновик",
	"выставлен":       "выставлен",
	"просрочен":       "просрочен",
}

// status derives the external status of a document. Deleted documents are
// cancelled and unposted ones are drafts.
func (inv oneCInvoice) status() string {
	switch {
	case inv.DeletionMark:
		return "отменен"
	case inv.Status != "":
		key := strings.ToLower(strings.ReplaceAll(inv.Status, " ", ""))
		if s, ok := oneCStatusNames[key]; ok {
			return s
		}
		return inv.Status
	case !inv.Posted:
		return "черновик"
	default:
		return "выставлен"
	}
}

// vatRate parses rate enums such as НДС20, НДС10_110 and БезНДС
func vatRate(enum string) decimal.Decimal {
	s := strings.TrimPrefix(enum, "НДС")
	if s == enum {
		return decimal.Zero
	}
	if i := strings.IndexByte(s, '_'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(n))
}

func refSet(key string) bool {
	return key != "" && key != oneCEmptyRef
}
