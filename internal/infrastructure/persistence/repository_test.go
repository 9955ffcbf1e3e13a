package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/erp/factory/internal/domain/catalog"
	"github.com/erp/factory/internal/domain/invoicing"
	"github.com/erp/factory/internal/domain/partner"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/domain/trade"
	"github.com/erp/factory/internal/domain/workforce"
)

func saveProduct(t *testing.T, db *gorm.DB, sku, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, name, "pcs")
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

func saveClient(t *testing.T, db *gorm.DB, name string, ref shared.ExternalRef) *partner.Client {
	t.Helper()
	c, err := partner.NewClient(name, partner.ClientTypeCustomer, ref)
	require.NoError(t, err)
	require.NoError(t, NewGormClientRepository(db).Save(context.Background(), c))
	return c
}

func TestProductRepository_FilterSortPage(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	saveProduct(t, db, "B-200", "beta frame")
	saveProduct(t, db, "A-100", "Alpha frame")
	saveProduct(t, db, "C-300", "Gamma bolt")

	t.Run("search is case insensitive", func(t *testing.T) {
		f := shared.Filter{Page: 1, PageSize: 10, Search: "FRAME"}
		got, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		n, err := repo.Count(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("default sort is name ascending", func(t *testing.T) {
		got, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "Alpha frame", got[0].Name)
		assert.Equal(t, "beta frame", got[1].Name)
		assert.Equal(t, "Gamma bolt", got[2].Name)
	})

	t.Run("sort by sku descending with paging", func(t *testing.T) {
		got, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 2, OrderBy: "sku", OrderDir: "desc"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "A-100", got[0].SKU)
	})

	t.Run("unpaged returns everything", func(t *testing.T) {
		got, err := repo.FindAll(ctx, shared.Filter{Page: 1})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		got, err := repo.FindAll(ctx, shared.Filter{Page: 1, Search: "%"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestProductRepository_DuplicateSKU(t *testing.T) {
	db := newTestDB(t)
	saveProduct(t, db, "DUP-1", "First")

	p, err := catalog.NewProduct("DUP-1", "Second", "pcs")
	require.NoError(t, err)
	err = NewGormProductRepository(db).Save(context.Background(), p)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestOrderRepository_SaveReplacesItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	frame := saveProduct(t, db, "F-1", "Frame")
	wheel := saveProduct(t, db, "W-1", "Wheel")

	order, err := trade.NewOrder("ORD-1", nil)
	require.NoError(t, err)
	_, err = order.AddItem(frame.ID, decimal.NewFromInt(2), decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = order.AddItem(wheel.ID, decimal.NewFromInt(4), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, order))

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 2)
	assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromInt(240)))

	loaded.ClearItems()
	_, err = loaded.AddItem(wheel.ID, decimal.NewFromInt(1), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	again, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.Equal(t, wheel.ID, again.Items[0].ProductID)

	used, err := repo.ExistsByProduct(ctx, frame.ID)
	require.NoError(t, err)
	assert.False(t, used)
	used, err = repo.ExistsByProduct(ctx, wheel.ID)
	require.NoError(t, err)
	assert.True(t, used)
}

func TestOrderRepository_OrderedProductsSkipsCancelled(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	frame := saveProduct(t, db, "F-1", "Frame")

	for i, status := range []trade.OrderStatus{trade.OrderStatusPending, trade.OrderStatusConfirmed, trade.OrderStatusCancelled} {
		o, err := trade.NewOrder("ORD-"+string(rune('A'+i)), nil)
		require.NoError(t, err)
		_, err = o.AddItem(frame.ID, decimal.NewFromInt(3), decimal.NewFromInt(5))
		require.NoError(t, err)
		require.NoError(t, o.SetStatus(status))
		require.NoError(t, repo.Save(ctx, o))
	}

	demand, err := repo.OrderedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, demand, 1)
	assert.Equal(t, frame.ID, demand[0].ProductID)
	assert.True(t, demand[0].Quantity.Equal(decimal.NewFromInt(6)))
	assert.True(t, demand[0].TotalAmount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 2, demand[0].OrderCount)
}

func TestOrderRepository_DeleteMissing(t *testing.T) {
	db := newTestDB(t)
	err := NewGormOrderRepository(db).Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClientRepository_ExternalRefAndTaxCode(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	ref := shared.ExternalRef{ExternalID: "42", Source: shared.SourceBitrix24}
	linked := saveClient(t, db, "Linked LLC", ref)

	found, err := repo.FindByExternalRef(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, linked.ID, found.ID)

	_, err = repo.FindByExternalRef(ctx, shared.ExternalRef{ExternalID: "42", Source: shared.Source1C})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	dup, err := partner.NewClient("Other", partner.ClientTypeCustomer, ref)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)

	older, err := partner.NewClient("Older", partner.ClientTypeCustomer, shared.ManualRef())
	require.NoError(t, err)
	require.NoError(t, older.SetTaxCodes("7701234567", ""))
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, older))

	newer, err := partner.NewClient("Newer", partner.ClientTypeCustomer, shared.ManualRef())
	require.NoError(t, err)
	require.NoError(t, newer.SetTaxCodes("7701234567", ""))
	require.NoError(t, repo.Save(ctx, newer))

	byTax, err := repo.FindByTaxCode(ctx, "7701234567")
	require.NoError(t, err)
	assert.Equal(t, older.ID, byTax.ID)

	_, err = repo.FindByTaxCode(ctx, "  ")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	counts, err := repo.CountBySource(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.SourceBitrix24])
	assert.Equal(t, int64(2), counts[shared.SourceManual])
}

func TestClientRepository_FindUnlinkedByTaxCode(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	linked, err := partner.NewClient("Linked", partner.ClientTypeCustomer, shared.ExternalRef{ExternalID: "b-1", Source: shared.SourceBitrix24})
	require.NoError(t, err)
	require.NoError(t, linked.SetTaxCodes("5001112223", ""))
	linked.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.Save(ctx, linked))

	_, err = repo.FindUnlinkedByTaxCode(ctx, "5001112223")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	manual, err := partner.NewClient("Manual", partner.ClientTypeCustomer, shared.ManualRef())
	require.NoError(t, err)
	require.NoError(t, manual.SetTaxCodes("5001112223", ""))
	require.NoError(t, repo.Save(ctx, manual))

	got, err := repo.FindUnlinkedByTaxCode(ctx, "5001112223")
	require.NoError(t, err)
	assert.Equal(t, manual.ID, got.ID)

	byTax, err := repo.FindByTaxCode(ctx, "5001112223")
	require.NoError(t, err)
	assert.Equal(t, linked.ID, byTax.ID)
}

func TestClientRepository_ManualClientsShareEmptyExternalID(t *testing.T) {
	db := newTestDB(t)
	saveClient(t, db, "One", shared.ManualRef())
	saveClient(t, db, "Two", shared.ManualRef())

	n, err := NewGormClientRepository(db).Count(context.Background(), shared.Filter{Filters: map[string]interface{}{"source": "manual"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestClientRepository_DeleteRemovesContacts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	client := saveClient(t, db, "Acme", shared.ManualRef())

	contacts := NewGormContactRepository(db)
	c, err := partner.NewContact(client.ID, "Ann", "Lee", shared.ManualRef())
	require.NoError(t, err)
	require.NoError(t, c.SetDetails("Buyer", "Ann@Example.com", ""))
	require.NoError(t, contacts.Save(ctx, c))

	byEmail, err := contacts.FindByClientAndEmail(ctx, client.ID, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byEmail.ID)

	require.NoError(t, NewGormClientRepository(db).Delete(ctx, client.ID))
	_, err = contacts.FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceRepository_ItemsAndLastSynced(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	invoices := NewGormInvoiceRepository(db)
	items := NewGormInvoiceItemRepository(db)
	client := saveClient(t, db, "Acme", shared.ManualRef())

	last, err := invoices.LastSyncedAt(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	inv, err := invoicing.NewInvoice("INV-7", client.ID, shared.ExternalRef{ExternalID: "7", Source: shared.Source1C})
	require.NoError(t, err)
	require.NoError(t, invoices.Save(ctx, inv))

	line, err := invoicing.NewInvoiceItem(inv.ID, 1, "Frame", shared.ExternalRef{Source: shared.Source1C})
	require.NoError(t, err)
	require.NoError(t, line.SetAmounts(decimal.NewFromInt(2), decimal.NewFromInt(50), decimal.Zero))
	require.NoError(t, items.Save(ctx, line))

	got, err := items.FindByInvoiceAndLine(ctx, inv.ID, 1)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(100)))

	dupLine, err := invoicing.NewInvoiceItem(inv.ID, 1, "Other", shared.ManualRef())
	require.NoError(t, err)
	assert.ErrorIs(t, items.Save(ctx, dupLine), shared.ErrAlreadyExists)

	last, err = invoices.LastSyncedAt(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)

	require.NoError(t, invoices.Delete(ctx, inv.ID))
	lines, err := items.FindByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestWorkerRepository_EmployeeNumber(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormWorkerRepository(db)
	ctx := context.Background()

	w, err := workforce.NewWorker("Ivan", "Petrov")
	require.NoError(t, err)
	w.EmployeeNumber = "E-001"
	require.NoError(t, repo.Save(ctx, w))

	exists, err := repo.ExistsByEmployeeNumber(ctx, "E-001", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmployeeNumber(ctx, "E-001", &w.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewGormProductRepository(db)
	boom := errors.New("boom")

	err := NewTxManager(db).WithinTx(ctx, func(ctx context.Context) error {
		p, err := catalog.NewProduct("TX-1", "In tx", "pcs")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.FindBySKU(ctx, "TX-1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceRepository_FindByNumberForSource(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	invoices := NewGormInvoiceRepository(db)
	client := saveClient(t, db, "Acme", shared.ManualRef())
	created := time.Now().Add(-time.Hour).Truncate(time.Second)

	save := func(id string, ref shared.ExternalRef, at time.Time) *invoicing.Invoice {
		t.Helper()
		inv, err := invoicing.NewInvoice("7", client.ID, ref)
		require.NoError(t, err)
		inv.ID = uuid.MustParse(id)
		inv.CreatedAt = at
		require.NoError(t, invoices.Save(ctx, inv))
		return inv
	}

	fromCRM := save("00000000-0000-0000-0000-000000000001", shared.ExternalRef{ExternalID: "B-1", Source: shared.SourceBitrix24}, created.Add(-time.Hour))

	_, err := invoices.FindByNumberForSource(ctx, "7", shared.Source1C)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	got, err := invoices.FindByNumberForSource(ctx, "7", shared.SourceBitrix24)
	require.NoError(t, err)
	assert.Equal(t, fromCRM.ID, got.ID)

	// same timestamp: the lower id wins
	second := save("00000000-0000-0000-0000-000000000003", shared.ManualRef(), created)
	first := save("00000000-0000-0000-0000-000000000002", shared.ManualRef(), created)
	for i := 0; i < 3; i++ {
		got, err = invoices.FindByNumberForSource(ctx, "7", shared.Source1C)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
	}
	assert.NotEqual(t, second.ID, got.ID)
}
