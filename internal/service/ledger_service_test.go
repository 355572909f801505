package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/repository"
)

// mockInvoiceRepo is an in-memory InvoiceRepository for service tests
type mockInvoiceRepo struct {
	invoices map[string]*domain.Invoice
	seq      map[int]int

	createErr error
	updateErr error
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{
		invoices: make(map[string]*domain.Invoice),
		seq:      make(map[int]int),
	}
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if invoice, ok := m.invoices[id]; ok {
		return invoice, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

func (m *mockInvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	for _, invoice := range m.invoices {
		if invoice.Number == number {
			return invoice, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, number)
}

func (m *mockInvoiceRepo) List(ctx context.Context, filter repository.ListFilter) ([]*domain.Invoice, error) {
	var out []*domain.Invoice
	for _, invoice := range m.invoices {
		if filter.Status != nil && invoice.Status != *filter.Status {
			continue
		}
		if filter.CreatedFrom != nil && invoice.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && invoice.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		out = append(out, invoice)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.invoices[invoice.ID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, invoice.ID)
	}
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *mockInvoiceRepo) NextNumber(ctx context.Context, prefix string, year int) (string, error) {
	m.seq[year]++
	return fmt.Sprintf("%s-%d-%05d", prefix, year, m.seq[year]), nil
}

func mustDecimal(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newTestLedger(repo repository.InvoiceRepository, now time.Time) *ledgerService {
	svc := NewLedgerService(repo, "INV", 30, mustDecimal("0.001")).(*ledgerService)
	svc.now = func() time.Time { return now }
	return svc
}

func validInput() CreateInvoiceInput {
	return CreateInvoiceInput{
		ClientName:  "Acme Corp",
		ClientEmail: "billing@acme.test",
		Items: []LineItemInput{
			{Description: "Consulting", Qty: mustDecimal("10"), UnitPrice: mustDecimal("150")},
		},
		TaxRate: mustDecimal("0.10"),
	}
}

func TestCreateInvoice(t *testing.T) {
	repo := newMockInvoiceRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestLedger(repo, now)

	invoice, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-00001", invoice.Number)
	assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	assert.NotEmpty(t, invoice.ID)
	assert.Equal(t, "USD", invoice.Currency)
	assert.Equal(t, now.AddDate(0, 0, 30), invoice.DueDate)
	assert.Len(t, repo.invoices, 1)
}

func TestCreateInvoiceSequentialNumbers(t *testing.T) {
	repo := newMockInvoiceRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestLedger(repo, now)

	first, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-00001", first.Number)
	assert.Equal(t, "INV-2026-00002", second.Number)
}

func TestCreateInvoiceNoItems(t *testing.T) {
	repo := newMockInvoiceRepo()
	svc := newTestLedger(repo, time.Now().UTC())

	in := validInput()
	in.Items = nil

	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, repo.invoices)
}

func TestCreateInvoiceBadRate(t *testing.T) {
	repo := newMockInvoiceRepo()
	svc := newTestLedger(repo, time.Now().UTC())

	in := validInput()
	in.TaxRate = mustDecimal("1.5")

	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestGetByIDOrNumber(t *testing.T) {
	repo := newMockInvoiceRepo()
	svc := newTestLedger(repo, time.Now().UTC())
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	byID, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	byNumber, err := svc.Get(ctx, created.Number)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byNumber.ID)

	_, err = svc.Get(ctx, "INV-1999-00001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSendInvoice(t *testing.T) {
	repo := newMockInvoiceRepo()
	svc := newTestLedger(repo, time.Now().UTC())
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	sent, err := svc.Send(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, sent.Status)

	// Already sent
	_, err = svc.Send(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPayDraftFails(t *testing.T) {
	repo := newMockInvoiceRepo()
	svc := newTestLedger(repo, time.Now().UTC())
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Pay(ctx, created.ID, "bank_transfer")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPayPaidFails(t *testing.T) {
	repo := newMockInvoiceRepo()
	svc := newTestLedger(repo, time.Now().UTC())
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Send(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.Pay(ctx, created.ID, "card")
	require.NoError(t, err)

	_, err = svc.Pay(ctx, created.ID, "card")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPayOnTime(t *testing.T) {
	repo := newMockInvoiceRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestLedger(repo, now)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Send(ctx, created.ID)
	require.NoError(t, err)

	paid, err := svc.Pay(ctx, created.ID, "bank_transfer")
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, now, *paid.PaidAt)
	assert.Equal(t, "bank_transfer", paid.PaymentMethod)
	assert.True(t, paid.OverdueFee.IsZero())
}

func TestPayLateFreezesFee(t *testing.T) {
	repo := newMockInvoiceRepo()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestLedger(repo, start)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Send(ctx, created.ID)
	require.NoError(t, err)

	// Pay 5 whole days past the due date
	payTime := created.DueDate.AddDate(0, 0, 5).Add(time.Hour)
	svc.now = func() time.Time { return payTime }

	paid, err := svc.Pay(ctx, created.ID, "check")
	require.NoError(t, err)

	// base 1650, fee = 1650 * ((1.001)^5 - 1)
	expected := mustDecimal("1650").Mul(mustDecimal("1.001").Pow(mustDecimal("5")).Sub(mustDecimal("1")))
	assert.True(t, paid.OverdueFee.Equal(expected), "fee = %s, want %s", paid.OverdueFee, expected)

	// The frozen fee must not grow afterwards
	muchLater := payTime.AddDate(0, 3, 0)
	totals := svc.Totals(paid, muchLater)
	assert.True(t, totals.OverdueFee.Equal(expected))
}

func TestRefreshOverdue(t *testing.T) {
	repo := newMockInvoiceRepo()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestLedger(repo, start)
	ctx := context.Background()

	// Two sent invoices, one draft
	a, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	b, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	c, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Send(ctx, a.ID)
	require.NoError(t, err)
	_, err = svc.Send(ctx, b.ID)
	require.NoError(t, err)

	// Before the due date nothing changes
	count, err := svc.RefreshOverdue(ctx, start)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Past the due date both sent invoices flip
	pastDue := start.AddDate(0, 0, 31)
	count, err = svc.RefreshOverdue(ctx, pastDue)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	refreshedA, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, refreshedA.Status)

	refreshedC, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusDraft, refreshedC.Status)

	// Idempotent
	count, err = svc.RefreshOverdue(ctx, pastDue)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOverdueFeeQuery(t *testing.T) {
	repo := newMockInvoiceRepo()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestLedger(repo, start)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Send(ctx, created.ID)
	require.NoError(t, err)

	fee, err := svc.OverdueFee(ctx, created.Number, start)
	require.NoError(t, err)
	assert.True(t, fee.IsZero())

	fee, err = svc.OverdueFee(ctx, created.Number, created.DueDate.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.True(t, fee.IsPositive())
}
