package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/logger"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/repository"
)

// LineItemInput describes one billable entry at creation time
type LineItemInput struct {
	Description string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CreateInvoiceInput collects everything needed to create a draft invoice
type CreateInvoiceInput struct {
	ClientName   string
	ClientEmail  string
	Items        []LineItemInput
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
	DueDays      int // 0 means the configured default
	Notes        string
	Currency     string
}

// LedgerService owns the invoice collection: sequential numbering, status
// transitions, and monetary totals
type LedgerService interface {
	// Create validates the input, assigns the next number for the creation
	// year, and persists a new draft invoice
	Create(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, error)

	// Get retrieves an invoice by id or, failing that, by invoice number
	Get(ctx context.Context, idOrNumber string) (*domain.Invoice, error)

	// Send transitions a draft invoice to sent
	Send(ctx context.Context, idOrNumber string) (*domain.Invoice, error)

	// Pay transitions a sent or overdue invoice to paid, freezing any
	// accrued overdue fee as of the payment time
	Pay(ctx context.Context, idOrNumber string, method string) (*domain.Invoice, error)

	// RefreshOverdue flips every sent invoice past its due date to overdue
	// and returns how many were updated
	RefreshOverdue(ctx context.Context, now time.Time) (int, error)

	// Totals computes the invoice's monetary breakdown at now using the
	// configured daily overdue rate. Pure; no side effects.
	Totals(invoice *domain.Invoice, now time.Time) domain.Totals

	// OverdueFee returns the fee accrued by an unpaid invoice as of now
	OverdueFee(ctx context.Context, idOrNumber string, now time.Time) (decimal.Decimal, error)

	// List retrieves invoices matching the filter
	List(ctx context.Context, filter repository.ListFilter) ([]*domain.Invoice, error)
}

type ledgerService struct {
	repo           repository.InvoiceRepository
	numberPrefix   string
	defaultDueDays int
	dailyRate      decimal.Decimal
	now            func() time.Time
	log            zerolog.Logger
}

// NewLedgerService creates a new ledger service. dailyRate is the daily
// compounding rate for overdue fees (e.g. 0.001).
func NewLedgerService(repo repository.InvoiceRepository, numberPrefix string, defaultDueDays int, dailyRate decimal.Decimal) LedgerService {
	return &ledgerService{
		repo:           repo,
		numberPrefix:   numberPrefix,
		defaultDueDays: defaultDueDays,
		dailyRate:      dailyRate,
		now:            func() time.Time { return time.Now().UTC() },
		log:            logger.WithComponent("ledger"),
	}
}

func (s *ledgerService) Create(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("line_items", "invoice must have at least one line item")
	}

	items := make([]*domain.LineItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, domain.NewLineItem(it.Description, it.Qty, it.UnitPrice))
	}

	dueDays := in.DueDays
	if dueDays == 0 {
		dueDays = s.defaultDueDays
	}

	now := s.now()
	number, err := s.repo.NextNumber(ctx, s.numberPrefix, now.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	invoice := domain.NewInvoice(number, in.ClientName, in.ClientEmail, items, in.TaxRate, in.DiscountRate, dueDays, now)
	invoice.Notes = in.Notes
	if in.Currency != "" {
		invoice.Currency = in.Currency
	}

	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("number", invoice.Number).
		Str("client", invoice.ClientName).
		Msg("invoice created")

	return invoice, nil
}

func (s *ledgerService) Get(ctx context.Context, idOrNumber string) (*domain.Invoice, error) {
	invoice, err := s.repo.GetByID(ctx, idOrNumber)
	if err == nil {
		return invoice, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.repo.GetByNumber(ctx, idOrNumber)
}

func (s *ledgerService) Send(ctx context.Context, idOrNumber string) (*domain.Invoice, error) {
	invoice, err := s.Get(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}

	if !invoice.CanSend() {
		return nil, fmt.Errorf("%w: cannot send invoice in status %q", domain.ErrInvalidTransition, invoice.Status)
	}

	invoice.Status = domain.InvoiceStatusSent
	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.log.Info().Str("number", invoice.Number).Msg("invoice sent")
	return invoice, nil
}

func (s *ledgerService) Pay(ctx context.Context, idOrNumber string, method string) (*domain.Invoice, error) {
	invoice, err := s.Get(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}

	if !invoice.CanPay() {
		return nil, fmt.Errorf("%w: cannot pay invoice in status %q", domain.ErrInvalidTransition, invoice.Status)
	}

	paidAt := s.now()

	// Freeze the fee accrued up to the payment moment. This also covers a
	// sent invoice that slipped past its due date without an explicit
	// refresh.
	fee := invoice.AccruedOverdueFee(paidAt, s.dailyRate)

	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidAt = &paidAt
	invoice.PaymentMethod = method
	invoice.OverdueFee = fee

	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("number", invoice.Number).
		Str("method", method).
		Str("overdue_fee", fee.StringFixed(2)).
		Msg("invoice paid")

	return invoice, nil
}

func (s *ledgerService) RefreshOverdue(ctx context.Context, now time.Time) (int, error) {
	sent := domain.InvoiceStatusSent
	invoices, err := s.repo.List(ctx, repository.ListFilter{Status: &sent})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, invoice := range invoices {
		if !now.After(invoice.DueDate) {
			continue
		}
		invoice.Status = domain.InvoiceStatusOverdue
		if err := s.repo.Update(ctx, invoice); err != nil {
			return updated, err
		}
		updated++
	}

	if updated > 0 {
		s.log.Info().Int("count", updated).Msg("invoices marked overdue")
	}
	return updated, nil
}

func (s *ledgerService) Totals(invoice *domain.Invoice, now time.Time) domain.Totals {
	return invoice.Totals(now, s.dailyRate)
}

func (s *ledgerService) OverdueFee(ctx context.Context, idOrNumber string, now time.Time) (decimal.Decimal, error) {
	invoice, err := s.Get(ctx, idOrNumber)
	if err != nil {
		return decimal.Zero, err
	}
	return invoice.AccruedOverdueFee(now, s.dailyRate), nil
}

func (s *ledgerService) List(ctx context.Context, filter repository.ListFilter) ([]*domain.Invoice, error) {
	return s.repo.List(ctx, filter)
}
