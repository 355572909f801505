package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/repository"
)

// SummaryReport aggregates the ledger over a period
type SummaryReport struct {
	PeriodStart *time.Time
	PeriodEnd   *time.Time

	TotalInvoices int
	TotalInvoiced decimal.Decimal

	DraftCount   int
	SentCount    int
	PaidCount    int
	PaidTotal    decimal.Decimal
	OverdueCount int
	OverdueTotal decimal.Decimal

	// CollectionRate is the paid share of all invoices, in percent
	CollectionRate decimal.Decimal
}

// ReportService produces summaries and exports over the ledger. It holds no
// business rules beyond aggregation; totals come from the domain.
type ReportService interface {
	// Summary aggregates invoices created in [start, end]; nil bounds mean
	// the whole ledger
	Summary(ctx context.Context, start, end *time.Time) (*SummaryReport, error)

	// RevenueByMonth buckets paid invoice totals by payment month
	RevenueByMonth(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error)

	// ExportCSV writes the ledger as CSV: one row per invoice, with header.
	// Line items are not flattened into the export.
	ExportCSV(ctx context.Context, w io.Writer) error
}

type reportService struct {
	repo      repository.InvoiceRepository
	dailyRate decimal.Decimal
	now       func() time.Time
}

// NewReportService creates a new report service
func NewReportService(repo repository.InvoiceRepository, dailyRate decimal.Decimal) ReportService {
	return &reportService{
		repo:      repo,
		dailyRate: dailyRate,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) Summary(ctx context.Context, start, end *time.Time) (*SummaryReport, error) {
	invoices, err := s.repo.List(ctx, repository.ListFilter{CreatedFrom: start, CreatedTo: end})
	if err != nil {
		return nil, err
	}

	report := &SummaryReport{
		PeriodStart:   start,
		PeriodEnd:     end,
		TotalInvoices: len(invoices),
	}

	now := s.now()
	for _, invoice := range invoices {
		total := invoice.Totals(now, s.dailyRate).Total
		report.TotalInvoiced = report.TotalInvoiced.Add(total)

		switch invoice.Status {
		case domain.InvoiceStatusDraft:
			report.DraftCount++
		case domain.InvoiceStatusSent:
			report.SentCount++
		case domain.InvoiceStatusPaid:
			report.PaidCount++
			report.PaidTotal = report.PaidTotal.Add(total)
		case domain.InvoiceStatusOverdue:
			report.OverdueCount++
			report.OverdueTotal = report.OverdueTotal.Add(total)
		}
	}

	if report.TotalInvoices > 0 {
		report.CollectionRate = decimal.NewFromInt(int64(report.PaidCount)).
			Div(decimal.NewFromInt(int64(report.TotalInvoices))).
			Mul(decimal.NewFromInt(100))
	}

	return report, nil
}

func (s *reportService) RevenueByMonth(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error) {
	paid := domain.InvoiceStatusPaid
	invoices, err := s.repo.List(ctx, repository.ListFilter{Status: &paid})
	if err != nil {
		return nil, err
	}

	revenue := make(map[time.Month]decimal.Decimal)
	for m := time.January; m <= time.December; m++ {
		revenue[m] = decimal.Zero
	}

	now := s.now()
	for _, invoice := range invoices {
		if invoice.PaidAt == nil || invoice.PaidAt.Year() != year {
			continue
		}
		month := invoice.PaidAt.Month()
		revenue[month] = revenue[month].Add(invoice.Totals(now, s.dailyRate).Total)
	}

	return revenue, nil
}

var csvHeader = []string{
	"id", "number", "client_name", "client_email", "status",
	"due_date", "created_at", "paid_at", "payment_method",
	"currency", "tax_rate", "discount_rate", "total",
}

func (s *reportService) ExportCSV(ctx context.Context, w io.Writer) error {
	invoices, err := s.repo.List(ctx, repository.ListFilter{})
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("%w: write csv header: %v", domain.ErrPersistence, err)
	}

	now := s.now()
	for _, invoice := range invoices {
		paidAt := ""
		if invoice.PaidAt != nil {
			paidAt = invoice.PaidAt.Format(time.RFC3339)
		}

		row := []string{
			invoice.ID,
			invoice.Number,
			invoice.ClientName,
			invoice.ClientEmail,
			string(invoice.Status),
			invoice.DueDate.Format("2006-01-02"),
			invoice.CreatedAt.Format(time.RFC3339),
			paidAt,
			invoice.PaymentMethod,
			invoice.Currency,
			invoice.TaxRate.String(),
			invoice.DiscountRate.String(),
			invoice.Totals(now, s.dailyRate).Total.StringFixed(2),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("%w: write csv row: %v", domain.ErrPersistence, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: flush csv: %v", domain.ErrPersistence, err)
	}
	return nil
}
