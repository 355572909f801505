package repository

import (
	"context"
	"time"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
)

// ListFilter narrows down invoice listings. Zero values mean "no filter".
type ListFilter struct {
	Status      *domain.InvoiceStatus
	Client      string // substring match on client name
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// InvoiceRepository manages invoice persistence
type InvoiceRepository interface {
	// Create inserts the invoice and its line items in one transaction.
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Invoice, error)
	// Update writes the invoice's mutable fields in a single statement, so a
	// lifecycle transition either fully applies or not at all.
	Update(ctx context.Context, invoice *domain.Invoice) error
	// NextNumber returns the next sequential invoice number for the year,
	// format PREFIX-YYYY-NNNNN. The sequence resets each calendar year.
	NextNumber(ctx context.Context, prefix string, year int) (string, error)
}
