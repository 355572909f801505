package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/db"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
)

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	db *db.DB
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database}
}

const invoiceColumns = `id, number, client_name, client_email, tax_rate, discount_rate,
	       status, due_date, created_at, updated_at, paid_at, payment_method,
	       overdue_fee, notes, currency`

// Create inserts a new invoice and its line items atomically
func (r *InvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("begin transaction", err)
	}
	defer tx.Rollback()

	var paidAt interface{}
	if invoice.PaidAt != nil {
		paidAt = invoice.PaidAt.Format(timeLayout)
	}
	var paymentMethod interface{}
	if invoice.PaymentMethod != "" {
		paymentMethod = invoice.PaymentMethod
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (
			id, number, client_name, client_email, tax_rate, discount_rate,
			status, due_date, created_at, updated_at, paid_at, payment_method,
			overdue_fee, notes, currency
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		invoice.ID,
		invoice.Number,
		invoice.ClientName,
		invoice.ClientEmail,
		invoice.TaxRate.String(),
		invoice.DiscountRate.String(),
		string(invoice.Status),
		invoice.DueDate.Format(timeLayout),
		invoice.CreatedAt.Format(timeLayout),
		invoice.UpdatedAt.Format(timeLayout),
		paidAt,
		paymentMethod,
		invoice.OverdueFee.String(),
		invoice.Notes,
		invoice.Currency,
	)
	if err != nil {
		return persistErr("create invoice", err)
	}

	for _, item := range invoice.LineItems {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO line_items (id, invoice_id, description, qty, unit_price, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			item.ID,
			invoice.ID,
			item.Description,
			item.Qty.String(),
			item.UnitPrice.String(),
			item.Position,
		)
		if err != nil {
			return persistErr("create line item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistErr("commit invoice", err)
	}
	return nil
}

// GetByID retrieves an invoice and its line items by id
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByNumber retrieves an invoice by its invoice number
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.getWhere(ctx, "number = ?", number)
}

func (r *InvoiceRepo) getWhere(ctx context.Context, where string, arg interface{}) (*domain.Invoice, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE `+where, arg)

	invoice, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %v", domain.ErrNotFound, arg)
		}
		return nil, err
	}

	if invoice.LineItems, err = r.loadLineItems(ctx, invoice.ID); err != nil {
		return nil, err
	}
	return invoice, nil
}

// List retrieves invoices matching the filter, newest first
func (r *InvoiceRepo) List(ctx context.Context, filter ListFilter) ([]*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.Client != "" {
		query += " AND client_name LIKE ?"
		args = append(args, "%"+filter.Client+"%")
	}
	if filter.CreatedFrom != nil {
		query += " AND created_at >= ?"
		args = append(args, filter.CreatedFrom.Format(timeLayout))
	}
	if filter.CreatedTo != nil {
		query += " AND created_at <= ?"
		args = append(args, filter.CreatedTo.Format(timeLayout))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list invoices", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate invoices", err)
	}

	for _, invoice := range invoices {
		if invoice.LineItems, err = r.loadLineItems(ctx, invoice.ID); err != nil {
			return nil, err
		}
	}

	return invoices, nil
}

// Update writes the invoice's mutable fields in a single statement
func (r *InvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	var paidAt interface{}
	if invoice.PaidAt != nil {
		paidAt = invoice.PaidAt.Format(timeLayout)
	}
	var paymentMethod interface{}
	if invoice.PaymentMethod != "" {
		paymentMethod = invoice.PaymentMethod
	}

	invoice.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = ?, paid_at = ?, payment_method = ?, overdue_fee = ?,
		    notes = ?, updated_at = ?
		WHERE id = ?
	`,
		string(invoice.Status),
		paidAt,
		paymentMethod,
		invoice.OverdueFee.String(),
		invoice.Notes,
		invoice.UpdatedAt.Format(timeLayout),
		invoice.ID,
	)
	if err != nil {
		return persistErr("update invoice", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return persistErr("rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, invoice.ID)
	}
	return nil
}

// NextNumber generates the next invoice number in format "PREFIX-YYYY-NNNNN".
// The five-digit sequence resets each calendar year and continues from the
// highest number already issued for that year.
func (r *InvoiceRepo) NextNumber(ctx context.Context, prefix string, year int) (string, error) {
	query := `
		SELECT number
		FROM invoices
		WHERE number LIKE ?
		ORDER BY number DESC
		LIMIT 1
	`

	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)
	var lastNumber string

	err := r.db.QueryRowContext(ctx, query, pattern).Scan(&lastNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// First invoice of the year
			return fmt.Sprintf("%s-%d-%05d", prefix, year, 1), nil
		}
		return "", persistErr("get last invoice number", err)
	}

	var lastYear, lastSeq int
	if _, err := fmt.Sscanf(lastNumber, prefix+"-%d-%d", &lastYear, &lastSeq); err != nil {
		return "", fmt.Errorf("malformed invoice number %q: %w", lastNumber, err)
	}

	return fmt.Sprintf("%s-%d-%05d", prefix, year, lastSeq+1), nil
}

func (r *InvoiceRepo) loadLineItems(ctx context.Context, invoiceID string) ([]*domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, invoice_id, description, qty, unit_price, position
		FROM line_items
		WHERE invoice_id = ?
		ORDER BY position
	`, invoiceID)
	if err != nil {
		return nil, persistErr("get line items", err)
	}
	defer rows.Close()

	items := make([]*domain.LineItem, 0)
	for rows.Next() {
		item := &domain.LineItem{}
		var qty, unitPrice string

		err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &qty, &unitPrice, &item.Position)
		if err != nil {
			return nil, persistErr("scan line item", err)
		}

		if item.Qty, err = parseDecimal(qty); err != nil {
			return nil, fmt.Errorf("failed to parse qty: %w", err)
		}
		if item.UnitPrice, err = parseDecimal(unitPrice); err != nil {
			return nil, fmt.Errorf("failed to parse unit_price: %w", err)
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate line items", err)
	}

	return items, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(s scanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var taxRate, discountRate, status, dueDate, createdAt, updatedAt, overdueFee string
	var paidAt, paymentMethod sql.NullString

	err := s.Scan(
		&invoice.ID,
		&invoice.Number,
		&invoice.ClientName,
		&invoice.ClientEmail,
		&taxRate,
		&discountRate,
		&status,
		&dueDate,
		&createdAt,
		&updatedAt,
		&paidAt,
		&paymentMethod,
		&overdueFee,
		&invoice.Notes,
		&invoice.Currency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, persistErr("scan invoice", err)
	}

	invoice.Status = domain.InvoiceStatus(status)

	if invoice.TaxRate, err = parseDecimal(taxRate); err != nil {
		return nil, fmt.Errorf("failed to parse tax_rate: %w", err)
	}
	if invoice.DiscountRate, err = parseDecimal(discountRate); err != nil {
		return nil, fmt.Errorf("failed to parse discount_rate: %w", err)
	}
	if invoice.OverdueFee, err = parseDecimal(overdueFee); err != nil {
		return nil, fmt.Errorf("failed to parse overdue_fee: %w", err)
	}
	if invoice.DueDate, err = parseTime(dueDate); err != nil {
		return nil, fmt.Errorf("failed to parse due_date: %w", err)
	}
	if invoice.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if invoice.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if paidAt.Valid {
		t, err := parseTime(paidAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse paid_at: %w", err)
		}
		invoice.PaidAt = &t
	}
	if paymentMethod.Valid {
		invoice.PaymentMethod = paymentMethod.String
	}

	return invoice, nil
}
