package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func testInvoice(taxRate, discountRate string, items ...*LineItem) *Invoice {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	return NewInvoice("INV-2026-00001", "Acme Corp", "billing@acme.test",
		items, d(taxRate), d(discountRate), 30, now)
}

func TestTotalsBasic(t *testing.T) {
	inv := testInvoice("0.10", "0",
		NewLineItem("Consulting", d("10"), d("150")),
	)

	totals := inv.Totals(inv.CreatedAt, d("0.001"))

	assert.True(t, totals.Subtotal.Equal(d("1500")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, totals.TaxAmount.Equal(d("150")), "tax = %s", totals.TaxAmount)
	assert.True(t, totals.OverdueFee.IsZero())
	assert.True(t, totals.Total.Equal(d("1650")), "total = %s", totals.Total)
}

func TestTotalsWithDiscount(t *testing.T) {
	inv := testInvoice("0.10", "0.20",
		NewLineItem("Consulting", d("10"), d("150")),
	)

	totals := inv.Totals(inv.CreatedAt, d("0.001"))

	assert.True(t, totals.DiscountAmount.Equal(d("300")), "discount = %s", totals.DiscountAmount)
	assert.True(t, totals.TaxableBase.Equal(d("1200")), "taxable = %s", totals.TaxableBase)
	assert.True(t, totals.TaxAmount.Equal(d("120")), "tax = %s", totals.TaxAmount)
	assert.True(t, totals.BaseTotal.Equal(d("1320")), "base = %s", totals.BaseTotal)
	assert.True(t, totals.Total.Equal(d("1320")), "total = %s", totals.Total)
}

func TestTotalsMultipleItems(t *testing.T) {
	inv := testInvoice("0", "0",
		NewLineItem("Design", d("4"), d("120.50")),
		NewLineItem("Development", d("12.5"), d("95")),
		NewLineItem("Hosting", d("1"), d("29.99")),
	)

	totals := inv.Totals(inv.CreatedAt, d("0.001"))

	// 482 + 1187.5 + 29.99
	assert.True(t, totals.Subtotal.Equal(d("1699.49")), "subtotal = %s", totals.Subtotal)
}

func TestTotalsOrderIndependent(t *testing.T) {
	a := NewLineItem("Design", d("4"), d("120.50"))
	b := NewLineItem("Development", d("12.5"), d("95"))
	c := NewLineItem("Hosting", d("1"), d("29.99"))

	inv1 := testInvoice("0.0825", "0.10", a, b, c)
	inv2 := testInvoice("0.0825", "0.10", c, a, b)

	rate := d("0.001")
	t1 := inv1.Totals(inv1.CreatedAt, rate)
	t2 := inv2.Totals(inv2.CreatedAt, rate)

	assert.True(t, t1.Total.Equal(t2.Total), "%s != %s", t1.Total, t2.Total)
	assert.True(t, t1.TaxAmount.Equal(t2.TaxAmount))
}

func TestOverdueFeeCompoundsDaily(t *testing.T) {
	inv := testInvoice("0.10", "0.20",
		NewLineItem("Consulting", d("10"), d("150")),
	)
	inv.Status = InvoiceStatusSent

	rate := d("0.001")
	fiveDaysLate := inv.DueDate.AddDate(0, 0, 5).Add(time.Hour)

	totals := inv.Totals(fiveDaysLate, rate)

	// 1320 * ((1.001)^5 - 1)
	expected := d("1320").Mul(d("1.001").Pow(d("5")).Sub(d("1")))
	assert.True(t, totals.OverdueFee.Equal(expected), "fee = %s, want %s", totals.OverdueFee, expected)
	assert.Equal(t, "6.61", totals.OverdueFee.StringFixed(2))
	assert.True(t, totals.Total.Equal(d("1320").Add(expected)))
}

func TestOverdueFeeZeroBeforeDue(t *testing.T) {
	inv := testInvoice("0.10", "0",
		NewLineItem("Consulting", d("10"), d("150")),
	)
	inv.Status = InvoiceStatusSent

	rate := d("0.001")

	assert.True(t, inv.Totals(inv.DueDate, rate).OverdueFee.IsZero())
	assert.True(t, inv.Totals(inv.DueDate.Add(-time.Hour), rate).OverdueFee.IsZero())

	// Within the first day past due, zero whole days have elapsed
	assert.True(t, inv.Totals(inv.DueDate.Add(time.Hour), rate).OverdueFee.IsZero())
}

func TestOverdueFeeIncreasesWithDays(t *testing.T) {
	inv := testInvoice("0", "0",
		NewLineItem("Consulting", d("10"), d("150")),
	)
	inv.Status = InvoiceStatusOverdue

	rate := d("0.001")
	prev := decimal.Zero
	for days := 1; days <= 30; days++ {
		at := inv.DueDate.AddDate(0, 0, days)
		fee := inv.Totals(at, rate).OverdueFee
		require.True(t, fee.GreaterThan(prev), "fee at day %d (%s) not greater than %s", days, fee, prev)
		prev = fee
	}
}

func TestTotalsPure(t *testing.T) {
	inv := testInvoice("0.10", "0.20",
		NewLineItem("Consulting", d("10"), d("150")),
	)
	inv.Status = InvoiceStatusOverdue

	rate := d("0.001")
	at := inv.DueDate.AddDate(0, 0, 7)

	first := inv.Totals(at, rate)
	second := inv.Totals(at, rate)

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, inv.OverdueFee.IsZero(), "Totals must not mutate the invoice")
}

func TestTotalsPaidUsesFrozenFee(t *testing.T) {
	inv := testInvoice("0", "0",
		NewLineItem("Consulting", d("10"), d("150")),
	)
	paidAt := inv.DueDate.AddDate(0, 0, 3)
	inv.Status = InvoiceStatusPaid
	inv.PaidAt = &paidAt
	inv.OverdueFee = d("4.50")

	// Well past the payment date the fee must not keep accruing
	later := inv.DueDate.AddDate(0, 0, 90)
	totals := inv.Totals(later, d("0.001"))

	assert.True(t, totals.OverdueFee.Equal(d("4.50")), "fee = %s", totals.OverdueFee)
	assert.True(t, totals.Total.Equal(d("1504.50")), "total = %s", totals.Total)
}

func TestDaysOverdue(t *testing.T) {
	inv := testInvoice("0", "0", NewLineItem("x", d("1"), d("1")))

	assert.EqualValues(t, 0, inv.DaysOverdue(inv.DueDate))
	assert.EqualValues(t, 0, inv.DaysOverdue(inv.DueDate.Add(23*time.Hour)))
	assert.EqualValues(t, 1, inv.DaysOverdue(inv.DueDate.Add(25*time.Hour)))
	assert.EqualValues(t, 10, inv.DaysOverdue(inv.DueDate.AddDate(0, 0, 10)))
	assert.EqualValues(t, 0, inv.DaysOverdue(inv.DueDate.AddDate(0, 0, -5)))
}

func TestInvoiceValidate(t *testing.T) {
	valid := testInvoice("0.10", "0", NewLineItem("Consulting", d("1"), d("100")))
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Invoice)
	}{
		{"no items", func(i *Invoice) { i.LineItems = nil }},
		{"blank client name", func(i *Invoice) { i.ClientName = "  " }},
		{"blank client email", func(i *Invoice) { i.ClientEmail = "" }},
		{"negative tax rate", func(i *Invoice) { i.TaxRate = d("-0.1") }},
		{"tax rate over 1", func(i *Invoice) { i.TaxRate = d("1.5") }},
		{"discount rate over 1", func(i *Invoice) { i.DiscountRate = d("2") }},
		{"paid without paid_at", func(i *Invoice) { i.Status = InvoiceStatusPaid }},
		{"zero qty item", func(i *Invoice) { i.LineItems[0].Qty = decimal.Zero }},
		{"negative unit price", func(i *Invoice) { i.LineItems[0].UnitPrice = d("-5") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := testInvoice("0.10", "0", NewLineItem("Consulting", d("1"), d("100")))
			tt.mutate(inv)
			err := inv.Validate()
			require.Error(t, err)

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}
