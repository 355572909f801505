package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals is the monetary breakdown of an invoice at a given point in time.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableBase    decimal.Decimal
	TaxAmount      decimal.Decimal
	BaseTotal      decimal.Decimal
	OverdueFee     decimal.Decimal
	Total          decimal.Decimal
}

// Totals computes the invoice's monetary breakdown at now. It is pure: it
// never mutates the invoice and returns identical results for identical now.
//
// The overdue fee compounds daily: base_total * ((1+rate)^days - 1), where
// days is the number of whole days past the due date. A paid invoice reuses
// the fee frozen at payment time instead of accruing further.
func (i *Invoice) Totals(now time.Time, dailyRate decimal.Decimal) Totals {
	t := Totals{}
	for _, item := range i.LineItems {
		t.Subtotal = t.Subtotal.Add(item.Total())
	}
	t.DiscountAmount = t.Subtotal.Mul(i.DiscountRate)
	t.TaxableBase = t.Subtotal.Sub(t.DiscountAmount)
	t.TaxAmount = t.TaxableBase.Mul(i.TaxRate)
	t.BaseTotal = t.TaxableBase.Add(t.TaxAmount)

	switch {
	case i.IsPaid():
		t.OverdueFee = i.OverdueFee
	case i.IsOverdue(now):
		t.OverdueFee = compoundFee(t.BaseTotal, dailyRate, i.DaysOverdue(now))
	}

	t.Total = t.BaseTotal.Add(t.OverdueFee)
	return t
}

// AccruedOverdueFee returns the fee an unpaid invoice has accrued as of now.
func (i *Invoice) AccruedOverdueFee(now time.Time, dailyRate decimal.Decimal) decimal.Decimal {
	return i.Totals(now, dailyRate).OverdueFee
}

func compoundFee(base, dailyRate decimal.Decimal, days int64) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	one := decimal.NewFromInt(1)
	factor := one.Add(dailyRate).Pow(decimal.NewFromInt(days))
	return base.Mul(factor.Sub(one))
}
