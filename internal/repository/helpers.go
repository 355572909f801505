package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
)

// timeLayout is the RFC3339 format for storing times in SQLite
const timeLayout = time.RFC3339

// parseTime parses a time string in RFC3339 format
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// parseDecimal parses a stored decimal string
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// persistErr wraps a low-level database error into the persistence taxonomy
func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrPersistence, op, err)
}
