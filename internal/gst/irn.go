package gst

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

// FinancialYear returns the Indian financial year (April to March) containing
// t, formatted like "2024-25".
func FinancialYear(t time.Time) string {
	year := t.Year()
	if t.Month() >= time.April {
		return fmt.Sprintf("%d-%02d", year, (year+1)%100)
	}
	return fmt.Sprintf("%d-%02d", year-1, year%100)
}

// ComputeIRN returns the invoice reference number as the lowercase hex
// SHA-256 of seller GSTIN, document type, document number and financial year.
func ComputeIRN(sellerGSTIN, docType, number, fy string) string {
	hash := sha256.Sum256([]byte(sellerGSTIN + docType + number + fy))
	return fmt.Sprintf("%x", hash)
}

// EWayBillNumber derives a stable 12-digit e-way bill number from seed.
func EWayBillNumber(seed string) string {
	hash := sha256.Sum256([]byte(seed))
	n := binary.BigEndian.Uint64(hash[:8]) % 900_000_000_000
	return fmt.Sprintf("%012d", n+100_000_000_000)
}
