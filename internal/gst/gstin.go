// Package gst holds Indian GST identifiers and derivations used when
// documents are created and moved through their lifecycle.
package gst

import (
	"fmt"
	"regexp"
	"strings"

	"erpdesk/internal/domain"
)

var gstinPattern = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// stateNames maps GST state codes to state or union territory names.
var stateNames = map[string]string{
	"01": "Jammu and Kashmir", "02": "Himachal Pradesh", "03": "Punjab",
	"04": "Chandigarh", "05": "Uttarakhand", "06": "Haryana", "07": "Delhi",
	"08": "Rajasthan", "09": "Uttar Pradesh", "10": "Bihar", "11": "Sikkim",
	"12": "Arunachal Pradesh", "13": "Nagaland", "14": "Manipur", "15": "Mizoram",
	"16": "Tripura", "17": "Meghalaya", "18": "Assam", "19": "West Bengal",
	"20": "Jharkhand", "21": "Odisha", "22": "Chhattisgarh", "23": "Madhya Pradesh",
	"24": "Gujarat", "26": "Dadra and Nagar Haveli and Daman and Diu",
	"27": "Maharashtra", "29": "Karnataka", "30": "Goa", "31": "Lakshadweep",
	"32": "Kerala", "33": "Tamil Nadu", "34": "Puducherry",
	"35": "Andaman and Nicobar Islands", "36": "Telangana", "37": "Andhra Pradesh",
	"38": "Ladakh", "97": "Other Territory",
}

// NormalizeGSTIN trims and upper-cases a GSTIN.
func NormalizeGSTIN(gstin string) string {
	return strings.ToUpper(strings.TrimSpace(gstin))
}

// ValidateGSTIN returns ErrInvalidGSTIN when gstin is malformed or carries an
// unknown state code. Empty values are accepted; callers decide whether a
// GSTIN is required.
func ValidateGSTIN(gstin string) error {
	if gstin == "" {
		return nil
	}
	if !gstinPattern.MatchString(gstin) {
		return fmt.Errorf("%w: %q does not match the GSTIN format", domain.ErrInvalidGSTIN, gstin)
	}
	if !IsStateCode(gstin[:2]) {
		return fmt.Errorf("%w: unknown state code %s", domain.ErrInvalidGSTIN, gstin[:2])
	}
	return nil
}

// StateCode returns the two-digit state prefix of a GSTIN.
func StateCode(gstin string) (string, error) {
	if err := ValidateGSTIN(gstin); err != nil {
		return "", err
	}
	if gstin == "" {
		return "", fmt.Errorf("%w: empty GSTIN", domain.ErrInvalidGSTIN)
	}
	return gstin[:2], nil
}

// IsStateCode reports whether code is a known GST state code.
func IsStateCode(code string) bool {
	_, ok := stateNames[code]
	return ok
}

// StateName returns the name registered for a state code.
func StateName(code string) string {
	return stateNames[code]
}

// DeriveSupplyType picks the supply type for a document. Exports are always
// zero-rated IGST supplies; otherwise the seller's registration state is
// compared with the place of supply.
func DeriveSupplyType(sellerGSTIN, placeOfSupply string, export bool) (domain.SupplyType, error) {
	if export {
		return domain.SupplyExport, nil
	}
	seller, err := StateCode(sellerGSTIN)
	if err != nil {
		return "", err
	}
	if !IsStateCode(placeOfSupply) {
		return "", fmt.Errorf("%w: unknown place of supply %q", domain.ErrInvalidSupplyType, placeOfSupply)
	}
	if seller == placeOfSupply {
		return domain.SupplyIntrastate, nil
	}
	return domain.SupplyInterstate, nil
}
