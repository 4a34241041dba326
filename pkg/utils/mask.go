// Package utils provides small helpers shared across packages.
package utils

import "strings"

// MaskEmail hides most of the local part of an email address so it can be
// logged without exposing the full address. "alice@example.com" becomes
// "a****@example.com".
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "****"
	}
	return email[:1] + "****" + email[at:]
}

// MaskMobile hides all but the last four digits of a mobile number.
// "+4915112345678" becomes "**********5678".
func MaskMobile(mobile string) string {
	if len(mobile) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(mobile)-4) + mobile[len(mobile)-4:]
}
