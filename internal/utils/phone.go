package utils

import (
	"fmt"
	"strings"
)

// CleanPhone canonicalizes a phone string as stored in the conversation
// log: the transport prefix and all whitespace are removed, everything
// else is kept as-is. Used when comparing senders/recipients against a
// customer phone.
func CleanPhone(phone string) string {
	phone = strings.TrimPrefix(phone, "whatsapp:")
	return strings.Join(strings.Fields(phone), "")
}

// NormalizePhone prepares a phone string for the gateway: whitespace and
// every character except digits and a leading + are dropped, and a + is
// prepended when missing.
func NormalizePhone(phone string) string {
	phone = CleanPhone(phone)

	var b strings.Builder
	for i, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		} else if c == '+' && i == 0 {
			b.WriteRune(c)
		}
	}

	normalized := b.String()
	if !strings.HasPrefix(normalized, "+") {
		normalized = "+" + normalized
	}
	return normalized
}

// CleanImportedPhone validates a phone string coming from a contact
// import (CSV, Excel or device contacts). The "p:" prefix some phone
// exports carry is stripped. Numbers with fewer than 7 digits are
// rejected.
func CleanImportedPhone(phone string) (string, bool) {
	phone = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(phone), "p:"))
	if phone == "" {
		return "", false
	}

	normalized := NormalizePhone(phone)
	if len(DigitsOnly(normalized)) < 7 {
		return "", false
	}
	return normalized, true
}

// DigitsOnly strips everything except decimal digits.
func DigitsOnly(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// FormatPhoneForDisplay renders the last 10 digits grouped 3-3-4, the
// shape shown in the customer list when no name could be extracted.
func FormatPhoneForDisplay(phone string) string {
	digits := DigitsOnly(phone)
	if len(digits) < 10 {
		if phone == "" {
			return "Unknown Number"
		}
		return phone
	}
	last10 := digits[len(digits)-10:]
	return fmt.Sprintf("%s %s %s", last10[0:3], last10[3:6], last10[6:])
}
