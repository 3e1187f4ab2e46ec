package domain

import (
	"errors"
	"strings"
)

// NationalID is a canonical CPF: exactly 11 ASCII digits with valid check digits.
type NationalID string

var (
	ErrInvalidNationalIDFormat   = errors.New("national id must have exactly 11 digits")
	ErrInvalidNationalIDChecksum = errors.New("national id check digits do not match")
)

const nationalIDLength = 11

// ParseNationalID strips every non-digit character from raw and verifies both
// modulo-11 check digits. The result is the canonical 11-digit form.
func ParseNationalID(raw string) (NationalID, error) {
	digits := make([]int, 0, nationalIDLength)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) != nationalIDLength {
		return "", ErrInvalidNationalIDFormat
	}

	d1, d2 := CheckDigits(digits[:9])
	if digits[9] != d1 || digits[10] != d2 {
		return "", ErrInvalidNationalIDChecksum
	}

	var b strings.Builder
	b.Grow(nationalIDLength)
	for _, d := range digits {
		b.WriteByte(byte('0' + d))
	}
	return NationalID(b.String()), nil
}

// CheckDigits computes the two CPF check digits for a 9-digit base.
// It panics if base does not hold exactly nine digits.
func CheckDigits(base []int) (int, int) {
	if len(base) != 9 {
		panic("domain: CheckDigits requires a 9-digit base")
	}
	d1 := checkDigit(base, 10)
	d2 := checkDigit(append(append(make([]int, 0, 10), base...), d1), 11)
	return d1, d2
}

// checkDigit weights digits from topWeight down to 2.
func checkDigit(digits []int, topWeight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (topWeight - i)
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func (n NationalID) String() string { return string(n) }

// Formatted renders the id as 000.000.000-00.
func (n NationalID) Formatted() string {
	s := string(n)
	if len(s) != nationalIDLength {
		return s
	}
	return s[0:3] + "." + s[3:6] + "." + s[6:9] + "-" + s[9:11]
}

// Masked hides the middle digits for logs: 111.***.***-35.
func (n NationalID) Masked() string {
	s := string(n)
	if len(s) != nationalIDLength {
		return "***"
	}
	return s[0:3] + ".***.***-" + s[9:11]
}
