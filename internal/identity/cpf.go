// Package identity validates and formats the 11-digit CPF that
// identifies an account owner.
package identity

import "strings"

// ValidateCPF reports whether the given string is a well-formed CPF.
// Punctuation is stripped before checking, so both "52998224725" and
// "529.982.247-25" are accepted. Sequences of a single repeated digit
// are rejected even when their check digits happen to be arithmetically
// consistent.
func ValidateCPF(cpf string) bool {
	cleaned := CleanCPF(cpf)
	if len(cleaned) != 11 {
		return false
	}
	if allSameDigit(cleaned) {
		return false
	}

	digits := make([]int, 11)
	for i := 0; i < 11; i++ {
		digits[i] = int(cleaned[i] - '0')
	}

	// First check digit: weights 10..2 over digits 0..8.
	sum := 0
	for i := 0; i < 9; i++ {
		sum += digits[i] * (10 - i)
	}
	if checkDigit(sum) != digits[9] {
		return false
	}

	// Second check digit: weights 11..2 over digits 0..9.
	sum = 0
	for i := 0; i < 10; i++ {
		sum += digits[i] * (11 - i)
	}
	return checkDigit(sum) == digits[10]
}

// checkDigit maps a weighted sum to its verification digit. Remainders
// that would yield 10 or 11 collapse to 0.
func checkDigit(sum int) int {
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}

func allSameDigit(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// CleanCPF strips every non-digit character: "529.982.247-25" becomes
// "52998224725".
func CleanCPF(cpf string) string {
	var b strings.Builder
	b.Grow(len(cpf))
	for i := 0; i < len(cpf); i++ {
		if cpf[i] >= '0' && cpf[i] <= '9' {
			b.WriteByte(cpf[i])
		}
	}
	return b.String()
}

// FormatCPF renders a stored CPF in display form: "52998224725"
// becomes "529.982.247-25". Inputs that do not hold exactly 11 digits
// come back unchanged.
func FormatCPF(cpf string) string {
	cleaned := CleanCPF(cpf)
	if len(cleaned) != 11 {
		return cpf
	}
	return cleaned[:3] + "." + cleaned[3:6] + "." + cleaned[6:9] + "-" + cleaned[9:]
}
