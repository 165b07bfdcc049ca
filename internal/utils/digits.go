package utils

import "regexp"

var (
	nonDigits  = regexp.MustCompile(`[^0-9]`)
	cpfCharset = regexp.MustCompile(`^[0-9.\-\s]+$`)
)

// OnlyDigits strips everything but digits, e.g. "123.456.789-09" -> "12345678909"
func OnlyDigits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// IsValidCPF checks the shape of a CPF: 11 digits once punctuation is removed
func IsValidCPF(cpf string) bool {
	return cpfCharset.MatchString(cpf) && len(OnlyDigits(cpf)) == 11
}
