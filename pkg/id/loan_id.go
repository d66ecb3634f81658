package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Len is the length of a loan identifier.
const Len = 32

// NewLoanID returns a random v4 UUID as 32 lowercase hex characters, the shape
// stored in loans.loan_id.
func NewLoanID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Valid reports whether s has the loan identifier shape.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
