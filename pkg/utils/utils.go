package utils

import (
	"crypto/rand"
	"database/sql"
	"math/big"
)

const randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func ToNullString(str string) sql.NullString {
	if str == "" {
		return sql.NullString{
			String: str,
			Valid:  false,
		}
	}
	return sql.NullString{
		String: str,
		Valid:  true,
	}
}

func GetValidStrings(nullStrings []sql.NullString) []string {
	var validStrings []string

	for _, ns := range nullStrings {
		if ns.Valid {
			validStrings = append(validStrings, ns.String)
		}
	}

	return validStrings
}

// StringPtr returns a pointer to str, for optional DTO fields
func StringPtr(str string) *string {
	return &str
}

// GenerateRandomString returns a cryptographically secure random string of
// the given length, suitable for verification tokens and codes.
func GenerateRandomString(length int) string {
	out := make([]byte, length)
	alphabetSize := big.NewInt(int64(len(randomAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			// crypto/rand failing is not recoverable here
			panic(err)
		}
		out[i] = randomAlphabet[n.Int64()]
	}
	return string(out)
}
