// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	TransactionReferencePrefix = "TXN"
	AdjustmentReferencePrefix  = "ADJ"

	referenceRandomLength = 16
)

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateTransactionReference builds a purchase reference from the current
// time in base36 followed by a random suffix.
func GenerateTransactionReference() (string, error) {
	return generateReference(TransactionReferencePrefix)
}

func GenerateAdjustmentReference() (string, error) {
	return generateReference(AdjustmentReferencePrefix)
}

func generateReference(prefix string) (string, error) {
	random, err := GenerateRandomString(referenceRandomLength)
	if err != nil {
		return "", err
	}
	stamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixNano(), 36))
	return prefix + stamp + random, nil
}
