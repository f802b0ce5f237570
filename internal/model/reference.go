package model

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewReferenceID generates the applicant-facing tracking code SEV-<year>-<5 base36 chars>.
func NewReferenceID(now time.Time) string {
	suffix := make([]byte, 5)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(fmt.Sprintf("reference id: %v", err))
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("SEV-%04d-%s", now.Year(), suffix)
}
