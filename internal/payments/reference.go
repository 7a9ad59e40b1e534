package payments

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// NewTransactionReference generates an external-facing transaction reference
// of the form TXN-YYYYMMDD-<16 uppercase hex chars>.
//
// The 64 random bits make collisions negligible; uniqueness is still
// enforced by the database index and the ledger retries on violation.
func NewTransactionReference(now time.Time) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("payments: generate reference: %w", err)
	}
	return fmt.Sprintf("TXN-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(buf))), nil
}
