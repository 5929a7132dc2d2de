package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewTransferID returns a fresh group id shared by both legs of a transfer.
func NewTransferID() string {
	return uuid.NewString()
}

// ValidTransferID reports whether s parses as a transfer group id.
func ValidTransferID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ShortTransferID returns the first block of a transfer id for display.
// "1b4e28ba-2fa1-11d2-883f-0016d3cca427" -> "1b4e28ba"
func ShortTransferID(s string) string {
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}

// Reference kinds used in audit log refs.
const (
	KindAccount     = "acct"
	KindTransaction = "tx"
	KindTransfer    = "xfer"
	KindUser        = "user"
)

// AccountRef returns a ref like "acct:3".
func AccountRef(id int) string { return fmt.Sprintf("%s:%d", KindAccount, id) }

// TransactionRef returns a ref like "tx:12".
func TransactionRef(id int) string { return fmt.Sprintf("%s:%d", KindTransaction, id) }

// TransferRef returns a ref like "xfer:<uuid>".
func TransferRef(transferID string) string { return KindTransfer + ":" + transferID }

// UserRef returns a ref like "user:alice".
func UserRef(username string) string { return KindUser + ":" + username }

// ParseRef splits "kind:value".
func ParseRef(ref string) (kind, value string, err error) {
	kind, value, ok := strings.Cut(ref, ":")
	if !ok || kind == "" || value == "" {
		return "", "", fmt.Errorf("invalid ref format: %q", ref)
	}
	switch kind {
	case KindAccount, KindTransaction, KindTransfer, KindUser:
		return kind, value, nil
	default:
		return "", "", fmt.Errorf("unknown ref kind %q in %q", kind, ref)
	}
}
