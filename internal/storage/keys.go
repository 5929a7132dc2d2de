package storage

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Global keys.
const (
	UsersKey = "users"
	ThemeKey = "theme"
)

// ErrInvalidUsername is returned for usernames that cannot form a namespace.
var ErrInvalidUsername = errors.New("invalid username")

// AccountsKey returns the key of a user's account collection.
func AccountsKey(username string) string { return "financeData_" + username + "_accounts" }

// TransactionsKey returns the key of a user's transaction collection.
func TransactionsKey(username string) string { return "financeData_" + username + "_transactions" }

// NextAccountIDKey returns the key of a user's account id counter.
func NextAccountIDKey(username string) string { return "financeData_" + username + "_nextAccountId" }

// NextTransactionIDKey returns the key of a user's transaction id counter.
func NextTransactionIDKey(username string) string {
	return "financeData_" + username + "_nextTransactionId"
}

// RegDateKey returns the key of a user's registration date.
func RegDateKey(username string) string { return "userRegDate_" + username }

// UserKeys returns every namespaced key owned by username.
func UserKeys(username string) []string {
	return []string{
		AccountsKey(username),
		TransactionsKey(username),
		NextAccountIDKey(username),
		NextTransactionIDKey(username),
		RegDateKey(username),
	}
}

// BackupKey returns where an undecodable blob stored under key is kept.
func BackupKey(key string) string { return key + "_corrupt" }

// BackupKeys returns the backup keys a user's ledger may write.
func BackupKeys(username string) []string {
	return []string{
		BackupKey(AccountsKey(username)),
		BackupKey(TransactionsKey(username)),
	}
}

// ValidateUsername checks that username is usable as a key namespace.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if len(username) > 64 {
		return fmt.Errorf("%w: longer than 64 characters", ErrInvalidUsername)
	}
	if strings.TrimSpace(username) != username {
		return fmt.Errorf("%w: leading or trailing whitespace", ErrInvalidUsername)
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: contains control character", ErrInvalidUsername)
		}
	}
	return nil
}
