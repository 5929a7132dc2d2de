// Package auditlog appends a CSV trail of ledger and user mutations under
// the data directory.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cleared-dev/tally/internal/id"
)

// Actions.
const (
	ActionAccountAdd     = "account_add"
	ActionAccountDelete  = "account_delete"
	ActionTxAdd          = "tx_add"
	ActionTxDelete       = "tx_delete"
	ActionTxImport       = "tx_import"
	ActionTransferAdd    = "transfer_add"
	ActionTransferDelete = "transfer_delete"
	ActionUserAdd        = "user_add"
	ActionUserUpdate     = "user_update"
	ActionUserDelete     = "user_delete"
	ActionThemeSet       = "theme_set"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	User      string
	Action    string
	Details   string
	Ref       string // "kind:value", see package id
}

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,user,action,details,ref"

const (
	numFields    = 5
	logDir       = "logs"
	logFile      = "logs/audit-log.csv"
	colTimestamp = 0
	colUser      = 1
	colAction    = 2
	colDetails   = 3
	colRef       = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colUser] = e.User
	row[colAction] = e.Action
	row[colDetails] = e.Details
	row[colRef] = e.Ref
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		User:      record[colUser],
		Action:    record[colAction],
		Details:   record[colDetails],
		Ref:       record[colRef],
	}, nil
}

// Validate checks the fields Append relies on.
func (e Entry) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("audit entry has no action")
	}
	if e.Ref != "" {
		if _, _, err := id.ParseRef(e.Ref); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the audit log location under dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, logFile)
}

// Append writes entries to <dataDir>/logs/audit-log.csv, creating the file and header if needed.
func Append(dataDir string, entries []Entry) error {
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}

	dir := filepath.Join(dataDir, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(dataDir)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dataDir>/logs/audit-log.csv.
// Returns nil if the file does not exist.
func Read(dataDir string) ([]Entry, error) {
	f, err := os.Open(Path(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// ForUser returns the entries recorded by username.
func ForUser(entries []Entry, username string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.User == username {
			out = append(out, e)
		}
	}
	return out
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
