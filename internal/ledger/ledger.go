package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/logging"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/storage"
)

// UserContext identifies whose namespace a Ledger reads and writes.
type UserContext struct {
	Username string
	Role     model.Role
}

// IsAdmin reports whether the user may manage other users.
func (uc UserContext) IsAdmin() bool { return uc.Role == model.RoleAdmin }

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(lg *Ledger) { lg.log = l.Named("ledger") }
}

// WithClock sets the source of transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(lg *Ledger) { lg.now = now }
}

// WithTransferIDs sets the generator of transfer group ids.
func WithTransferIDs(next func() string) Option {
	return func(lg *Ledger) { lg.newTransferID = next }
}

// Ledger holds one user's accounts and transactions in memory and commits
// every mutation to the store before returning.
type Ledger struct {
	store         storage.Store
	user          UserContext
	log           *logging.Logger
	now           func() time.Time
	newTransferID func() string

	accounts          []model.Account
	transactions      []model.Transaction
	nextAccountID     int
	nextTransactionID int

	// undecodable blobs found by load, keyed by their key; the next commit
	// copies them to their backup keys before overwriting.
	corrupt map[string][]byte
}

// Open loads the ledger of uc.Username from store.
func Open(ctx context.Context, store storage.Store, uc UserContext, opts ...Option) (*Ledger, error) {
	if err := storage.ValidateUsername(uc.Username); err != nil {
		return nil, err
	}
	l := &Ledger{
		store:         store,
		user:          uc,
		log:           logging.NewNoOpLogger(),
		now:           time.Now,
		newTransferID: id.NewTransferID,
		corrupt:       make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(zap.String("user", uc.Username))
	if err := l.load(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// User returns the context the ledger was opened with.
func (l *Ledger) User() UserContext { return l.user }

// load reads both collections and both counters. Missing or undecodable
// blobs become empty collections; only backend failures are returned.
func (l *Ledger) load(ctx context.Context) error {
	u := l.user.Username
	var err error
	if l.accounts, err = loadCollection[model.Account](ctx, l, storage.AccountsKey(u)); err != nil {
		return err
	}
	if l.transactions, err = loadCollection[model.Transaction](ctx, l, storage.TransactionsKey(u)); err != nil {
		return err
	}
	if l.nextAccountID, err = l.loadCounter(ctx, storage.NextAccountIDKey(u)); err != nil {
		return err
	}
	if l.nextTransactionID, err = l.loadCounter(ctx, storage.NextTransactionIDKey(u)); err != nil {
		return err
	}
	for _, a := range l.accounts {
		if a.ID >= l.nextAccountID {
			l.nextAccountID = a.ID + 1
		}
	}
	for _, t := range l.transactions {
		if t.ID >= l.nextTransactionID {
			l.nextTransactionID = t.ID + 1
		}
	}

	l.log.Debug("ledger loaded",
		zap.Int("accounts", len(l.accounts)),
		zap.Int("transactions", len(l.transactions)))
	return nil
}

func loadCollection[T any](ctx context.Context, l *Ledger, key string) ([]T, error) {
	raw, err := l.store.Get(ctx, key)
	if storage.IsNotFound(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		l.log.Warn("undecodable collection loaded as empty",
			zap.String("key", key),
			zap.String("backup_key", storage.BackupKey(key)),
			zap.Error(err))
		l.corrupt[key] = raw
		return []T{}, nil
	}
	return nonNil(out), nil
}

func (l *Ledger) loadCounter(ctx context.Context, key string) (int, error) {
	raw, err := l.store.Get(ctx, key)
	if storage.IsNotFound(err) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("loading %s: %w", key, err)
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 1 {
		l.log.Warn("discarding invalid counter", zap.String("key", key), zap.ByteString("value", raw))
		return 1, nil
	}
	return n, nil
}

// NextAccountID allocates an account id and persists the counter.
func (l *Ledger) NextAccountID(ctx context.Context) (int, error) {
	n := l.allocAccountID()
	key := storage.NextAccountIDKey(l.user.Username)
	if err := l.store.Set(ctx, key, []byte(strconv.Itoa(l.nextAccountID))); err != nil {
		l.nextAccountID = n
		return 0, fmt.Errorf("saving %s: %w", key, err)
	}
	return n, nil
}

// NextTransactionID allocates a transaction id and persists the counter.
func (l *Ledger) NextTransactionID(ctx context.Context) (int, error) {
	n := l.allocTransactionID()
	key := storage.NextTransactionIDKey(l.user.Username)
	if err := l.store.Set(ctx, key, []byte(strconv.Itoa(l.nextTransactionID))); err != nil {
		l.nextTransactionID = n
		return 0, fmt.Errorf("saving %s: %w", key, err)
	}
	return n, nil
}

func (l *Ledger) allocAccountID() int {
	n := l.nextAccountID
	l.nextAccountID++
	return n
}

func (l *Ledger) allocTransactionID() int {
	n := l.nextTransactionID
	l.nextTransactionID++
	return n
}

// SaveAccounts overwrites the stored account collection.
func (l *Ledger) SaveAccounts(ctx context.Context) error {
	return l.saveJSON(ctx, storage.AccountsKey(l.user.Username), l.accounts)
}

// SaveTransactions overwrites the stored transaction collection.
func (l *Ledger) SaveTransactions(ctx context.Context) error {
	return l.saveJSON(ctx, storage.TransactionsKey(l.user.Username), l.transactions)
}

func (l *Ledger) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	b := storage.NewBatch()
	if bad, ok := l.corrupt[key]; ok {
		b.Set(storage.BackupKey(key), bad)
	}
	b.Set(key, raw)
	if err := l.store.Apply(ctx, b); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	delete(l.corrupt, key)
	return nil
}

// state is a copy of everything a mutation may touch.
type state struct {
	accounts          []model.Account
	transactions      []model.Transaction
	nextAccountID     int
	nextTransactionID int
}

func (l *Ledger) snapshot() state {
	return state{
		accounts:          append([]model.Account(nil), l.accounts...),
		transactions:      append([]model.Transaction(nil), l.transactions...),
		nextAccountID:     l.nextAccountID,
		nextTransactionID: l.nextTransactionID,
	}
}

func (l *Ledger) restore(s state) {
	l.accounts = s.accounts
	l.transactions = s.transactions
	l.nextAccountID = s.nextAccountID
	l.nextTransactionID = s.nextTransactionID
}

// mutate runs fn against the in-memory state and commits the result in one
// batch. On any error the in-memory state is rolled back.
func (l *Ledger) mutate(ctx context.Context, fn func() error) error {
	before := l.snapshot()
	if err := fn(); err != nil {
		l.restore(before)
		return err
	}
	if err := l.commit(ctx); err != nil {
		l.restore(before)
		return err
	}
	return nil
}

func (l *Ledger) commit(ctx context.Context) error {
	u := l.user.Username
	accounts, err := json.Marshal(nonNil(l.accounts))
	if err != nil {
		return fmt.Errorf("encoding accounts: %w", err)
	}
	transactions, err := json.Marshal(nonNil(l.transactions))
	if err != nil {
		return fmt.Errorf("encoding transactions: %w", err)
	}

	b := storage.NewBatch()
	b.Set(storage.AccountsKey(u), accounts)
	b.Set(storage.TransactionsKey(u), transactions)
	b.Set(storage.NextAccountIDKey(u), []byte(strconv.Itoa(l.nextAccountID)))
	b.Set(storage.NextTransactionIDKey(u), []byte(strconv.Itoa(l.nextTransactionID)))
	for key, raw := range l.corrupt {
		b.Set(storage.BackupKey(key), raw)
	}
	if err := l.store.Apply(ctx, b); err != nil {
		return fmt.Errorf("committing ledger: %w", err)
	}
	clear(l.corrupt)
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
