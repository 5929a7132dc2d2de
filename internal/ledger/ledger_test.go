package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/storage"
)

var alice = UserContext{Username: "alice", Role: model.RoleAdmin}

// flakyStore fails Get or Apply on demand.
type flakyStore struct {
	*storage.MemoryStore
	failGet   bool
	failApply bool
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet {
		return nil, errors.New("connection refused")
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) Apply(ctx context.Context, b *storage.Batch) error {
	if f.failApply {
		return errors.New("connection reset")
	}
	return f.MemoryStore.Apply(ctx, b)
}

func testClock() func() time.Time {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func testTransferIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("00000000-0000-0000-0000-%012d", n)
	}
}

func openTestLedger(t *testing.T, store storage.Store) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), store, alice,
		WithClock(testClock()),
		WithTransferIDs(testTransferIDs()))
	require.NoError(t, err)
	return l
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertBalance(t *testing.T, l *Ledger, accountID int, want string) {
	t.Helper()
	acct, ok := l.Account(accountID)
	require.True(t, ok, "account %d", accountID)
	assert.True(t, acct.Balance.Equal(dec(want)), "account %d balance = %s, want %s", accountID, acct.Balance, want)
}

func addAccount(t *testing.T, l *Ledger, name, balance string) model.Account {
	t.Helper()
	acct, err := l.AddAccount(context.Background(), NewAccount{
		Name:    name,
		Type:    model.AccountTypeChecking,
		Balance: dec(balance),
	})
	require.NoError(t, err)
	return acct
}

func TestOpen_Empty(t *testing.T) {
	l := openTestLedger(t, storage.NewMemoryStore())
	assert.Empty(t, l.Accounts())
	assert.Empty(t, l.Transactions())
	assert.True(t, l.TotalBalance().IsZero())

	n, err := l.NextAccountID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_InvalidUsername(t *testing.T) {
	_, err := Open(context.Background(), storage.NewMemoryStore(), UserContext{})
	assert.ErrorIs(t, err, storage.ErrInvalidUsername)
}

func TestOpen_UndecodableBlobsAreEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.AccountsKey("alice"), []byte(`{broken`)))
	require.NoError(t, store.Set(ctx, storage.TransactionsKey("alice"), []byte(`null`)))
	require.NoError(t, store.Set(ctx, storage.NextAccountIDKey("alice"), []byte(`abc`)))

	l := openTestLedger(t, store)
	assert.Empty(t, l.Accounts())
	assert.Empty(t, l.Transactions())

	n, err := l.NextAccountID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCommit_KeepsUndecodableBlob(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	bad := []byte(`[{"id":1,"amount":"not a number"`)
	require.NoError(t, store.Set(ctx, storage.TransactionsKey("alice"), bad))

	l := openTestLedger(t, store)
	assert.Empty(t, l.Transactions())

	store.failApply = true
	_, err := l.AddAccount(ctx, NewAccount{Name: "Banco", Type: model.AccountTypeChecking})
	require.Error(t, err)
	_, err = store.Get(ctx, storage.BackupKey(storage.TransactionsKey("alice")))
	assert.True(t, storage.IsNotFound(err))

	store.failApply = false
	addAccount(t, l, "Banco", "10")
	saved, err := store.Get(ctx, storage.BackupKey(storage.TransactionsKey("alice")))
	require.NoError(t, err)
	assert.Equal(t, bad, saved)

	raw, err := store.Get(ctx, storage.TransactionsKey("alice"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	// A later commit must not overwrite the backup with the repaired blob.
	require.NoError(t, store.Set(ctx, storage.BackupKey(storage.TransactionsKey("alice")), []byte("kept")))
	addAccount(t, l, "Caja", "0")
	saved, err = store.Get(ctx, storage.BackupKey(storage.TransactionsKey("alice")))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(saved))
}

func TestSaveTransactions_KeepsUndecodableBlob(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.TransactionsKey("alice"), []byte(`{broken`)))

	l := openTestLedger(t, store)
	require.NoError(t, l.SaveTransactions(ctx))

	saved, err := store.Get(ctx, storage.BackupKey(storage.TransactionsKey("alice")))
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(saved))
}

func TestOpen_BackendError(t *testing.T) {
	store := &flakyStore{MemoryStore: storage.NewMemoryStore(), failGet: true}
	_, err := Open(context.Background(), store, alice)
	assert.ErrorContains(t, err, "connection refused")
}

func TestCounters_NeverBelowExistingIDs(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.AccountsKey("alice"),
		[]byte(`[{"id":7,"name":"Caja","type":"cash","balance":0}]`)))
	require.NoError(t, store.Set(ctx, storage.NextAccountIDKey("alice"), []byte("3")))
	require.NoError(t, store.Set(ctx, storage.NextTransactionIDKey("alice"), []byte("40")))

	l := openTestLedger(t, store)
	n, err := l.NextAccountID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	raw, err := store.Get(ctx, storage.NextAccountIDKey("alice"))
	require.NoError(t, err)
	assert.Equal(t, "9", string(raw))

	n, err = l.NextTransactionID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, n)
}

func TestCounters_PersistAcrossOpen(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	l := openTestLedger(t, store)
	a := addAccount(t, l, "Banco", "0")
	_, err := l.AddTransaction(ctx, NewTransaction{
		Date: model.MustParseDate("2024-03-01"), Description: "Sueldo", Category: "Salario",
		Type: model.TypeIncome, Amount: dec("10"), AccountID: a.ID,
	})
	require.NoError(t, err)
	ok, err := l.DeleteTransaction(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, l.DeleteAccount(ctx, a.ID))

	reopened := openTestLedger(t, store)
	b := addAccount(t, reopened, "Caja", "0")
	assert.Equal(t, 2, b.ID, "ids are not reused after deletion")
	n, err := reopened.NextTransactionID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAddAccount_Validation(t *testing.T) {
	l := openTestLedger(t, storage.NewMemoryStore())
	ctx := context.Background()

	_, err := l.AddAccount(ctx, NewAccount{Name: "  ", Type: model.AccountTypeCash})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = l.AddAccount(ctx, NewAccount{Name: "Banco", Type: "crypto"})
	assert.ErrorIs(t, err, ErrInvalidAccountType)
	assert.ErrorIs(t, err, model.ErrValidation)

	assert.Empty(t, l.Accounts())
}

func TestAccounts_PersistAndTotal(t *testing.T) {
	store := storage.NewMemoryStore()
	l := openTestLedger(t, store)
	addAccount(t, l, "Banco", "100.50")
	addAccount(t, l, "Tarjeta", "-20.25")

	reopened := openTestLedger(t, store)
	accts := reopened.Accounts()
	require.Len(t, accts, 2)
	assert.Equal(t, "Banco", accts[0].Name)
	assert.Equal(t, 1, accts[0].ID)
	assert.Equal(t, 2, accts[1].ID)
	assert.True(t, reopened.TotalBalance().Equal(dec("80.25")))
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t, storage.NewMemoryStore())
	a := addAccount(t, l, "Banco", "0")
	b := addAccount(t, l, "Caja", "0")
	_, err := l.AddTransaction(ctx, NewTransaction{
		Date: model.MustParseDate("2024-03-01"), Category: "Comida",
		Type: model.TypeExpense, Amount: dec("5"), AccountID: a.ID,
	})
	require.NoError(t, err)

	err = l.DeleteAccount(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAccountInUse)
	assert.ErrorIs(t, err, model.ErrReferential)
	_, ok := l.Account(a.ID)
	assert.True(t, ok)

	require.NoError(t, l.DeleteAccount(ctx, b.ID))
	_, ok = l.Account(b.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, l.DeleteAccount(ctx, 99), ErrUnknownAccount)
}

func TestMutationRollsBackOnCommitFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	l := openTestLedger(t, store)
	a := addAccount(t, l, "Banco", "100")

	store.failApply = true
	_, err := l.AddTransaction(ctx, NewTransaction{
		Date: model.MustParseDate("2024-03-01"), Category: "Comida",
		Type: model.TypeExpense, Amount: dec("30"), AccountID: a.ID,
	})
	require.Error(t, err)
	assert.Empty(t, l.Transactions())
	assertBalance(t, l, a.ID, "100")

	store.failApply = false
	tx, err := l.AddTransaction(ctx, NewTransaction{
		Date: model.MustParseDate("2024-03-01"), Category: "Comida",
		Type: model.TypeExpense, Amount: dec("30"), AccountID: a.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tx.ID, "failed commit does not consume an id")
}
