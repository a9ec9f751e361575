package store

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"atm-simulator/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*jsonStore, string) {
	t.Helper()
	dataFile := filepath.Join(t.TempDir(), "accounts.json")
	return NewJSONStore(dataFile, newTestLogger()).(*jsonStore), dataFile
}

func TestLoad_MissingFile_SeedsSampleAccounts(t *testing.T) {
	st, dataFile := newTestStore(t)

	require.NoError(t, st.Load())
	assert.Len(t, st.Accounts(), 4)

	account, err := st.Find("1234567890")
	require.NoError(t, err)
	assert.Equal(t, "1234", account.PIN)
	assert.True(t, account.Balance.Equal(decimal.NewFromFloat(1000.00)))
	assert.Empty(t, account.History)

	// The sample set is persisted immediately.
	data, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"account_number": "63799912940"`)
	assert.Contains(t, string(data), `"transaction_history"`)
}

func TestLoad_CorruptFile_FailsSoft(t *testing.T) {
	st, dataFile := newTestStore(t)
	require.NoError(t, os.WriteFile(dataFile, []byte("{not json"), 0o600))

	require.NoError(t, st.Load())
	assert.Len(t, st.Accounts(), 4)

	// The corrupt file was replaced with a valid one.
	data, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestLoad_InvalidRecord_FailsSoft(t *testing.T) {
	st, dataFile := newTestStore(t)
	record := `{"9999999999": {"account_number": "9999999999", "pin": "not-a-pin", "balance": 10, "transaction_history": []}}`
	require.NoError(t, os.WriteFile(dataFile, []byte(record), 0o600))

	require.NoError(t, st.Load())

	_, err := st.Find("9999999999")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Len(t, st.Accounts(), 4)
}

func TestLoad_MalformedHistoryEntry_FailsSoft(t *testing.T) {
	st, dataFile := newTestStore(t)
	record := `{"4242424242": {"account_number": "4242424242", "pin": "9876", "balance": 100,
		"transaction_history": [{"type": "BOGUS", "amount": -50, "timestamp": ""}]}}`
	require.NoError(t, os.WriteFile(dataFile, []byte(record), 0o600))

	require.NoError(t, st.Load())

	// The record's fields pass tag validation; the bogus history entry alone
	// must trigger the sample-account fallback.
	_, err := st.Find("4242424242")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Len(t, st.Accounts(), 4)
}

func TestLoad_ValidFile_KeepsRecords(t *testing.T) {
	st, dataFile := newTestStore(t)
	record := `{"4242424242": {"account_number": "4242424242", "pin": "9876", "balance": 123.45, "transaction_history": []}}`
	require.NoError(t, os.WriteFile(dataFile, []byte(record), 0o600))

	require.NoError(t, st.Load())

	account, err := st.Find("4242424242")
	require.NoError(t, err)
	assert.Equal(t, "9876", account.PIN)
	assert.True(t, account.Balance.Equal(decimal.NewFromFloat(123.45)))
	assert.Len(t, st.Accounts(), 1)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	st, dataFile := newTestStore(t)
	require.NoError(t, st.Load())

	sender, err := st.Find("1234567890")
	require.NoError(t, err)
	recipient, err := st.Find("0987654321")
	require.NoError(t, err)

	sender.Balance = sender.Balance.Sub(decimal.NewFromFloat(100.00))
	recipient.Balance = recipient.Balance.Add(decimal.NewFromFloat(100.00))
	sender.AppendTransaction(models.TransactionTypeLogin, decimal.Zero, "")
	sender.AppendTransaction(models.TransactionTypeTransferOut, decimal.NewFromFloat(100.00), "0987654321")
	recipient.AppendTransaction(models.TransactionTypeTransferIn, decimal.NewFromFloat(100.00), "1234567890")
	require.NoError(t, st.Save())

	reloaded := NewJSONStore(dataFile, newTestLogger()).(*jsonStore)
	require.NoError(t, reloaded.Load())
	require.Len(t, reloaded.Accounts(), 4)

	for _, original := range st.Accounts() {
		loaded, err := reloaded.Find(original.AccountNumber)
		require.NoError(t, err)
		assert.Equal(t, original.AccountNumber, loaded.AccountNumber)
		assert.Equal(t, original.PIN, loaded.PIN)
		assert.True(t, original.Balance.Equal(loaded.Balance),
			"balance mismatch for %s: %s vs %s", original.AccountNumber, original.Balance, loaded.Balance)

		require.Len(t, loaded.History, len(original.History))
		for i := range original.History {
			assert.Equal(t, original.History[i].Type, loaded.History[i].Type)
			assert.True(t, original.History[i].Amount.Equal(loaded.History[i].Amount))
			assert.Equal(t, original.History[i].Timestamp, loaded.History[i].Timestamp)
			assert.Equal(t, original.History[i].TargetAccount, loaded.History[i].TargetAccount)
			assert.Equal(t, original.History[i].Reference, loaded.History[i].Reference)
		}
	}
}

func TestSaveLoad_RoundTrip_RandomAccounts(t *testing.T) {
	st, dataFile := newTestStore(t)
	faker := gofakeit.New(1)

	for i := 0; i < 10; i++ {
		account := &models.Account{
			AccountNumber: faker.DigitN(10),
			PIN:           faker.DigitN(4),
			Balance:       decimal.NewFromFloat(faker.Price(0, 10000)),
			History:       []models.Transaction{},
		}
		account.AppendTransaction(models.TransactionTypeDeposit, decimal.NewFromFloat(faker.Price(1, 500)), "")
		st.accounts[account.AccountNumber] = account
	}
	require.NoError(t, st.Save())

	reloaded := NewJSONStore(dataFile, newTestLogger()).(*jsonStore)
	require.NoError(t, reloaded.Load())
	require.Len(t, reloaded.Accounts(), len(st.accounts))

	for number, original := range st.accounts {
		loaded, err := reloaded.Find(number)
		require.NoError(t, err)
		assert.Equal(t, original.PIN, loaded.PIN)
		assert.True(t, original.Balance.Equal(loaded.Balance))
		assert.Len(t, loaded.History, 1)
	}
}

func TestSave_DecimalsPersistAsBareNumbers(t *testing.T) {
	st, dataFile := newTestStore(t)
	require.NoError(t, st.Load())

	account, err := st.Find("1234567890")
	require.NoError(t, err)
	account.AppendTransaction(models.TransactionTypeDeposit, decimal.NewFromFloat(25.50), "")
	require.NoError(t, st.Save())

	data, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"balance": 1000`)
	assert.Contains(t, string(data), `"amount": 25.5`)
	assert.NotContains(t, string(data), `"balance": "1000"`)
	assert.NotContains(t, string(data), `"amount": "25.5"`)
}

func TestSave_LeavesNoTempFile(t *testing.T) {
	st, dataFile := newTestStore(t)
	require.NoError(t, st.Load())
	require.NoError(t, st.Save())

	_, err := os.Stat(dataFile + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFind_NotFound(t *testing.T) {
	st, _ := newTestStore(t)
	require.NoError(t, st.Load())

	_, err := st.Find("0000000000")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccounts_OrderedByNumber(t *testing.T) {
	st, _ := newTestStore(t)
	require.NoError(t, st.Load())

	accounts := st.Accounts()
	require.Len(t, accounts, 4)
	for i := 1; i < len(accounts); i++ {
		assert.Less(t, accounts[i-1].AccountNumber, accounts[i].AccountNumber)
	}
}
