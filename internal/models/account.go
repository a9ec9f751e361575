package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MaxHistoryEntries caps per-account history; the oldest entries are evicted
// first so the data file cannot grow without bound.
const MaxHistoryEntries = 20

var (
	ErrMissingAccountNumber = errors.New("account number is required")
	ErrMissingPIN           = errors.New("PIN is required")
	ErrInvalidBalance       = errors.New("balance cannot be negative")
	ErrInsufficientFunds    = errors.New("insufficient funds")
)

// Account represents a bank account in the simulator. The PIN is stored and
// compared in plain text; it is not a security control, the process is never
// network-exposed.
type Account struct {
	AccountNumber string          `json:"account_number" validate:"required,account_number"`
	PIN           string          `json:"pin" validate:"required,pin"`
	Balance       decimal.Decimal `json:"balance" validate:"gte=0"`
	History       []Transaction   `json:"transaction_history"`
}

// Validate validates the account fields and every history entry.
func (a *Account) Validate() error {
	if a.AccountNumber == "" {
		return ErrMissingAccountNumber
	}

	if a.PIN == "" {
		return ErrMissingPIN
	}

	if a.Balance.LessThan(decimal.Zero) {
		return ErrInvalidBalance
	}

	for i := range a.History {
		if err := a.History[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// CanWithdraw checks if the amount can be withdrawn
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero) && a.Balance.GreaterThanOrEqual(amount)
}

// Debit debits the account. The balance never goes negative; the check runs
// before any mutation.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit credits the account
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	a.Balance = a.Balance.Add(amount)
	return nil
}

// AppendTransaction is the only writer of History: it stamps the current
// time and enforces the MaxHistoryEntries cap, oldest-first eviction.
func (a *Account) AppendTransaction(transactionType string, amount decimal.Decimal, targetAccount string) Transaction {
	entry := NewTransaction(transactionType, amount, targetAccount)
	a.History = append(a.History, entry)
	if len(a.History) > MaxHistoryEntries {
		a.History = a.History[len(a.History)-MaxHistoryEntries:]
	}
	return entry
}

// RecentTransactions returns up to the last n history entries,
// most-recent-first. The result is a copy; callers cannot mutate History
// through it.
func (a *Account) RecentTransactions(n int) []Transaction {
	if n <= 0 || len(a.History) == 0 {
		return []Transaction{}
	}

	if n > len(a.History) {
		n = len(a.History)
	}

	out := make([]Transaction, 0, n)
	for i := len(a.History) - 1; i >= len(a.History)-n; i-- {
		out = append(out, a.History[i])
	}
	return out
}
