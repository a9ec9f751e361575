package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeLogin        = "LOGIN"
	TransactionTypeLogout       = "LOGOUT"
	TransactionTypeBalanceCheck = "BALANCE_CHECK"
	TransactionTypeWithdrawal   = "WITHDRAWAL"
	TransactionTypeDeposit      = "DEPOSIT"
	TransactionTypeTransferOut  = "TRANSFER_OUT"
	TransactionTypeTransferIn   = "TRANSFER_IN"
)

// TimestampLayout orders lexicographically, so persisted history stays
// sortable as plain strings.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAmount          = errors.New("transaction amount must be positive")
	ErrUnexpectedAmount       = errors.New("transaction type does not carry an amount")
	ErrMissingTargetAccount   = errors.New("target account is required for transfers")
	ErrMissingTimestamp       = errors.New("transaction timestamp is required")
)

// Transaction represents a single entry in an account's history.
// TargetAccount is set only for transfers: the recipient on TRANSFER_OUT,
// the sender on TRANSFER_IN.
type Transaction struct {
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     string          `json:"timestamp"`
	TargetAccount string          `json:"target_account,omitempty"`
	Reference     string          `json:"reference,omitempty"`
}

// NewTransaction builds an entry stamped with the current time and a fresh
// reference.
func NewTransaction(transactionType string, amount decimal.Decimal, targetAccount string) Transaction {
	return Transaction{
		Type:          transactionType,
		Amount:        amount,
		Timestamp:     time.Now().Format(TimestampLayout),
		TargetAccount: targetAccount,
		Reference:     GenerateTransactionReference(),
	}
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if !IsValidTransactionType(t.Type) {
		return ErrInvalidTransactionType
	}

	switch t.Type {
	case TransactionTypeLogin, TransactionTypeLogout, TransactionTypeBalanceCheck:
		if !t.Amount.IsZero() {
			return ErrUnexpectedAmount
		}
	default:
		if t.Amount.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidAmount
		}
	}

	if t.IsTransfer() && t.TargetAccount == "" {
		return ErrMissingTargetAccount
	}

	if t.Timestamp == "" {
		return ErrMissingTimestamp
	}

	return nil
}

// IsTransfer returns true for the two directional transfer entry types.
func (t *Transaction) IsTransfer() bool {
	return t.Type == TransactionTypeTransferOut || t.Type == TransactionTypeTransferIn
}

// IsValidTransactionType checks if the transaction type is valid
func IsValidTransactionType(transactionType string) bool {
	switch transactionType {
	case TransactionTypeLogin, TransactionTypeLogout, TransactionTypeBalanceCheck,
		TransactionTypeWithdrawal, TransactionTypeDeposit,
		TransactionTypeTransferOut, TransactionTypeTransferIn:
		return true
	default:
		return false
	}
}

// GenerateTransactionReference generates a unique transaction reference
func GenerateTransactionReference() string {
	return "TXN-" + uuid.New().String()[:8] + "-" + time.Now().Format("20060102150405")
}
