package services

import (
	"atm-simulator/internal/models"

	"github.com/shopspring/decimal"
)

// SessionServiceInterface defines the banking operations available to one
// terminal session. A session holds zero or one authenticated account; every
// operation other than Login and Logout requires authentication.
type SessionServiceInterface interface {
	Login(accountNumber, pin string) error
	Logout()
	IsAuthenticated() bool
	CurrentAccountNumber() string
	CurrentBalance() decimal.Decimal
	CheckBalance() (decimal.Decimal, error)
	Withdraw(amount decimal.Decimal) (decimal.Decimal, error)
	Deposit(amount decimal.Decimal) (decimal.Decimal, error)
	Transfer(targetAccountNumber string, amount decimal.Decimal) (decimal.Decimal, error)
	RecentTransactions(n int) ([]models.Transaction, error)
}

// AuditLoggerInterface defines the contract for structured audit events
type AuditLoggerInterface interface {
	LogLoginSucceeded(accountNumber string)
	LogLoginFailed(accountNumber, reason string)
	LogLogout(accountNumber string)
	LogBalanceUpdate(accountNumber, oldBalance, newBalance, reference string)
	LogTransferCompleted(fromAccount, toAccount, amount, outReference, inReference string)
	LogPersistenceFailure(operation string, err error)
}
