package services

import (
	"errors"
	"log/slog"
	"time"

	"atm-simulator/internal/models"
	"atm-simulator/internal/store"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidCredentials   = errors.New("invalid account number or PIN")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrSessionActive        = errors.New("a session is already active")
	ErrTooManyLoginAttempts = errors.New("too many failed login attempts")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrTargetNotFound       = errors.New("target account not found")
	ErrSameAccountTransfer  = errors.New("cannot transfer to your own account")
)

const defaultRecentTransactionCount = 5

// SessionOptions tunes a session service. Zero values fall back to the
// defaults below.
type SessionOptions struct {
	RecentTransactionCount int
	FailedLoginInterval    time.Duration
	FailedLoginBurst       int
}

// sessionService implements SessionServiceInterface. One instance represents
// one terminal session; the authenticated account lives on the session, not in
// process-wide state, so independent sessions could coexist.
type sessionService struct {
	store        store.Store
	audit        AuditLoggerInterface
	logger       *slog.Logger
	recentCount  int
	failedLogins *rate.Limiter
	current      *models.Account
}

// NewSessionService creates a session service bound to a store.
func NewSessionService(st store.Store, audit AuditLoggerInterface, logger *slog.Logger, opts SessionOptions) SessionServiceInterface {
	if opts.RecentTransactionCount <= 0 {
		opts.RecentTransactionCount = defaultRecentTransactionCount
	}
	if opts.FailedLoginInterval <= 0 {
		opts.FailedLoginInterval = 30 * time.Second
	}
	if opts.FailedLoginBurst <= 0 {
		opts.FailedLoginBurst = 5
	}

	return &sessionService{
		store:        st,
		audit:        audit,
		logger:       logger,
		recentCount:  opts.RecentTransactionCount,
		failedLogins: rate.NewLimiter(rate.Every(opts.FailedLoginInterval), opts.FailedLoginBurst),
	}
}

// Login authenticates an account by number and PIN. Unknown account and wrong
// PIN both report ErrInvalidCredentials and append nothing. A successful login
// appends a LOGIN entry and persists. Failed attempts drain a token bucket;
// once it is empty every attempt is rejected with ErrTooManyLoginAttempts
// until the bucket refills.
func (s *sessionService) Login(accountNumber, pin string) error {
	if s.current != nil {
		return ErrSessionActive
	}

	if s.failedLogins.Tokens() < 1 {
		s.audit.LogLoginFailed(accountNumber, "throttled")
		return ErrTooManyLoginAttempts
	}

	account, err := s.store.Find(accountNumber)
	if err != nil {
		s.failedLogins.Allow()
		s.audit.LogLoginFailed(accountNumber, "account not found")
		return ErrInvalidCredentials
	}

	if account.PIN != pin {
		s.failedLogins.Allow()
		s.audit.LogLoginFailed(accountNumber, "wrong PIN")
		return ErrInvalidCredentials
	}

	s.current = account
	account.AppendTransaction(models.TransactionTypeLogin, decimal.Zero, "")
	s.persist("login")
	s.audit.LogLoginSucceeded(accountNumber)
	return nil
}

// Logout appends a LOGOUT entry, persists, and clears the current account.
// A no-op when no account is authenticated.
func (s *sessionService) Logout() {
	if s.current == nil {
		return
	}

	accountNumber := s.current.AccountNumber
	s.current.AppendTransaction(models.TransactionTypeLogout, decimal.Zero, "")
	s.persist("logout")
	s.current = nil
	s.audit.LogLogout(accountNumber)
}

// IsAuthenticated reports whether an account is currently authenticated.
func (s *sessionService) IsAuthenticated() bool {
	return s.current != nil
}

// CurrentAccountNumber returns the authenticated account number, or "" when
// anonymous.
func (s *sessionService) CurrentAccountNumber() string {
	if s.current == nil {
		return ""
	}
	return s.current.AccountNumber
}

// CurrentBalance returns the authenticated account's balance for display
// surfaces; unlike CheckBalance it leaves the history untouched. Zero when
// anonymous.
func (s *sessionService) CurrentBalance() decimal.Decimal {
	if s.current == nil {
		return decimal.Zero
	}
	return s.current.Balance
}

// CheckBalance returns the current balance. The balance itself is untouched,
// but a BALANCE_CHECK entry lands in the history, so the store persists.
func (s *sessionService) CheckBalance() (decimal.Decimal, error) {
	if s.current == nil {
		return decimal.Zero, ErrNotAuthenticated
	}

	s.current.AppendTransaction(models.TransactionTypeBalanceCheck, decimal.Zero, "")
	s.persist("balance check")
	return s.current.Balance, nil
}

// Withdraw debits the current account and returns the new balance.
func (s *sessionService) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	if s.current == nil {
		return decimal.Zero, ErrNotAuthenticated
	}

	before := s.current.Balance
	if err := s.current.Debit(amount); err != nil {
		return decimal.Zero, sessionError(err)
	}
	entry := s.current.AppendTransaction(models.TransactionTypeWithdrawal, amount, "")
	s.persist("withdraw")
	s.audit.LogBalanceUpdate(s.current.AccountNumber, before.StringFixed(2), s.current.Balance.StringFixed(2), entry.Reference)
	return s.current.Balance, nil
}

// Deposit credits the current account and returns the new balance.
func (s *sessionService) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if s.current == nil {
		return decimal.Zero, ErrNotAuthenticated
	}

	before := s.current.Balance
	if err := s.current.Credit(amount); err != nil {
		return decimal.Zero, sessionError(err)
	}
	entry := s.current.AppendTransaction(models.TransactionTypeDeposit, amount, "")
	s.persist("deposit")
	s.audit.LogBalanceUpdate(s.current.AccountNumber, before.StringFixed(2), s.current.Balance.StringFixed(2), entry.Reference)
	return s.current.Balance, nil
}

// Transfer moves amount from the current account to the target account and
// returns the sender's new balance. The checks run in a fixed order — amount
// validity, funds sufficiency, target existence, self-transfer — so exactly
// one error surfaces when several conditions hold at once.
func (s *sessionService) Transfer(targetAccountNumber string, amount decimal.Decimal) (decimal.Decimal, error) {
	if s.current == nil {
		return decimal.Zero, ErrNotAuthenticated
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}

	if !s.current.CanWithdraw(amount) {
		return decimal.Zero, ErrInsufficientFunds
	}

	target, err := s.store.Find(targetAccountNumber)
	if err != nil {
		return decimal.Zero, ErrTargetNotFound
	}

	if targetAccountNumber == s.current.AccountNumber {
		return decimal.Zero, ErrSameAccountTransfer
	}

	if err := s.current.Debit(amount); err != nil {
		return decimal.Zero, sessionError(err)
	}
	if err := target.Credit(amount); err != nil {
		return decimal.Zero, sessionError(err)
	}

	outEntry := s.current.AppendTransaction(models.TransactionTypeTransferOut, amount, targetAccountNumber)
	inEntry := target.AppendTransaction(models.TransactionTypeTransferIn, amount, s.current.AccountNumber)

	s.persist("transfer")
	s.audit.LogTransferCompleted(s.current.AccountNumber, targetAccountNumber, amount.StringFixed(2), outEntry.Reference, inEntry.Reference)
	return s.current.Balance, nil
}

// RecentTransactions returns up to the last n history entries of the current
// account, most-recent-first. n <= 0 selects the configured default.
func (s *sessionService) RecentTransactions(n int) ([]models.Transaction, error) {
	if s.current == nil {
		return nil, ErrNotAuthenticated
	}

	if n <= 0 {
		n = s.recentCount
	}
	return s.current.RecentTransactions(n), nil
}

// sessionError maps the account model's errors onto the session sentinels, so
// the non-negative-balance rule has exactly one enforcer in the model.
func sessionError(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		return ErrInvalidAmount
	case errors.Is(err, models.ErrInsufficientFunds):
		return ErrInsufficientFunds
	default:
		return err
	}
}

// persist writes the full account set after a mutation. A save failure is
// reported and logged but the in-memory mutation stays applied; the operation
// already succeeded from the caller's point of view.
func (s *sessionService) persist(operation string) {
	if err := s.store.Save(); err != nil {
		s.logger.Warn("failed to persist accounts", "operation", operation, "error", err)
		s.audit.LogPersistenceFailure(operation, err)
	}
}
