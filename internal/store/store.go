package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"

	"atm-simulator/internal/models"
	"atm-simulator/internal/validation"
)

var ErrAccountNotFound = errors.New("account not found")

// accountRecord is the persisted shape of an account. Overriding the decimal
// fields with json.Number keeps balances and amounts as bare JSON numbers in
// the data file without touching decimal's package-global marshal mode.
// decimal.Decimal unmarshals bare numbers natively, so Load reads
// models.Account directly.
type accountRecord struct {
	models.Account
	Balance json.Number         `json:"balance"`
	History []transactionRecord `json:"transaction_history"`
}

type transactionRecord struct {
	models.Transaction
	Amount json.Number `json:"amount"`
}

func newAccountRecord(account *models.Account) accountRecord {
	history := make([]transactionRecord, len(account.History))
	for i, entry := range account.History {
		history[i] = transactionRecord{
			Transaction: entry,
			Amount:      json.Number(entry.Amount.String()),
		}
	}
	return accountRecord{
		Account: *account,
		Balance: json.Number(account.Balance.String()),
		History: history,
	}
}

// Store owns the full set of account records and their durability. Load seeds
// sample accounts when no usable state exists; Save rewrites the whole data
// file. Find hands out the live record, so mutations made by a session are
// picked up by the next Save.
type Store interface {
	Load() error
	Save() error
	Find(accountNumber string) (*models.Account, error)
	Accounts() []*models.Account
}

type jsonStore struct {
	dataFile  string
	accounts  map[string]*models.Account
	validator *validation.Validator
	logger    *slog.Logger
}

// NewJSONStore creates a store backed by a pretty-printed JSON file keyed by
// account number.
func NewJSONStore(dataFile string, logger *slog.Logger) Store {
	return &jsonStore{
		dataFile:  dataFile,
		accounts:  make(map[string]*models.Account),
		validator: validation.GetValidator(),
		logger:    logger,
	}
}

// Load reads persisted state into memory. A missing file, unreadable JSON, or
// records failing validation all fail soft: the condition is logged and the
// fixed sample accounts are seeded and persisted immediately. This is the only
// path that creates accounts.
func (s *jsonStore) Load() error {
	data, err := os.ReadFile(s.dataFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("no accounts file found, creating sample accounts", "data_file", s.dataFile)
		} else {
			s.logger.Warn("failed to read accounts file, creating sample accounts", "data_file", s.dataFile, "error", err)
		}
		return s.seedSampleAccounts()
	}

	loaded := make(map[string]*models.Account)
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("failed to parse accounts file, creating sample accounts", "data_file", s.dataFile, "error", err)
		return s.seedSampleAccounts()
	}

	accounts := make(map[string]*models.Account, len(loaded))
	for _, account := range loaded {
		// Tag validation covers the field formats; Account.Validate walks the
		// history entries, which carry no tags.
		if err := s.validator.Struct(account); err != nil {
			s.logger.Warn("accounts file contains an invalid record, creating sample accounts",
				"data_file", s.dataFile, "account_number", account.AccountNumber, "error", err)
			return s.seedSampleAccounts()
		}
		if err := account.Validate(); err != nil {
			s.logger.Warn("accounts file contains an invalid record, creating sample accounts",
				"data_file", s.dataFile, "account_number", account.AccountNumber, "error", err)
			return s.seedSampleAccounts()
		}
		accounts[account.AccountNumber] = account
	}

	s.accounts = accounts
	s.logger.Info("accounts loaded", "data_file", s.dataFile, "count", len(s.accounts))
	return nil
}

// Save serializes the full account map to the data file, overwriting prior
// content. The write goes to a temp file first and is renamed into place so a
// failed write never corrupts the previous state.
func (s *jsonStore) Save() error {
	records := make(map[string]accountRecord, len(s.accounts))
	for number, account := range s.accounts {
		records[number] = newAccountRecord(account)
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to serialize accounts: %w", err)
	}

	tmp := s.dataFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write accounts file: %w", err)
	}

	if err := os.Rename(tmp, s.dataFile); err != nil {
		return fmt.Errorf("failed to replace accounts file: %w", err)
	}

	return nil
}

// Find returns the record for the given account number or ErrAccountNotFound.
func (s *jsonStore) Find(accountNumber string) (*models.Account, error) {
	account, ok := s.accounts[accountNumber]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Accounts returns all records ordered by account number.
func (s *jsonStore) Accounts() []*models.Account {
	out := make([]*models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AccountNumber < out[j].AccountNumber
	})
	return out
}

func (s *jsonStore) seedSampleAccounts() error {
	s.accounts = make(map[string]*models.Account, len(sampleAccounts))
	for _, sample := range sampleAccounts {
		account := sample
		s.accounts[account.AccountNumber] = &account
	}

	if err := s.Save(); err != nil {
		return fmt.Errorf("failed to persist sample accounts: %w", err)
	}

	s.logger.Info("sample accounts created", "data_file", s.dataFile, "count", len(s.accounts))
	return nil
}
