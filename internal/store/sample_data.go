package store

import (
	"atm-simulator/internal/models"

	"github.com/shopspring/decimal"
)

// sampleAccounts is the fixed bootstrap set, seeded whenever no usable
// persisted state exists. Accounts are never created at runtime.
var sampleAccounts = []models.Account{
	{AccountNumber: "1234567890", PIN: "1234", Balance: decimal.NewFromFloat(1000.00), History: []models.Transaction{}},
	{AccountNumber: "0987654321", PIN: "5678", Balance: decimal.NewFromFloat(500.00), History: []models.Transaction{}},
	{AccountNumber: "5555555555", PIN: "0000", Balance: decimal.NewFromFloat(2500.00), History: []models.Transaction{}},
	{AccountNumber: "63799912940", PIN: "2003", Balance: decimal.NewFromFloat(3400.00), History: []models.Transaction{}},
}
