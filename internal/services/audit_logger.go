package services

import (
	"log/slog"
	"time"
)

type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) LogLoginSucceeded(accountNumber string) {
	al.logger.Info("login succeeded",
		slog.String("event_type", "login_succeeded"),
		slog.String("account_number", accountNumber),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *AuditLogger) LogLoginFailed(accountNumber, reason string) {
	al.logger.Warn("login failed",
		slog.String("event_type", "login_failed"),
		slog.String("account_number", accountNumber),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *AuditLogger) LogLogout(accountNumber string) {
	al.logger.Info("logout",
		slog.String("event_type", "logout"),
		slog.String("account_number", accountNumber),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *AuditLogger) LogBalanceUpdate(accountNumber, oldBalance, newBalance, reference string) {
	al.logger.Info("balance update",
		slog.String("event_type", "balance_update"),
		slog.String("account_number", accountNumber),
		slog.String("old_balance", oldBalance),
		slog.String("new_balance", newBalance),
		slog.String("reference", reference),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *AuditLogger) LogTransferCompleted(fromAccount, toAccount, amount, outReference, inReference string) {
	al.logger.Info("transfer completed",
		slog.String("event_type", "transfer_completed"),
		slog.String("from_account", fromAccount),
		slog.String("to_account", toAccount),
		slog.String("amount", amount),
		slog.String("out_reference", outReference),
		slog.String("in_reference", inReference),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *AuditLogger) LogPersistenceFailure(operation string, err error) {
	al.logger.Warn("persistence failure",
		slog.String("event_type", "persistence_failure"),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.Time("timestamp", time.Now()),
	)
}
