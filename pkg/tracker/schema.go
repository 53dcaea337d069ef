package tracker

import (
	"context"
	"database/sql"
	"log/slog"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		ticker TEXT NOT NULL,
		name TEXT,
		asset_type TEXT NOT NULL DEFAULT 'Stock',
		transaction_type TEXT NOT NULL CHECK(transaction_type IN ('Buy', 'Sell')),
		quantity TEXT NOT NULL,
		price TEXT NOT NULL,
		transaction_date TEXT NOT NULL,
		transaction_time TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	"CREATE INDEX IF NOT EXISTS idx_transactions_ticker ON transactions(ticker)",
	"CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date)",
	`CREATE TABLE IF NOT EXISTS latest_prices (
		ticker TEXT PRIMARY KEY,
		current_price TEXT NOT NULL,
		price_change_24h TEXT NOT NULL DEFAULT '0',
		name TEXT,
		logo TEXT,
		source TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

func initDatabase(db *sql.DB, logger *slog.Logger) error {
	return runTx(context.Background(), db, logger, func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
