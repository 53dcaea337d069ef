package tracker

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"portfoliotracker/pkg/portfolio"
)

const defaultTransactionLimit = 100

const transactionColumns = `id, ticker, name, asset_type, transaction_type,
	quantity, price, transaction_date, transaction_time`

// AddTransaction validates and inserts a new transaction and returns its ID.
func (c *Core) AddTransaction(in TransactionInput) (string, error) {
	t, err := c.validateInput(in)
	if err != nil {
		return "", err
	}
	t.ID = uuid.NewString()

	_, err = c.db.Exec(`
		INSERT INTO transactions (
			id, ticker, name, asset_type, transaction_type,
			quantity, price, transaction_date, transaction_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.Ticker, t.Name, string(t.AssetType), string(t.Type),
		t.Quantity, t.Price, t.Date, nullString(t.Time),
	)
	if err != nil {
		return "", WrapError(ErrCodeDatabase, "insert transaction", err)
	}
	c.positions.invalidate()
	c.logger.Info("transaction added", "id", t.ID, "ticker", t.Ticker, "type", t.Type)
	return t.ID, nil
}

// UpdateTransaction replaces every field of an existing transaction.
func (c *Core) UpdateTransaction(id string, in TransactionInput) error {
	t, err := c.validateInput(in)
	if err != nil {
		return err
	}
	err = c.WithTx(context.Background(), func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE transactions SET
				ticker = ?, name = ?, asset_type = ?, transaction_type = ?,
				quantity = ?, price = ?, transaction_date = ?, transaction_time = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`,
			t.Ticker, t.Name, string(t.AssetType), string(t.Type),
			t.Quantity, t.Price, t.Date, nullString(t.Time), id,
		)
		if err != nil {
			return WrapError(ErrCodeDatabase, "update transaction", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return WrapError(ErrCodeDatabase, "update transaction", err)
		}
		if affected == 0 {
			return NewError(ErrCodeNotFound, "transaction not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.positions.invalidate()
	return nil
}

// DeleteTransaction deletes a transaction by ID.
func (c *Core) DeleteTransaction(id string) (bool, error) {
	result, err := c.db.Exec("DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete transaction", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete transaction", err)
	}
	if affected > 0 {
		c.positions.invalidate()
	}
	return affected > 0, nil
}

// GetTransaction fetches a single transaction by ID. It returns nil when no
// such transaction exists.
func (c *Core) GetTransaction(id string) (*portfolio.Transaction, error) {
	row := c.db.QueryRow("SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "get transaction", err)
	}
	return &t, nil
}

// GetTransactions returns transactions matching the filter, newest first.
func (c *Core) GetTransactions(filter TransactionFilter) ([]portfolio.Transaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	where, params, err := filterClause(filter)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + transactionColumns + " FROM transactions" + where +
		" ORDER BY transaction_date DESC, transaction_time DESC, id DESC LIMIT ? OFFSET ?"
	params = append(params, limit, offset)
	return c.queryTransactions(query, params...)
}

// GetTransactionCount returns the number of transactions matching the
// filter, ignoring Limit and Offset.
func (c *Core) GetTransactionCount(filter TransactionFilter) (int, error) {
	where, params, err := filterClause(filter)
	if err != nil {
		return 0, err
	}
	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM transactions"+where, params...).Scan(&count); err != nil {
		return 0, WrapError(ErrCodeDatabase, "count transactions", err)
	}
	return count, nil
}

// AllTransactions returns the whole ledger in storage order.
func (c *Core) AllTransactions() ([]portfolio.Transaction, error) {
	return c.queryTransactions("SELECT " + transactionColumns + " FROM transactions ORDER BY transaction_date, id")
}

func (c *Core) queryTransactions(query string, params ...any) ([]portfolio.Transaction, error) {
	rows, err := c.db.Query(query, params...)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query transactions", err)
	}
	defer rows.Close()

	results := []portfolio.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan transaction", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "query transactions", err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (portfolio.Transaction, error) {
	var t portfolio.Transaction
	var name, clock sql.NullString
	var assetType, typ string
	if err := row.Scan(
		&t.ID, &t.Ticker, &name, &assetType, &typ,
		&t.Quantity, &t.Price, &t.Date, &clock,
	); err != nil {
		return portfolio.Transaction{}, err
	}
	t.Name = name.String
	t.AssetType = portfolio.NormalizeAssetType(assetType)
	t.Type = portfolio.TransactionType(typ)
	t.Time = clock.String
	return t, nil
}

func filterClause(filter TransactionFilter) (string, []any, error) {
	var conds []string
	params := []any{}

	if filter.Ticker != "" {
		conds = append(conds, "ticker = ?")
		params = append(params, normalizeTicker(filter.Ticker))
	}
	if filter.AssetType != "" {
		conds = append(conds, "asset_type = ?")
		params = append(params, string(portfolio.NormalizeAssetType(filter.AssetType)))
	}
	if filter.TransactionType != "" {
		typ, err := portfolio.ParseTransactionType(filter.TransactionType)
		if err != nil {
			return "", nil, invalidInput("invalid transaction type: %q", filter.TransactionType)
		}
		conds = append(conds, "transaction_type = ?")
		params = append(params, string(typ))
	}
	if filter.StartDate != "" {
		conds = append(conds, "transaction_date >= ?")
		params = append(params, filter.StartDate)
	}
	if filter.EndDate != "" {
		conds = append(conds, "transaction_date <= ?")
		params = append(params, filter.EndDate)
	}

	if len(conds) == 0 {
		return "", params, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), params, nil
}
