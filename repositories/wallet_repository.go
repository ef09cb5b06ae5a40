package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenaops/arena-server/models"
	"github.com/lib/pq"
)

var ErrTransactionInvalidUser = errors.New("wallet transaction references a missing user")

// WalletRepository manages the append-only ledger. There is deliberately no
// update or delete: entries are immutable facts.
type WalletRepository interface {
	Append(ctx context.Context, exec SQLExecutor, tx *models.WalletTransaction) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.WalletTransaction, error)
}

type postgresWalletRepository struct {
	db *sql.DB
}

func NewPostgresWalletRepository(db *sql.DB) WalletRepository {
	return &postgresWalletRepository{db: db}
}

func (r *postgresWalletRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresWalletRepository) Append(ctx context.Context, exec SQLExecutor, tx *models.WalletTransaction) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO wallet_transactions (id, user_id, type, amount, status, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.Type,
		tx.Amount,
		tx.Status,
		tx.ReferenceID,
	).Scan(&tx.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTransactionInvalidUser
		}
		return fmt.Errorf("failed to append wallet transaction: %w", err)
	}
	return nil
}

func (r *postgresWalletRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.WalletTransaction, error) {
	query := `
		SELECT id, user_id, type, amount, status, reference_id, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.WalletTransaction, 0)
	for rows.Next() {
		var t models.WalletTransaction
		if scanErr := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Status, &t.ReferenceID, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}
