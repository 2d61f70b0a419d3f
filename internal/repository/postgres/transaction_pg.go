// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"bidflow/internal/domain"
	"bidflow/internal/repository"

	"github.com/jmoiron/sqlx"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct {
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends a new ledger entry using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (reference, type, amount, from_owner, to_owner, status, listing_id, order_id, memo, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.Reference,
		transaction.Type,
		transaction.Amount,
		transaction.FromOwner,
		transaction.ToOwner,
		transaction.Status,
		transaction.ListingID,
		transaction.OrderID,
		transaction.Memo,
		transaction.CreatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionsByOwner retrieves a paginated ledger history for an owner.
// It performs two queries: one for the data and one for the total count.
func (r *TransactionRepository) GetTransactionsByOwner(ctx context.Context, q repository.DBExecutor, owner string, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT id, reference, type, amount, from_owner, to_owner, status, listing_id, order_id, memo, created_at
		FROM transactions
		WHERE from_owner = $1 OR to_owner = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &transactions, query, owner, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for owner %s: %w", owner, err)
	}

	var totalCount int64
	countQuery := `
		SELECT COUNT(*)
		FROM transactions
		WHERE from_owner = $1 OR to_owner = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, owner)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for owner %s: %w", owner, err)
	}

	return transactions, totalCount, nil
}
