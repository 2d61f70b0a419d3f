// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"bidflow/internal/domain"
)

// TransactionRepository defines the interface for ledger entry operations.
// The ledger is append-only; there is deliberately no update method.
type TransactionRepository interface {
	// CreateTransaction appends a new ledger entry using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByOwner retrieves ledger history touching an owner,
	// newest first, with the total count for pagination.
	GetTransactionsByOwner(ctx context.Context, q DBExecutor, owner string, limit, offset int) ([]domain.Transaction, int64, error)
}
