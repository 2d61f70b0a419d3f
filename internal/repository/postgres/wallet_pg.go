// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bidflow/internal/domain"
	"bidflow/internal/repository"
	"bidflow/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct {
	// Methods receive a DBExecutor directly, so no connection is held here.
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a new wallet using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (owner, role, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query, wallet.Owner, wallet.Role, wallet.Balance, wallet.CreatedAt, wallet.UpdatedAt).Scan(&wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByOwner retrieves a wallet by its owner identity.
func (r *WalletRepository) GetWalletByOwner(ctx context.Context, q repository.DBExecutor, owner string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, owner, role, balance, created_at, updated_at FROM wallets WHERE owner = $1`
	err := q.GetContext(ctx, &wallet, query, owner)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for owner %s: %w", owner, err)
	}
	return &wallet, nil
}

// EnsureWallet returns the owner's wallet, creating an empty one on first use.
// The insert is a no-op when the wallet already exists, so concurrent
// callers converge on the same row.
func (r *WalletRepository) EnsureWallet(ctx context.Context, q repository.DBExecutor, owner string, role domain.WalletRole) (*domain.Wallet, error) {
	now := time.Now().UTC()
	insert := `INSERT INTO wallets (owner, role, balance, created_at, updated_at)
               VALUES ($1, $2, 0, $3, $3)
               ON CONFLICT (owner) DO NOTHING`
	if _, err := q.ExecContext(ctx, insert, owner, role, now); err != nil {
		return nil, fmt.Errorf("failed to ensure wallet for owner %s: %w", owner, err)
	}
	return r.GetWalletByOwner(ctx, q, owner)
}

// AdjustBalance applies a signed delta atomically. The WHERE clause keeps
// the non-negative invariant inside the database so there is no
// read-modify-write race; zero rows affected on an existing wallet means
// the delta would have driven the balance negative.
func (r *WalletRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, owner string, delta decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = $2
              WHERE owner = $3 AND balance + $1 >= 0`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), owner)
	if err != nil {
		return fmt.Errorf("failed to adjust balance for owner %s: %w", owner, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected adjusting balance for owner %s: %w", owner, err)
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetWalletByOwner(ctx, q, owner); getErr != nil {
			return util.ErrWalletNotFound
		}
		return util.ErrInsufficientBalance
	}
	return nil
}
