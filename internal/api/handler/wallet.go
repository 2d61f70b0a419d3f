// internal/api/handler/wallet.go
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bidflow/internal/api/types"
	"bidflow/internal/domain"
	"bidflow/internal/repository"
	"bidflow/internal/util"
	"bidflow/pkg/db"
)

// WalletHandler handles HTTP requests related to wallet operations. The
// funding path is intentionally thin: it exists so bidders have a balance
// the escrow manager can hold against.
type WalletHandler struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
	logger          *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) *WalletHandler {
	return &WalletHandler{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		logger:          logger,
	}
}

// GetBalance handles GET /wallets/{owner}/balance.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	if owner == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	wallet, err := h.walletRepo.GetWalletByOwner(r.Context(), h.dbExecutor, owner)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"owner":   wallet.Owner,
		"role":    wallet.Role,
		"balance": wallet.Balance,
	})
}

// GetTransactions handles GET /wallets/{owner}/transactions.
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	if owner == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)
	if limit <= 0 || limit > 100 || offset < 0 {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	transactions, totalCount, err := h.transactionRepo.GetTransactionsByOwner(r.Context(), h.dbExecutor, owner, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}

// DepositRequest represents the request body for a deposit.
type DepositRequest struct {
	Amount decimal.Decimal   `json:"amount"`
	Role   domain.WalletRole `json:"role"`
}

// Deposit handles POST /wallets/{owner}/deposit. The wallet is created
// lazily on first use.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	if owner == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	role := req.Role
	if role == "" {
		role = domain.WalletRoleBuyer
	}

	wallet, err := h.deposit(r.Context(), owner, role, req.Amount)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":     "Deposit successful",
		"owner":       wallet.Owner,
		"new_balance": wallet.Balance,
	})
}

func (h *WalletHandler) deposit(ctx context.Context, owner string, role domain.WalletRole, amount decimal.Decimal) (*domain.Wallet, error) {
	txController, err := h.beginTx(ctx, h.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("deposit: failed to begin transaction: %w", err)
	}
	defer h.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("deposit: transaction controller does not implement DBExecutor")
	}

	if _, err := h.walletRepo.EnsureWallet(ctx, txExecutor, owner, role); err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	if err := h.walletRepo.AdjustBalance(ctx, txExecutor, owner, amount); err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	// Re-read inside the transaction so the reported balance reflects
	// this deposit and any concurrent holds, not a stale snapshot.
	wallet, err := h.walletRepo.GetWalletByOwner(ctx, txExecutor, owner)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}

	transaction := domain.NewTransaction(
		uuid.NewString(),
		domain.TransactionTypeDeposit,
		amount,
		nil,
		&owner,
		nil,
		nil,
		nil,
	)
	if err := h.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}

	if err := h.commitTx(txController); err != nil {
		return nil, fmt.Errorf("deposit: failed to commit transaction: %w", err)
	}
	return wallet, nil
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
