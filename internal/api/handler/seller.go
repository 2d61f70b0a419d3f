// internal/api/handler/seller.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"bidflow/internal/commission"
	"bidflow/internal/domain"
	"bidflow/internal/repository"
	"bidflow/internal/util"
)

// SellerHandler exposes the commission tier a seller currently qualifies
// for, derived from their settled order history, with an optional fee
// preview for a prospective fixed-price sale.
type SellerHandler struct {
	orderRepo  repository.OrderRepository
	dbExecutor repository.DBExecutor
	tiers      domain.TierTable
	logger     *slog.Logger
}

// NewSellerHandler creates a new SellerHandler.
func NewSellerHandler(
	orderRepo repository.OrderRepository,
	dbExecutor repository.DBExecutor,
	tiers domain.TierTable,
	logger *slog.Logger,
) *SellerHandler {
	return &SellerHandler{
		orderRepo:  orderRepo,
		dbExecutor: dbExecutor,
		tiers:      tiers,
		logger:     logger,
	}
}

// GetTier handles GET /sellers/{owner}/tier. With a ?price= query
// parameter it also previews the fixed-price commission split at that
// price under the seller's current tier.
func (h *SellerHandler) GetTier(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	if owner == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	sales, revenue, err := h.orderRepo.GetSellerStats(r.Context(), h.dbExecutor, owner)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	tier := h.tiers.Select(sales, revenue)

	payload := map[string]interface{}{
		"owner":        owner,
		"tier":         tier.Name,
		"seller_share": tier.SellerShare,
		"sales":        sales,
		"revenue":      revenue,
	}

	if raw := r.URL.Query().Get("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil || price.LessThanOrEqual(decimal.Zero) {
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
		payload["fee_preview"] = commission.FixedPrice(price, tier)
	}

	respondWithJSON(w, h.logger, http.StatusOK, payload)
}
