// internal/api/handler/auction.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"bidflow/internal/domain"
	"bidflow/internal/repository"
	"bidflow/internal/service"
	"bidflow/internal/util"
)

// AuctionHandler handles the auction-facing HTTP surface: listing creation,
// bidding, cancellation, manual settlement, and the operator endpoints.
type AuctionHandler struct {
	auctions    service.AuctionService
	settlement  service.SettlementService
	sweeper     *service.Sweeper
	listingRepo repository.ListingRepository
	dbExecutor  repository.DBExecutor
	logger      *slog.Logger
}

// NewAuctionHandler creates a new AuctionHandler.
func NewAuctionHandler(
	auctions service.AuctionService,
	settlement service.SettlementService,
	sweeper *service.Sweeper,
	listingRepo repository.ListingRepository,
	dbExecutor repository.DBExecutor,
	logger *slog.Logger,
) *AuctionHandler {
	return &AuctionHandler{
		auctions:    auctions,
		settlement:  settlement,
		sweeper:     sweeper,
		listingRepo: listingRepo,
		dbExecutor:  dbExecutor,
		logger:      logger,
	}
}

// CreateListingRequest represents the request body for listing creation.
type CreateListingRequest struct {
	Seller        string           `json:"seller"`
	Title         string           `json:"title"`
	StartingPrice decimal.Decimal  `json:"starting_price"`
	MinIncrement  decimal.Decimal  `json:"min_increment"`
	ReservePrice  *decimal.Decimal `json:"reserve_price,omitempty"`
	EndTime       time.Time        `json:"end_time"`
}

// CreateListing handles POST /listings.
func (h *AuctionHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	listing, err := h.auctions.CreateListing(r.Context(), service.CreateListingInput{
		Seller:        req.Seller,
		Title:         req.Title,
		StartingPrice: req.StartingPrice,
		MinIncrement:  req.MinIncrement,
		ReservePrice:  req.ReservePrice,
		EndTime:       req.EndTime,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, listing)
}

// PlaceBidRequest represents the request body for bid placement.
type PlaceBidRequest struct {
	Bidder string          `json:"bidder"`
	Amount decimal.Decimal `json:"amount"`
}

// PlaceBid handles POST /listings/{listingID}/bids.
func (h *AuctionHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	bid, err := h.auctions.PlaceBid(r.Context(), listingID, req.Bidder, req.Amount)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, bid)
}

// CancelAuctionRequest represents the request body for cancellation.
type CancelAuctionRequest struct {
	By string `json:"by"`
}

// CancelAuction handles POST /listings/{listingID}/cancel.
func (h *AuctionHandler) CancelAuction(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req CancelAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	if err := h.auctions.CancelAuction(r.Context(), listingID, req.By); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{
		"message":    "Auction cancelled",
		"listing_id": listingID,
	})
}

// Settle handles POST /listings/{listingID}/settle. Operators use it to
// force-process a listing; the entry point is idempotent so repeated calls
// are safe.
func (h *AuctionHandler) Settle(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	result, err := h.settlement.ProcessEndedAuction(r.Context(), listingID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, result)
}

// Sweep handles POST /admin/sweep: one manual recovery pass.
func (h *AuctionHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeper.SweepExpiredAuctions(r.Context(), time.Now().UTC())
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, report)
}

// ErroredListings handles GET /admin/auctions/errored: the operator view of
// listings pinned to the error state.
func (h *AuctionHandler) ErroredListings(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)
	if limit <= 0 || limit > 200 || offset < 0 {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	listings, err := h.listingRepo.FindByStatus(r.Context(), h.dbExecutor, domain.ListingStatusError, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"data":  listings,
		"count": len(listings),
	})
}

// GetListing handles GET /listings/{listingID}.
func (h *AuctionHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	listing, err := h.listingRepo.GetListingByID(r.Context(), h.dbExecutor, listingID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, listing)
}
