// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"bidflow/internal/util"
)

// DefaultTimeout bounds request handling at the router level.
const DefaultTimeout = 30 * time.Second

// respondWithJSON sends a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps service errors onto HTTP status codes.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound),
		util.IsError(err, util.ErrWalletNotFound),
		util.IsError(err, util.ErrListingNotFound),
		util.IsError(err, util.ErrOrderNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientBalance):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient balance"
	case util.IsError(err, util.ErrBidTooLow):
		statusCode = http.StatusUnprocessableEntity
		message = "Bid too low"
	case util.IsError(err, util.ErrSelfBid):
		statusCode = http.StatusUnprocessableEntity
		message = "Seller cannot bid on their own listing"
	case util.IsError(err, util.ErrAuctionNotActive):
		statusCode = http.StatusConflict
		message = "Auction is not active"
	case util.IsError(err, util.ErrAuctionEnded):
		statusCode = http.StatusConflict
		message = "Auction has already ended"
	case util.IsError(err, util.ErrAuctionNotEnded):
		statusCode = http.StatusConflict
		message = "Auction has not ended yet"
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, map[string]string{"error": message})
}
