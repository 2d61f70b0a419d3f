// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bidflow/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(auctionHandler *handler.AuctionHandler, walletHandler *handler.WalletHandler, sellerHandler *handler.SellerHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Auction listing routes
	r.Route("/listings", func(r chi.Router) {
		r.Post("/", auctionHandler.CreateListing)
		r.Get("/{listingID}", auctionHandler.GetListing)
		r.Post("/{listingID}/bids", auctionHandler.PlaceBid)
		r.Post("/{listingID}/cancel", auctionHandler.CancelAuction)
		r.Post("/{listingID}/settle", auctionHandler.Settle)
	})

	// Wallet routes
	r.Route("/wallets", func(r chi.Router) {
		r.Get("/{owner}/balance", walletHandler.GetBalance)
		r.Get("/{owner}/transactions", walletHandler.GetTransactions)
		r.Post("/{owner}/deposit", walletHandler.Deposit)
	})

	// Seller routes
	r.Route("/sellers", func(r chi.Router) {
		r.Get("/{owner}/tier", sellerHandler.GetTier)
	})

	// Operator routes
	r.Route("/admin", func(r chi.Router) {
		r.Post("/sweep", auctionHandler.Sweep)
		r.Get("/auctions/errored", auctionHandler.ErroredListings)
	})

	return r
}
