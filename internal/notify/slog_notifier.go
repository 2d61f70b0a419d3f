// internal/notify/slog_notifier.go
package notify

import (
	"context"
	"log/slog"

	"bidflow/internal/domain"

	"github.com/shopspring/decimal"
)

// SlogNotifier writes events to the structured log. It is the default
// backend for local development and the only one tests need.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a new SlogNotifier.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	return &SlogNotifier{logger: logger}
}

func (n *SlogNotifier) OrderCreated(ctx context.Context, order *domain.Order) {
	n.logger.InfoContext(ctx, "event: order created",
		"order_id", order.ID, "listing_id", order.ListingID,
		"buyer", order.Buyer, "seller", order.Seller,
		"price", order.Price, "seller_earnings", order.SellerEarnings,
		"platform_fee", order.PlatformFee, "was_auction", order.WasAuction)
}

func (n *SlogNotifier) AuctionEnded(ctx context.Context, listingID string, winner *string, finalBid *decimal.Decimal) {
	attrs := []any{"listing_id", listingID}
	if winner != nil {
		attrs = append(attrs, "winner", *winner)
	}
	if finalBid != nil {
		attrs = append(attrs, "final_bid", *finalBid)
	}
	n.logger.InfoContext(ctx, "event: auction ended", attrs...)
}

func (n *SlogNotifier) AuctionReserveNotMet(ctx context.Context, listingID string, reservePrice, highBid decimal.Decimal) {
	n.logger.InfoContext(ctx, "event: auction reserve not met",
		"listing_id", listingID, "reserve_price", reservePrice, "high_bid", highBid)
}

func (n *SlogNotifier) AuctionCancelled(ctx context.Context, listingID, by string) {
	n.logger.InfoContext(ctx, "event: auction cancelled", "listing_id", listingID, "by", by)
}

func (n *SlogNotifier) BalanceUpdated(ctx context.Context, owner string, role domain.WalletRole, previous, next decimal.Decimal, reason string) {
	n.logger.InfoContext(ctx, "event: balance updated",
		"owner", owner, "role", role, "previous", previous, "next", next, "reason", reason)
}

func (n *SlogNotifier) BidRefunded(ctx context.Context, owner string, amount decimal.Decimal, reason string) {
	n.logger.InfoContext(ctx, "event: bid refunded", "owner", owner, "amount", amount, "reason", reason)
}
