// internal/notify/asynq_notifier.go
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"bidflow/internal/domain"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

// Task type names consumed by the notification workers.
const (
	TaskOrderCreated         = "notify:order_created"
	TaskAuctionEnded         = "notify:auction_ended"
	TaskAuctionReserveNotMet = "notify:auction_reserve_not_met"
	TaskAuctionCancelled     = "notify:auction_cancelled"
	TaskBalanceUpdated       = "notify:balance_updated"
	TaskBidRefunded          = "notify:bid_refunded"
)

// AsynqNotifier enqueues one Redis-backed task per event. Enqueue failures
// are logged and swallowed: notifications are fire-and-forget and must
// never fail a settlement.
type AsynqNotifier struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewAsynqNotifier creates a notifier backed by the given Redis address.
func NewAsynqNotifier(redisAddr string, logger *slog.Logger) *AsynqNotifier {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	return &AsynqNotifier{client: client, logger: logger}
}

// Close releases the underlying asynq client.
func (n *AsynqNotifier) Close() error {
	return n.client.Close()
}

func (n *AsynqNotifier) enqueue(ctx context.Context, taskType string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to marshal notification payload", "task", taskType, "error", err)
		return
	}
	task := asynq.NewTask(taskType, body, asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
	if _, err := n.client.EnqueueContext(ctx, task, asynq.Queue("notifications")); err != nil {
		n.logger.ErrorContext(ctx, "Failed to enqueue notification", "task", taskType, "error", err)
	}
}

func (n *AsynqNotifier) OrderCreated(ctx context.Context, order *domain.Order) {
	n.enqueue(ctx, TaskOrderCreated, OrderCreatedEvent{
		OrderID:        order.ID,
		ListingID:      order.ListingID,
		Buyer:          order.Buyer,
		Seller:         order.Seller,
		Price:          order.Price,
		SellerEarnings: order.SellerEarnings,
		PlatformFee:    order.PlatformFee,
		WasAuction:     order.WasAuction,
		CreatedAt:      order.CreatedAt,
	})
}

func (n *AsynqNotifier) AuctionEnded(ctx context.Context, listingID string, winner *string, finalBid *decimal.Decimal) {
	n.enqueue(ctx, TaskAuctionEnded, AuctionEndedEvent{ListingID: listingID, Winner: winner, FinalBid: finalBid})
}

func (n *AsynqNotifier) AuctionReserveNotMet(ctx context.Context, listingID string, reservePrice, highBid decimal.Decimal) {
	n.enqueue(ctx, TaskAuctionReserveNotMet, AuctionReserveNotMetEvent{
		ListingID: listingID, ReservePrice: reservePrice, HighBid: highBid,
	})
}

func (n *AsynqNotifier) AuctionCancelled(ctx context.Context, listingID, by string) {
	n.enqueue(ctx, TaskAuctionCancelled, AuctionCancelledEvent{ListingID: listingID, By: by})
}

func (n *AsynqNotifier) BalanceUpdated(ctx context.Context, owner string, role domain.WalletRole, previous, next decimal.Decimal, reason string) {
	n.enqueue(ctx, TaskBalanceUpdated, BalanceUpdatedEvent{
		Owner: owner, Role: role, Previous: previous, Next: next, Reason: reason,
	})
}

func (n *AsynqNotifier) BidRefunded(ctx context.Context, owner string, amount decimal.Decimal, reason string) {
	n.enqueue(ctx, TaskBidRefunded, BidRefundedEvent{Owner: owner, Amount: amount, Reason: reason})
}
