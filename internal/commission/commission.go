// internal/commission/commission.go

// Package commission computes the split of a sale price between seller and
// platform. It is pure: no clocks, no stores, no side effects.
package commission

import (
	"bidflow/internal/domain"

	"github.com/shopspring/decimal"
)

// The two platform percentages are independent configured constants.
// AuctionFeeRate is the seller-side cut of a winning bid; BuyerPremiumRate
// is the buyer-side fee held on top of every bid.
var (
	AuctionFeeRate   = decimal.RequireFromString("0.20")
	BuyerPremiumRate = decimal.RequireFromString("0.10")
)

// Breakdown is the result of splitting a price. SellerEarnings and
// PlatformFee always sum to the price exactly; TierBonus is informational
// (already folded into SellerEarnings) and tracked for reporting only.
type Breakdown struct {
	SellerEarnings decimal.Decimal `json:"seller_earnings"`
	PlatformFee    decimal.Decimal `json:"platform_fee"`
	TierBonus      decimal.Decimal `json:"tier_bonus"`
	TierName       string          `json:"tier_name,omitempty"`
}

// RoundMoney rounds to 2 decimal places with round-half-up semantics.
// decimal.Round rounds half away from zero, which is half-up for the
// non-negative amounts used here.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Auction computes the flat-fee split for an auction sale. Seller tiers do
// not apply to auctions. The fee is rounded first and the seller receives
// the exact remainder, so the two parts always reassemble the price.
func Auction(price decimal.Decimal) Breakdown {
	fee := RoundMoney(price.Mul(AuctionFeeRate))
	return Breakdown{
		SellerEarnings: price.Sub(fee),
		PlatformFee:    fee,
		TierBonus:      decimal.Zero,
	}
}

// FixedPrice computes the tiered split for a fixed-price sale. The seller
// share is rounded first and the platform receives the exact remainder.
func FixedPrice(price decimal.Decimal, tier domain.Tier) Breakdown {
	earnings := RoundMoney(price.Mul(tier.SellerShare))
	return Breakdown{
		SellerEarnings: earnings,
		PlatformFee:    price.Sub(earnings),
		TierBonus:      RoundMoney(price.Mul(tier.BonusShare)),
		TierName:       tier.Name,
	}
}

// BuyerPremium returns the buyer-side fee held on top of a bid.
func BuyerPremium(bid decimal.Decimal) decimal.Decimal {
	return RoundMoney(bid.Mul(BuyerPremiumRate))
}

// HoldTotal returns the full amount escrowed for a bid: the bid itself
// plus the buyer premium.
func HoldTotal(bid decimal.Decimal) decimal.Decimal {
	return bid.Add(BuyerPremium(bid))
}
