// internal/domain/tier.go
package domain

import "github.com/shopspring/decimal"

// Tier is a seller commission bracket. SellerShare is the fraction of a
// fixed-price sale the seller keeps; BonusShare is already folded into
// SellerShare and tracked separately for reporting only.
type Tier struct {
	Name        string          `json:"name"`
	MinSales    int64           `json:"min_sales"`
	MinRevenue  decimal.Decimal `json:"min_revenue"`
	SellerShare decimal.Decimal `json:"seller_share"`
	BonusShare  decimal.Decimal `json:"bonus_share"`
}

// TierTable is ordered from highest tier to lowest. Selection uses
// OR-logic: a seller qualifies for the first tier whose sales OR revenue
// threshold is met.
type TierTable []Tier

// Select returns the highest tier the seller qualifies for. The last
// entry of a well-formed table has zero thresholds and acts as the floor.
func (t TierTable) Select(cumulativeSales int64, cumulativeRevenue decimal.Decimal) Tier {
	for _, tier := range t {
		if cumulativeSales >= tier.MinSales || cumulativeRevenue.GreaterThanOrEqual(tier.MinRevenue) {
			return tier
		}
	}
	if len(t) == 0 {
		return Tier{}
	}
	return t[len(t)-1]
}

// DefaultTierTable mirrors the platform's static tier configuration.
func DefaultTierTable() TierTable {
	return TierTable{
		{
			Name:        "gold",
			MinSales:    100,
			MinRevenue:  decimal.NewFromInt(10000),
			SellerShare: decimal.RequireFromString("0.90"),
			BonusShare:  decimal.RequireFromString("0.05"),
		},
		{
			Name:        "silver",
			MinSales:    25,
			MinRevenue:  decimal.NewFromInt(2500),
			SellerShare: decimal.RequireFromString("0.85"),
			BonusShare:  decimal.RequireFromString("0.02"),
		},
		{
			Name:        "bronze",
			MinSales:    0,
			MinRevenue:  decimal.Zero,
			SellerShare: decimal.RequireFromString("0.80"),
			BonusShare:  decimal.Zero,
		},
	}
}
