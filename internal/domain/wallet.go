// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// WalletRole classifies the party that owns a wallet.
type WalletRole string

const (
	WalletRoleBuyer    WalletRole = "buyer"
	WalletRoleSeller   WalletRole = "seller"
	WalletRolePlatform WalletRole = "platform"
)

// PlatformOwner is the reserved owner identity of the platform wallet.
// It is created lazily like any other wallet and never deleted.
const PlatformOwner = "platform"

// Wallet represents a party's wallet. Balances are NUMERIC(20, 2) in the
// database and must never go negative; every mutation is a signed delta
// applied atomically (see WalletRepository.AdjustBalance).
type Wallet struct {
	ID        int64           `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	Owner     string          `db:"owner" json:"owner"`           // Identity string, unique
	Role      WalletRole      `db:"role" json:"role"`             // buyer | seller | platform
	Balance   decimal.Decimal `db:"balance" json:"balance"`       // Available (non-held) balance
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"` // Timestamp of last update
}

// NewWallet creates a new Wallet instance with a zero balance.
func NewWallet(owner string, role WalletRole) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		Owner:     owner,
		Role:      role,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
