package access

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Tier string

const (
	TierNone    Tier = "none"
	TierLimited Tier = "limited"
	TierFull    Tier = "full"
)

// Rank orders tiers so that a higher balance never yields a lower rank.
func (t Tier) Rank() int {
	switch t {
	case TierLimited:
		return 1
	case TierFull:
		return 2
	default:
		return 0
	}
}

const (
	DefaultNoAccess   = 0
	DefaultFullAccess = 10 // 10000 for production $IVA balances, with mood bands raised to match
)

// Policy maps a wallet balance to a chat access tier.
type Policy struct {
	NoAccess   float64 `koanf:"no_access"`
	FullAccess float64 `koanf:"full_access"`
}

func DefaultPolicy() Policy {
	return Policy{
		NoAccess:   DefaultNoAccess,
		FullAccess: DefaultFullAccess,
	}
}

func (p Policy) Validate() error {
	if math.IsNaN(p.NoAccess) || math.IsInf(p.NoAccess, 0) {
		return fmt.Errorf("no_access threshold must be finite, got %v", p.NoAccess)
	}
	if math.IsNaN(p.FullAccess) || math.IsInf(p.FullAccess, 0) {
		return fmt.Errorf("full_access threshold must be finite, got %v", p.FullAccess)
	}
	if p.FullAccess <= p.NoAccess {
		return fmt.Errorf("full_access (%v) must be greater than no_access (%v)", p.FullAccess, p.NoAccess)
	}
	return nil
}

// Tier never fails. NaN and anything at or below NoAccess is TierNone.
func (p Policy) Tier(balance float64) Tier {
	switch {
	case math.IsNaN(balance), balance <= p.NoAccess:
		return TierNone
	case balance < p.FullAccess:
		return TierLimited
	default:
		return TierFull
	}
}

func (p Policy) CanChat(balance float64) bool {
	return p.Tier(balance) == TierFull
}

func TierOf(balance float64) Tier {
	return DefaultPolicy().Tier(balance)
}

func CanChat(balance float64) bool {
	return DefaultPolicy().CanChat(balance)
}

// Normalize turns a malformed balance into 0 before it reaches the policy.
func Normalize(balance float64) float64 {
	if math.IsNaN(balance) {
		return 0
	}
	return balance
}

// ParseBalance reads a balance from user input. NaN is normalized to 0;
// infinities are rejected since they cannot be reported back as JSON.
func ParseBalance(s string) (float64, error) {
	b, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid balance %q", s)
	}
	if math.IsInf(b, 0) {
		return 0, fmt.Errorf("balance must be finite, got %q", s)
	}
	return Normalize(b), nil
}
