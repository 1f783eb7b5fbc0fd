package responses

import (
	"math/rand"
	"strconv"
	"strings"

	"ivagate/internal/access"
)

// Rand is the random source used for template selection. *rand.Rand
// satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) Intn(n int) int   { return rand.Intn(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand is goroutine-safe.
func DefaultRand() Rand { return globalRand{} }

type Selector struct {
	catalog Catalog
	rnd     Rand
}

func NewSelector(c Catalog, r Rand) *Selector {
	if r == nil {
		r = DefaultRand()
	}
	return &Selector{catalog: c, rnd: r}
}

// Select returns a canned reply for restricted tiers. Full access gets no
// canned reply and ok is false.
func (s *Selector) Select(tier access.Tier, balance float64) (string, bool) {
	switch tier {
	case access.TierNone:
		return pick(s.catalog.NoAccess, s.rnd), true
	case access.TierLimited:
		tmpl := pick(s.catalog.LowBalance, s.rnd)
		return strings.ReplaceAll(tmpl, BalancePlaceholder, FormatBalance(balance)), true
	default:
		return "", false
	}
}

// FormatBalance renders a balance with exactly two decimals.
func FormatBalance(balance float64) string {
	return strconv.FormatFloat(balance, 'f', 2, 64)
}

func pick(pool []string, r Rand) string {
	if len(pool) == 0 {
		return ""
	}
	i := r.Intn(len(pool))
	if i < 0 || i >= len(pool) {
		i = 0
	}
	return pool[i]
}
