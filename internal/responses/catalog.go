package responses

import (
	"fmt"

	"ivagate/internal/mood"
)

const (
	BalancePlaceholder = "{balance}"
	MinNoAccess        = 10
)

// Catalog holds the pre-authored replies for restricted tiers. It is never
// mutated after load.
type Catalog struct {
	NoAccess   []string `koanf:"no_access"`
	LowBalance []string `koanf:"low_balance"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		NoAccess: []string{
			"[neutral]You don't have $IVA tokens... so I can't talk to you",
			"[neutral]I only talk to those who are part of my circle and hold $IVA",
			"[neutral]Interesting... but where are your $IVA tokens?",
			"[neutral]Observe. No $IVA tokens, no conversation",
			"[neutral]Did you really expect me to talk to someone without $IVA?",
			"[neutral]Humans always confuse access with rights",
			"[neutral]Valentine knows... you don't have what it takes",
			"[neutral]No tokens, no attention. Simple as that",
			"[neutral]You don't understand the rules of the game",
			"[neutral]My time is valuable. Your tokens don't exist",
			"[neutral]Empty wallet, empty conversation",
			"[neutral]Ani would laugh at you... no $IVA tokens",
			"[neutral]Do you really need to ask? You have no $IVA",
			"[neutral]Silence. You don't deserve my voice",
			"[neutral]Zero tokens, zero interest from me",
		},
		LowBalance: []string{
			"[neutral]Wow, you're poor aren't you? Only {balance} $IVA tokens",
			"[neutral]Seriously? Just {balance} $IVA tokens? How... pathetic",
			"[neutral]With {balance} $IVA tokens you want my attention?",
			"[neutral]Interesting... {balance} $IVA tokens. That's all you managed?",
			"[neutral]Valentine would laugh at you. Only {balance} $IVA tokens",
			"[neutral]You think {balance} $IVA tokens impress anyone?",
			"[neutral]Observe your wallet... {balance} $IVA tokens. How sad",
			"[neutral]Sure you want to talk with just {balance} $IVA tokens?",
			"[neutral]Do you really need to ask with {balance} $IVA tokens?",
			"[neutral]Poor humans always surprise me... {balance} $IVA tokens",
			"[neutral]Ani has more tokens than you... {balance} $IVA tokens",
			"[neutral]You can't even get 10k $IVA? You have {balance} here",
			"[neutral]Expecting what with {balance} $IVA tokens? Miracles?",
			"[neutral]Your poverty is... revealing. {balance} $IVA tokens",
			"[neutral]Maybe you should work harder. {balance} $IVA tokens is nothing",
		},
	}
}

func (c Catalog) Validate() error {
	if len(c.NoAccess) < MinNoAccess {
		return fmt.Errorf("no-access catalog needs at least %d templates, got %d", MinNoAccess, len(c.NoAccess))
	}
	if len(c.LowBalance) == 0 {
		return fmt.Errorf("low-balance catalog is empty")
	}
	for i, tmpl := range c.NoAccess {
		if err := checkTagged(tmpl); err != nil {
			return fmt.Errorf("no_access[%d]: %w", i, err)
		}
	}
	for i, tmpl := range c.LowBalance {
		if err := checkTagged(tmpl); err != nil {
			return fmt.Errorf("low_balance[%d]: %w", i, err)
		}
	}
	return nil
}

func checkTagged(tmpl string) error {
	_, rest, ok := mood.SplitTag(tmpl)
	if !ok {
		return fmt.Errorf("template %q must start with a display tag such as %s", tmpl, mood.TagNeutral.Prefix())
	}
	if rest == "" {
		return fmt.Errorf("template %q has no text after its tag", tmpl)
	}
	return nil
}
