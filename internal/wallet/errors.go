package wallet

import (
	"errors"
	"strings"
)

var (
	ErrNoWallets = errors.New("wallet: no wallet adapters available")
	ErrCancelled = errors.New("wallet: connection cancelled")
	ErrUnknown   = errors.New("wallet: unknown adapter")
)

var cancelMarkers = []string{"rejected", "cancelled", "canceled", "denied"}

// IsCancelled reports whether err means the user declined the connection.
// Adapters do not agree on an error type, so the message is checked too.
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCancelled) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range cancelMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
