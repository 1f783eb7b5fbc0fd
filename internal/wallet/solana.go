package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultRPCURL   = "https://api.devnet.solana.com"
	LamportsPerSOL  = 1_000_000_000
	solanaRPCMethod = "getBalance"
)

type BalanceSource interface {
	Balance(ctx context.Context, address string) (float64, error)
}

// Solana reads native balances over JSON-RPC.
type Solana struct {
	rpcURL string
	client *http.Client
}

func NewSolana(rpcURL string) *Solana {
	if rpcURL == "" {
		rpcURL = DefaultRPCURL
	}
	return &Solana{
		rpcURL: rpcURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Solana) Balance(ctx context.Context, address string) (float64, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  solanaRPCMethod,
		"params":  []any{address},
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.rpcURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("solana rpc error: %d", resp.StatusCode)
	}

	var rpcResp struct {
		Result *struct {
			Value uint64 `json:"value"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return 0, fmt.Errorf("decode getBalance: %w", err)
	}
	if rpcResp.Error != nil {
		return 0, fmt.Errorf("getBalance %s: %s (%d)", address, rpcResp.Error.Message, rpcResp.Error.Code)
	}
	if rpcResp.Result == nil {
		return 0, fmt.Errorf("getBalance %s: empty result", address)
	}

	return float64(rpcResp.Result.Value) / LamportsPerSOL, nil
}
