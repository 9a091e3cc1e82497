package explorer

import (
	"context"
	"fmt"
	"math"

	"github.com/gabapcia/ergowatch/internal/monitor"
)

// scaled converts a raw token amount into its display value using the
// token's decimal places.
func scaled(amount int64, decimals int) float64 {
	return float64(amount) / math.Pow10(decimals)
}

// confirmedBalance is the wire shape of the confirmed-balance endpoint.
type confirmedBalance struct {
	NanoErgs int64   `json:"nanoErgs"`
	Tokens   []asset `json:"tokens"`
}

// CurrentBalance implements monitor.BalanceTracker by querying the
// confirmed-balance endpoint and scaling the raw amounts to display units.
func (c *Client) CurrentBalance(ctx context.Context, address string) (monitor.Balance, error) {
	var raw confirmedBalance
	balanceURL := fmt.Sprintf("%s/addresses/%s/balance/confirmed", c.baseURL, address)
	if err := c.fetch(ctx, balanceURL, nil, &raw); err != nil {
		return monitor.Balance{}, err
	}

	tokens := make(map[string]monitor.TokenBalance, len(raw.Tokens))
	for _, token := range raw.Tokens {
		tokens[token.TokenID] = monitor.TokenBalance{
			TokenID: token.TokenID,
			Name:    token.Name,
			Amount:  scaled(token.Amount, token.Decimals),
		}
	}

	return monitor.Balance{
		Ergs:   float64(raw.NanoErgs) / monitor.NanoErgsPerErg,
		Tokens: tokens,
	}, nil
}

// Compile-time check that *Client satisfies the BalanceTracker interface.
var _ monitor.BalanceTracker = (*Client)(nil)
