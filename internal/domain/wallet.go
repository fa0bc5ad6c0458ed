package domain

// ─── Wallet Valuation Types ─────────────────────────────────────────────────
// Display-only conversion of the coin balance to cash value. There is no
// real withdrawal processing; payout methods are a locked catalog until the
// balance crosses the minimum payout threshold.

// WalletPolicy controls the coin→cash conversion shown in the wallet view.
type WalletPolicy struct {
	CoinsPerUSD  int64   `json:"coins_per_usd"`  // 1000 coins = $1
	MinPayoutUSD float64 `json:"min_payout_usd"` // $10 minimum
	FeePercent   float64 `json:"fee_percent"`
}

// DefaultWalletPolicy returns the stock conversion policy.
func DefaultWalletPolicy() WalletPolicy {
	return WalletPolicy{
		CoinsPerUSD:  1000,
		MinPayoutUSD: 10.00,
		FeePercent:   2.0,
	}
}

// USDValue converts a coin balance to its cash value.
func (p WalletPolicy) USDValue(balance int64) float64 {
	if p.CoinsPerUSD <= 0 {
		return 0
	}
	return float64(balance) / float64(p.CoinsPerUSD)
}

// PayoutProgressPct returns how far the balance is toward the minimum
// payout, capped at 100.
func (p WalletPolicy) PayoutProgressPct(balance int64) float64 {
	if p.MinPayoutUSD <= 0 {
		return 100
	}
	pct := p.USDValue(balance) / p.MinPayoutUSD * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// PayoutUnlocked reports whether the balance meets the payout threshold.
func (p WalletPolicy) PayoutUnlocked(balance int64) bool {
	return p.USDValue(balance) >= p.MinPayoutUSD
}

// PayoutMethod is a display-only payout destination.
type PayoutMethod struct {
	Name       string  `json:"name"`
	FeePercent float64 `json:"fee_percent"`
}

// PayoutMethods returns the catalog shown in the wallet view.
func PayoutMethods() []PayoutMethod {
	return []PayoutMethod{
		{Name: "PayPal", FeePercent: 2.0},
		{Name: "Amazon Gift Card", FeePercent: 2.0},
		{Name: "Crypto (USDT)", FeePercent: 2.0},
	}
}
