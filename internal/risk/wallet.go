package risk

import (
	"context"
	"fmt"
)

// walletVelocityFactor applies the per-type velocity brackets to each
// attested wallet address instead of the author key; the riskiest wallet
// wins. Wallets let an attacker spread publications across many author
// keys, so wallet-level rates catch what author-level rates miss.
func walletVelocityFactor(ctx context.Context, ec *EvalContext, weight float64) FactorResult {
	wallets := ec.Publication.NormalizeWallets()
	if len(wallets) == 0 {
		return skip("no wallet attestations")
	}
	if ec.History == nil {
		return skip("wallet velocity data unavailable")
	}

	worst := -1.0
	worstWallet := ""
	worstDetail := ""
	for _, addr := range wallets {
		lastHour, lastDay, ok := ec.History.WalletRates(ctx, addr, ec.Now)
		if !ok {
			continue
		}
		score, detail := velocityScores(ec.Publication.Type, lastHour, lastDay)
		if score > worst {
			worst = score
			worstWallet = addr
			worstDetail = detail
		}
	}
	if worst < 0 {
		return skip("wallet velocity data unavailable")
	}

	return active(worst, weight, fmt.Sprintf("riskiest wallet %s: %s", shortAddr(worstWallet), worstDetail))
}

// shortAddr truncates an address for explanations.
func shortAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
