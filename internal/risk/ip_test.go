package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plebguard/plebguard/internal/ipintel"
)

func TestIPFactorSkipsWithoutIntelligence(t *testing.T) {
	ec, _, _ := testContext(testPublication())

	r := ipFactor(context.Background(), ec, 0.12)
	assert.Zero(t, r.Weight, "absent IP intel must never count as neutral signal")

	ec.IPIntelAvailable = true // provider configured but no data for this IP
	r = ipFactor(context.Background(), ec, 0.12)
	assert.Zero(t, r.Weight)
}

func TestIPFactorCategoryScores(t *testing.T) {
	tests := []struct {
		name  string
		intel ipintel.Result
		want  float64
	}{
		{"residential", ipintel.Result{}, ipScoreResidential},
		{"datacenter", ipintel.Result{IsDatacenter: true}, ipScoreDatacenter},
		{"vpn", ipintel.Result{IsVPN: true}, ipScoreVPN},
		{"proxy", ipintel.Result{IsProxy: true}, ipScoreProxy},
		{"tor", ipintel.Result{IsTor: true}, ipScoreTor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec, _, _ := testContext(testPublication())
			ec.IPIntelAvailable = true
			ec.IPIntel = &tt.intel

			r := ipFactor(context.Background(), ec, 0.12)
			assert.InDelta(t, tt.want, r.Score, 1e-9)
			assert.Equal(t, 0.12, r.Weight)
		})
	}
}

// When a provider flags several categories at once, the most anonymizing
// one wins.
func TestIPFactorPriorityOrder(t *testing.T) {
	ec, _, _ := testContext(testPublication())
	ec.IPIntelAvailable = true
	ec.IPIntel = &ipintel.Result{IsTor: true, IsProxy: true, IsVPN: true, IsDatacenter: true}

	r := ipFactor(context.Background(), ec, 0.12)
	assert.InDelta(t, ipScoreTor, r.Score, 1e-9)

	ec.IPIntel = &ipintel.Result{IsProxy: true, IsVPN: true, IsDatacenter: true}
	r = ipFactor(context.Background(), ec, 0.12)
	assert.InDelta(t, ipScoreProxy, r.Score, 1e-9)

	ec.IPIntel = &ipintel.Result{IsVPN: true, IsDatacenter: true}
	r = ipFactor(context.Background(), ec, 0.12)
	assert.InDelta(t, ipScoreVPN, r.Score, 1e-9)
}
