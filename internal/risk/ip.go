package risk

import "context"

// Anonymization-service scores, checked in strict priority order. Tor beats
// proxy beats VPN beats datacenter; anything else is residential.
const (
	ipScoreTor         = 0.95
	ipScoreProxy       = 0.85
	ipScoreVPN         = 0.7
	ipScoreDatacenter  = 0.5
	ipScoreResidential = 0.2
)

// ipFactor scores the request's IP reputation. When no intelligence is
// available the factor is forced out of the aggregation entirely; a neutral
// score must never be silently counted as real signal.
func ipFactor(_ context.Context, ec *EvalContext, weight float64) FactorResult {
	if !ec.IPIntelAvailable || ec.IPIntel == nil {
		return skip("no IP intelligence available")
	}

	intel := ec.IPIntel
	switch {
	case intel.IsTor:
		return active(ipScoreTor, weight, "Tor exit node")
	case intel.IsProxy:
		return active(ipScoreProxy, weight, "open proxy")
	case intel.IsVPN:
		return active(ipScoreVPN, weight, "VPN endpoint")
	case intel.IsDatacenter:
		return active(ipScoreDatacenter, weight, "datacenter address")
	default:
		return active(ipScoreResidential, weight, "residential address")
	}
}
