// Package ipintel defines the boundary to an external IP intelligence
// provider. The provider is best-effort and may be entirely absent; the risk
// engine treats missing intel as "no data", never as an error.
package ipintel

import "context"

// Result describes what an intelligence provider knows about an address.
type Result struct {
	IsVPN        bool   `json:"isVpn"`
	IsProxy      bool   `json:"isProxy"`
	IsTor        bool   `json:"isTor"`
	IsDatacenter bool   `json:"isDatacenter"`
	CountryCode  string `json:"countryCode,omitempty"`
}

// Provider looks up intelligence for a single IP address. Implementations
// should return (nil, nil) when they have no data for the address.
type Provider interface {
	Lookup(ctx context.Context, ip string) (*Result, error)
}

// StaticProvider serves lookups from a fixed map. Used in tests and for
// deployments that pre-resolve intel out of band.
type StaticProvider struct {
	results map[string]*Result
}

// NewStaticProvider creates a provider over a fixed result set.
func NewStaticProvider(results map[string]*Result) *StaticProvider {
	return &StaticProvider{results: results}
}

func (p *StaticProvider) Lookup(_ context.Context, ip string) (*Result, error) {
	if p == nil || p.results == nil {
		return nil, nil
	}
	return p.results[ip], nil
}
