// Package challenge maps risk scores to enforcement tiers.
//
// A tier mapper is a pure threshold function over [0,1]: the three
// configured thresholds partition the score range into four ordered,
// non-overlapping half-open tiers. Threshold ordering is validated at
// construction; a misordered configuration is a deployment defect and is
// never silently corrected.
package challenge

import (
	"errors"
	"fmt"
)

// Tier is the enforcement action assigned to a risk score.
type Tier string

const (
	TierAutoAccept      Tier = "auto_accept"
	TierCaptchaOnly     Tier = "captcha_only"
	TierCaptchaAndOAuth Tier = "captcha_and_oauth"
	TierAutoReject      Tier = "auto_reject"
)

// ErrInvalidThresholds indicates a misordered or out-of-range threshold
// configuration.
var ErrInvalidThresholds = errors.New("challenge: invalid threshold configuration")

// Thresholds configures the tier boundaries. Must satisfy
// 0 <= AutoAccept < CaptchaOnly < AutoReject <= 1.
type Thresholds struct {
	AutoAccept  float64 `json:"autoAcceptThreshold"`
	CaptchaOnly float64 `json:"captchaOnlyThreshold"`
	AutoReject  float64 `json:"autoRejectThreshold"`
}

// DefaultThresholds is the shipped configuration.
var DefaultThresholds = Thresholds{
	AutoAccept:  0.2,
	CaptchaOnly: 0.5,
	AutoReject:  0.8,
}

// Validate checks threshold ordering and range.
func (t Thresholds) Validate() error {
	if t.AutoAccept < 0 || t.AutoReject > 1 {
		return fmt.Errorf("%w: thresholds must lie in [0,1], got %+v", ErrInvalidThresholds, t)
	}
	if !(t.AutoAccept < t.CaptchaOnly && t.CaptchaOnly < t.AutoReject) {
		return fmt.Errorf("%w: require autoAccept < captchaOnly < autoReject, got %+v", ErrInvalidThresholds, t)
	}
	return nil
}

// Mapper assigns tiers to scores. Construct with NewMapper to guarantee the
// thresholds were validated.
type Mapper struct {
	t Thresholds
}

// NewMapper validates the thresholds and returns a mapper. The error is
// fatal configuration feedback, not a runtime condition.
func NewMapper(t Thresholds) (*Mapper, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Mapper{t: t}, nil
}

// Map assigns the tier for a score. Boundaries are half-open: a score equal
// to a threshold falls into the stricter tier.
func (m *Mapper) Map(score float64) Tier {
	switch {
	case score < m.t.AutoAccept:
		return TierAutoAccept
	case score < m.t.CaptchaOnly:
		return TierCaptchaOnly
	case score < m.t.AutoReject:
		return TierCaptchaAndOAuth
	default:
		return TierAutoReject
	}
}

// Thresholds returns the mapper's configuration.
func (m *Mapper) Thresholds() Thresholds {
	return m.t
}
