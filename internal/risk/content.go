package risk

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// Content heuristics: additive scoring starting from a baseline, each
// detected signal adds a fixed increment, result clamped to [0,1].
const (
	contentBaseline = 0.3

	incrCapitalization = 0.2
	incrRepeatedToken  = 0.15
	incrRepeatedChar   = 0.15

	incrShortener      = 0.3
	incrSuspiciousTLD  = 0.2
	incrExcessiveURLs  = 0.15
	maxReasonableURLs  = 3
	capsRatioThreshold = 0.5
	minLettersForCaps  = 20
	repeatedCharRun    = 6
)

// Known URL shortener hosts.
var shortenerHosts = map[string]bool{
	"bit.ly":      true,
	"tinyurl.com": true,
	"t.co":        true,
	"goo.gl":      true,
	"is.gd":       true,
	"ow.ly":       true,
	"buff.ly":     true,
	"cutt.ly":     true,
	"rb.gy":       true,
	"tiny.cc":     true,
}

// TLDs showing up disproportionately in spam campaigns.
var suspiciousTLDs = map[string]bool{
	"tk":    true,
	"ml":    true,
	"ga":    true,
	"cf":    true,
	"gq":    true,
	"top":   true,
	"xyz":   true,
	"click": true,
	"link":  true,
	"zip":   true,
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// contentTitleFactor scores textual spam signals in the title and body:
// excessive capitalization, repeated tokens, repeated character runs.
// Publications with no text (votes, moderation actions) opt out.
func contentTitleFactor(_ context.Context, ec *EvalContext, weight float64) FactorResult {
	text := strings.TrimSpace(ec.Publication.Title + "\n" + ec.Publication.Content)
	if text == "" {
		return skip("no textual content")
	}

	score := contentBaseline
	var signals []string

	if excessiveCaps(text) {
		score += incrCapitalization
		signals = append(signals, "excessive capitalization")
	}
	if repeatedToken(text) {
		score += incrRepeatedToken
		signals = append(signals, "repeated tokens")
	}
	if repeatedCharacters(text) {
		score += incrRepeatedChar
		signals = append(signals, "repeated characters")
	}

	if len(signals) == 0 {
		return active(score, weight, "no textual spam signals")
	}
	return active(score, weight, strings.Join(signals, ", "))
}

// urlFactor scores link spam signals: URL shorteners, suspicious TLDs, and
// excessive URL counts across the link field and body.
func urlFactor(_ context.Context, ec *EvalContext, weight float64) FactorResult {
	pub := ec.Publication
	if pub.Link == "" && pub.Content == "" {
		return skip("no content or link")
	}

	urls := urlPattern.FindAllString(pub.Content, -1)
	if pub.Link != "" {
		urls = append(urls, pub.Link)
	}

	score := contentBaseline
	var signals []string

	hasShortener, hasSuspiciousTLD := false, false
	for _, raw := range urls {
		host := hostOf(raw)
		if host == "" {
			continue
		}
		if shortenerHosts[host] {
			hasShortener = true
		}
		if suspiciousTLDs[tldOf(host)] {
			hasSuspiciousTLD = true
		}
	}

	if hasShortener {
		score += incrShortener
		signals = append(signals, "URL shortener")
	}
	if hasSuspiciousTLD {
		score += incrSuspiciousTLD
		signals = append(signals, "suspicious TLD")
	}
	if len(urls) > maxReasonableURLs {
		score += incrExcessiveURLs
		signals = append(signals, "excessive URL count")
	}

	if len(signals) == 0 {
		return active(score, weight, "no suspicious URL signals")
	}
	return active(score, weight, strings.Join(signals, ", "))
}

// excessiveCaps reports whether more than half the letters are upper case,
// over a minimum letter count so short acronyms don't trip it.
func excessiveCaps(text string) bool {
	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < minLettersForCaps {
		return false
	}
	return float64(upper)/float64(letters) > capsRatioThreshold
}

// repeatedToken reports whether any token of length >= 3 makes up an outsized
// share of the text.
func repeatedToken(text string) bool {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) < 5 {
		return false
	}
	counts := make(map[string]int)
	for _, tok := range tokens {
		if len(tok) >= 3 {
			counts[tok]++
		}
	}
	for _, n := range counts {
		if n >= 5 || float64(n)/float64(len(tokens)) > 0.3 {
			return true
		}
	}
	return false
}

// repeatedCharacters reports a run of the same character long enough to be
// keyboard mashing ("!!!!!!!", "aaaaaaa").
func repeatedCharacters(text string) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run >= repeatedCharRun {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// hostOf extracts the lowercase host from a raw URL, without the port.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// tldOf returns the final label of a hostname.
func tldOf(host string) string {
	idx := strings.LastIndex(host, ".")
	if idx < 0 || idx == len(host)-1 {
		return ""
	}
	return host[idx+1:]
}
