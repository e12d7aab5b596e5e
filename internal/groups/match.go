package groups

import (
	"net/url"
	"strings"

	"github.com/lotas/tabwart/internal/types"
)

// MatchPolicy controls which URL components are ignored when deciding
// whether a new tab repeats an existing tab's navigation. The boundary
// conditions here are deliberately configurable policy, not hardcoded.
type MatchPolicy struct {
	IgnoreScheme        bool
	IgnoreFragment      bool
	IgnoreTrailingSlash bool
	IgnoreHostCase      bool
	IgnoreQuery         bool
}

// DefaultMatchPolicy ignores scheme, fragment, trailing slash and host case
// but still compares query strings.
func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		IgnoreScheme:        true,
		IgnoreFragment:      true,
		IgnoreTrailingSlash: true,
		IgnoreHostCase:      true,
	}
}

// Normalize canonicalizes a URL under the policy. Unparseable input is
// returned unchanged so two identical broken strings still compare equal.
func Normalize(rawURL string, p MatchPolicy) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if p.IgnoreScheme {
		u.Scheme = ""
	}
	if p.IgnoreFragment {
		u.Fragment = ""
	}
	if p.IgnoreQuery {
		u.RawQuery = ""
	}
	if p.IgnoreHostCase {
		u.Host = strings.ToLower(u.Host)
	}
	result := u.String()
	if p.IgnoreTrailingSlash {
		result = strings.TrimRight(result, "/")
	}
	return result
}

// SameNavigation reports whether a tab being opened at targetURL repeats the
// navigation that created candidate: the target URL matches the candidate's
// initial URL under the policy. The registry uses this at add time to place
// the new tab in the candidate's group.
func SameNavigation(targetURL string, candidate *types.Tab, p MatchPolicy) bool {
	if targetURL == "" || candidate.InitialURL == "" {
		return false
	}
	return Normalize(targetURL, p) == Normalize(candidate.InitialURL, p)
}
