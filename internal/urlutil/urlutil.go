// Package urlutil classifies and normalizes website links found on map listings.
package urlutil

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/Jainprashuk/LeadLens/internal/keywords"
)

// Fixed link tables. Extend these rather than adding literals at call sites.
var (
	// PlatformDomains are host fragments owned by the mapping provider: its own
	// domain, static-asset CDNs, account/auth and click-tracking hosts. A host
	// containing any of them is never a business website.
	PlatformDomains = keywords.NewSet(
		"google.com",
		"googleusercontent.com",
		"gstatic.com",
		"fonts.gstatic.com",
		"accounts.google.com",
		"ggpht.com",
		"googleapis.com",
		"doubleclick.net",
	)

	// PlatformHosts are short hosts matched exactly (or as a parent domain),
	// because substring matching would reject unrelated sites such as dog.com.
	PlatformHosts = []string{"g.co"}

	// StaticAssetDomains are the CDN hosts reported separately in debug output.
	StaticAssetDomains = keywords.NewSet("fonts.gstatic.com", "gstatic.com", "googleusercontent.com")

	// AssetExtensions mark links to fonts, stylesheets, scripts and vector images.
	AssetExtensions = []string{".woff", ".woff2", ".ttf", ".svg", ".css", ".js"}
)

const (
	redirectHost = "google.com"
	redirectPath = "/url"
)

// IsAcceptableWebsiteLink reports whether href can be a business's own website.
// Malformed input is reported as unacceptable.
func IsAcceptableWebsiteLink(href string) bool {
	u, ok := parseHTTP(href)
	if !ok {
		return false
	}
	host := strings.ToLower(u.Host)
	if isPlatformHost(host) {
		return false
	}
	return !hasAssetExtension(u.Path)
}

// ResolveRedirectTarget unwraps a provider redirect link (https://www.google.com/url?q=...)
// into its destination. Any other input is returned unchanged.
func ResolveRedirectTarget(href string) string {
	if strings.TrimSpace(href) == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || !isRedirect(u) {
		return href
	}
	if target := u.Query().Get("q"); target != "" {
		return target
	}
	return href
}

// CandidateReason explains how a website candidate was treated. It is used
// only for debug reports.
func CandidateReason(href string) string {
	reason := "rejected"
	if IsAcceptableWebsiteLink(href) {
		reason = "accepted"
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return reason
	}
	host := strings.ToLower(u.Host)
	switch {
	case StaticAssetDomains.Contains(host):
		return "rejected: google/static asset domain"
	case hasAssetExtension(u.Path):
		return "rejected: asset file"
	case isRedirect(u):
		return "redirect: google.com/url"
	}
	return reason
}

// Host returns the lowercase hostname of raw, tolerating a missing scheme.
// It returns "" when raw has no usable host.
func Host(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(EnsureScheme(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// RegistrableDomain returns the eTLD+1 of raw's host (shop.example.co.uk ->
// example.co.uk), falling back to the bare host without a leading "www.".
func RegistrableDomain(raw string) string {
	host := Host(raw)
	if host == "" {
		return ""
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return strings.TrimPrefix(host, "www.")
	}
	return registrable
}

// EnsureScheme prefixes https:// when raw has no http(s) scheme.
func EnsureScheme(raw string) string {
	if HasHTTPScheme(raw) {
		return raw
	}
	return "https://" + strings.TrimLeft(raw, "/")
}

// HasHTTPScheme reports whether raw starts with http:// or https://.
func HasHTTPScheme(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func parseHTTP(href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if !HasHTTPScheme(href) {
		return nil, false
	}
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}

func isPlatformHost(host string) bool {
	if PlatformDomains.Contains(host) {
		return true
	}
	hostname := host
	if i := strings.LastIndex(hostname, ":"); i != -1 && !strings.Contains(hostname[i:], "]") {
		hostname = hostname[:i]
	}
	for _, h := range PlatformHosts {
		if hostname == h || strings.HasSuffix(hostname, "."+h) {
			return true
		}
	}
	return false
}

func hasAssetExtension(path string) bool {
	path = strings.ToLower(path)
	for _, ext := range AssetExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func isRedirect(u *url.URL) bool {
	return strings.Contains(strings.ToLower(u.Host), redirectHost) && strings.HasPrefix(u.Path, redirectPath)
}
