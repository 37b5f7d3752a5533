package sitecheck

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/Jainprashuk/LeadLens/internal/keywords"
	"github.com/Jainprashuk/LeadLens/internal/logger"
	"github.com/Jainprashuk/LeadLens/internal/urlutil"
)

// Points awarded per signal. They sum to MaxScore.
const (
	pointsHTTPS       = 4
	pointsViewport    = 4
	pointsDescription = 3
	pointsContact     = 4
	pointsAnalytics   = 5

	defaultMaxBytes  = 2 * 1024 * 1024
	defaultUserAgent = "Mozilla/5.0"
)

// AnalyticsMarkers are raw-HTML fragments of common analytics snippets.
var AnalyticsMarkers = keywords.NewSet("gtag(", "analytics.js", "ga('", "google-analytics")

// Prober fetches a homepage over HTTP and scores it.
type Prober struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	limiter   *rate.Limiter
	resolver  Resolver
	log       logger.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithHTTPClient replaces the HTTP client. Its own Timeout, if any, still applies.
func WithHTTPClient(c *http.Client) Option { return func(p *Prober) { p.client = c } }

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Prober) {
		if strings.TrimSpace(ua) != "" {
			p.userAgent = ua
		}
	}
}

// WithMaxBytes caps how much of the body is read.
func WithMaxBytes(n int64) Option {
	return func(p *Prober) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// WithRateLimit paces probes to perSecond requests; zero disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(p *Prober) {
		if perSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithResolver enables a DNS pre-check before fetching.
func WithResolver(r Resolver) Option { return func(p *Prober) { p.resolver = r } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.log = l
		}
	}
}

// New builds a Prober.
func New(opts ...Option) *Prober {
	p := &Prober{
		client:    &http.Client{},
		userAgent: defaultUserAgent,
		maxBytes:  defaultMaxBytes,
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Check fetches rawURL within timeout and scores the page. It never fails:
// any problem yields an Absent result whose details say why.
func (p *Prober) Check(rawURL string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Absent(nil)
	}
	target, err := url.Parse(urlutil.EnsureScheme(rawURL))
	if err != nil || target.Hostname() == "" {
		return p.absent(rawURL, "error", "invalid url")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return p.absent(rawURL, "error", fmt.Sprintf("rate limit: %v", err))
		}
	}
	if p.resolver != nil {
		ok, err := p.resolver.HasAddress(ctx, target.Hostname())
		if err == nil && !ok {
			return p.absent(rawURL, "error", "dns: no address records")
		}
	}

	doc, html, status, err := p.fetch(ctx, target.String())
	if err != nil {
		return p.absent(rawURL, "error", err.Error())
	}
	if status != http.StatusOK {
		return p.absent(rawURL, "http_status", strconv.Itoa(status))
	}
	// A link typed without a scheme is fetched over https but earns no https points.
	scheme := target.Scheme
	if !urlutil.HasHTTPScheme(rawURL) {
		scheme = ""
	}
	return scorePage(scheme, doc, html)
}

func (p *Prober) absent(rawURL, key, value string) Result {
	p.log.Debug("site check absent", logger.String("url", rawURL), logger.String(key, value))
	return Absent(map[string]string{key: value})
}

func (p *Prober) fetch(ctx context.Context, target string) (*goquery.Document, string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", 0, err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", resp.StatusCode, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes))
	if err != nil {
		return nil, "", resp.StatusCode, err
	}
	decoded, err := charset.NewReader(bytes.NewReader(body), resp.Header.Get("Content-Type"))
	if err == nil {
		if utf8Body, readErr := io.ReadAll(decoded); readErr == nil {
			body = utf8Body
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, "", resp.StatusCode, err
	}
	return doc, string(body), resp.StatusCode, nil
}

// scorePage applies the additive heuristic to an already fetched page.
func scorePage(scheme string, doc *goquery.Document, html string) Result {
	signals := map[string]bool{
		"https":            strings.EqualFold(scheme, "https"),
		"viewport":         doc.Find(`meta[name="viewport"]`).Length() > 0,
		"meta_description": doc.Find(`meta[name="description"]`).Length() > 0,
		"contact":          hasContactLink(doc),
		"analytics":        AnalyticsMarkers.Contains(html),
	}
	points := map[string]int{
		"https":            pointsHTTPS,
		"viewport":         pointsViewport,
		"meta_description": pointsDescription,
		"contact":          pointsContact,
		"analytics":        pointsAnalytics,
	}

	score := 0
	details := make(map[string]string, len(signals)+1)
	for name, found := range signals {
		if found {
			score += points[name]
		}
		details[name] = strconv.FormatBool(found)
	}
	if score > MaxScore {
		score = MaxScore
	}
	details["site_score"] = strconv.Itoa(score)
	return Present(score, details)
}

func hasContactLink(doc *goquery.Document) bool {
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.ToLower(href)
		if strings.Contains(href, "mailto:") || strings.Contains(href, "contact") {
			found = true
			return false
		}
		return true
	})
	return found
}

var (
	_ Checker = (*Prober)(nil)
	_ Checker = Disabled{}
)
