// Package fetch provides URL fetching and HTML helpers for scraping course catalog pages.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; JobPortal/1.0)"

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 4 << 20

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// URL retrieves HTML content from a URL.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	limit := opts.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}

// ParseHTML parses html and strips scripts, styles and page chrome.
func ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("nav, footer, script, style, noscript, .ad, .advertisement, .ads, .cookie-banner, .popup").Remove()
	return doc, nil
}

// FirstText returns the cleaned text of the first selector that matches non-empty
// text inside sel, or "" when none does.
func FirstText(sel *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		found := sel.Find(selector)
		if found.Length() == 0 {
			continue
		}
		if text := cleanWhitespace(found.First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// FirstAttr returns the first non-empty attr value among elements matching selectors
// inside sel, checking sel itself last.
func FirstAttr(sel *goquery.Selection, selectors []string, attr string) string {
	for _, selector := range selectors {
		if v, ok := sel.Find(selector).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if v, ok := sel.Attr(attr); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Resolve makes ref absolute against base. Unparseable refs are returned unchanged.
func Resolve(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// CourseCardSelectors returns selectors for a single course result on catalog search pages.
func CourseCardSelectors() []string {
	return []string{
		"[data-testid='course-card']",
		".course-card",
		".course-item",
		".search-result",
		".cds-ProductCard-base",
		"li.course",
		"article.course",
	}
}

// CourseTitleSelectors returns selectors for the title inside a course card.
func CourseTitleSelectors() []string {
	return []string{
		"[data-testid='course-title']",
		".course-title",
		".card-title",
		"h3",
		"h2",
		"a",
	}
}

// CourseLinkSelectors returns selectors for the course link inside a card.
func CourseLinkSelectors() []string {
	return []string{
		"a.course-link",
		"[data-testid='course-title'] a",
		"h3 a",
		"h2 a",
		"a[href]",
	}
}

// CourseDescriptionSelectors returns selectors for a course summary.
func CourseDescriptionSelectors() []string {
	return []string{
		".course-description",
		".description",
		".card-description",
		"p",
	}
}

// CourseProviderSelectors returns selectors for the course provider or partner name.
func CourseProviderSelectors() []string {
	return []string{
		".course-provider",
		".partner-name",
		".provider",
	}
}

// CourseDurationSelectors returns selectors for course length.
func CourseDurationSelectors() []string {
	return []string{
		".course-duration",
		".duration",
		"[data-testid='duration']",
	}
}

// CourseRatingSelectors returns selectors for course rating.
func CourseRatingSelectors() []string {
	return []string{
		".course-rating",
		".rating",
		"[data-testid='ratings-count']",
	}
}

// CourseImageSelectors returns selectors for the course thumbnail.
func CourseImageSelectors() []string {
	return []string{
		"img.course-image",
		"img",
	}
}

// CourseLevelSelectors returns selectors for the credential or level label
// (e.g. "Professional Certificate", "Degree").
func CourseLevelSelectors() []string {
	return []string{
		".course-type",
		".product-type",
		".badge",
	}
}

// cleanWhitespace collapses runs of whitespace into single spaces.
func cleanWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
