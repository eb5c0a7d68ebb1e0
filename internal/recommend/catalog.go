package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/job-portal/internal/fetch"
	"golang.org/x/time/rate"
)

// QueryPlaceholder marks where the escaped skill goes in a catalog search URL.
const QueryPlaceholder = "{query}"

// CatalogOptions configures a CatalogSource.
type CatalogOptions struct {
	// SearchURL is the catalog search page, e.g. "https://catalog.example.com/search?q={query}".
	// Without a placeholder the query is appended as the "q" parameter.
	SearchURL string
	// Platform is reported on every course; defaults to the catalog host.
	Platform string
	// RequestsPerSecond paces outbound page loads; 0 means 1 per second.
	RequestsPerSecond float64
	// UseBrowser renders the page headlessly when the static HTML has no course cards.
	UseBrowser bool
	// BrowserTimeout bounds a headless render.
	BrowserTimeout time.Duration
	// Fetch configures the HTTP fetch.
	Fetch *fetch.Options
	// Logger receives render fallbacks; slog.Default when nil.
	Logger *slog.Logger
}

// CatalogSource scrapes a public course catalog search page.
type CatalogSource struct {
	opts    CatalogOptions
	limiter *rate.Limiter
	// render is swapped out in tests
	render func(ctx context.Context, url, waitSelector string, timeout time.Duration) (string, error)
}

// NewCatalogSource validates opts and creates a CatalogSource.
func NewCatalogSource(opts CatalogOptions) (*CatalogSource, error) {
	probe := strings.ReplaceAll(opts.SearchURL, QueryPlaceholder, "x")
	u, err := url.Parse(probe)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid catalog search URL %q", opts.SearchURL)
	}
	if opts.Platform == "" {
		opts.Platform = strings.TrimPrefix(u.Hostname(), "www.")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &CatalogSource{
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		render:  fetch.Render,
	}, nil
}

// Name implements Source.
func (s *CatalogSource) Name() string {
	return "catalog"
}

// Search implements Source.
func (s *CatalogSource) Search(ctx context.Context, skill string, limit int) ([]Course, error) {
	searchURL := s.searchURL(skill)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("catalog rate limit: %w", err)
	}
	result, err := fetch.URL(ctx, searchURL, s.opts.Fetch)
	if err != nil {
		return nil, err
	}

	courses, cards, err := s.parse(result.HTML, searchURL, skill, limit)
	if err != nil {
		return nil, err
	}

	if s.opts.UseBrowser && cards == 0 {
		s.opts.Logger.Debug("catalog page has no course cards, rendering", "url", searchURL)
		html, err := s.render(ctx, searchURL, strings.Join(fetch.CourseCardSelectors(), ", "), s.opts.BrowserTimeout)
		if err != nil {
			return nil, err
		}
		courses, _, err = s.parse(html, searchURL, skill, limit)
		if err != nil {
			return nil, err
		}
	}

	return courses, nil
}

func (s *CatalogSource) searchURL(skill string) string {
	if strings.Contains(s.opts.SearchURL, QueryPlaceholder) {
		return strings.ReplaceAll(s.opts.SearchURL, QueryPlaceholder, url.QueryEscape(skill))
	}
	u, _ := url.Parse(s.opts.SearchURL)
	q := u.Query()
	q.Set("q", skill)
	u.RawQuery = q.Encode()
	return u.String()
}

// parse extracts up to limit courses. It also returns how many cards matched so
// callers can tell an unrendered page from an empty result.
func (s *CatalogSource) parse(html, pageURL, skill string, limit int) ([]Course, int, error) {
	if limit <= 0 {
		limit = DefaultOptions().PerSkill
	}
	doc, err := fetch.ParseHTML(html)
	if err != nil {
		return nil, 0, err
	}

	var cards *goquery.Selection
	for _, selector := range fetch.CourseCardSelectors() {
		if found := doc.Find(selector); found.Length() > 0 {
			cards = found
			break
		}
	}
	if cards == nil {
		return []Course{}, 0, nil
	}

	courses := make([]Course, 0, limit)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := fetch.FirstText(card, fetch.CourseTitleSelectors())
		if title == "" {
			return true
		}
		description := fetch.FirstText(card, fetch.CourseDescriptionSelectors())
		platform := s.opts.Platform
		if provider := fetch.FirstText(card, fetch.CourseProviderSelectors()); provider != "" {
			platform = provider
		}

		courses = append(courses, Course{
			Title:       title,
			Platform:    platform,
			Link:        fetch.Resolve(pageURL, fetch.FirstAttr(card, fetch.CourseLinkSelectors(), "href")),
			Duration:    fetch.FirstText(card, fetch.CourseDurationSelectors()),
			Rating:      parseRating(fetch.FirstText(card, fetch.CourseRatingSelectors())),
			Description: description,
			Thumbnail:   fetch.Resolve(pageURL, fetch.FirstAttr(card, fetch.CourseImageSelectors(), "src")),
			Skill:       skill,
			Type:        Classify(title, description, fetch.FirstText(card, fetch.CourseLevelSelectors())),
		})
		return len(courses) < limit
	})

	return courses, cards.Length(), nil
}

// parseRating reads the first number in text, e.g. "4.7 (12k reviews)". Values
// outside 0-5 are treated as unrated.
func parseRating(text string) float64 {
	for _, field := range strings.Fields(text) {
		field = strings.Trim(field, "()★☆/")
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		if v < 0 || v > 5 {
			return 0
		}
		return v
	}
	return 0
}
