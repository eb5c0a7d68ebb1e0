package recommend

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options bounds the fan-out and size of a recommendation fetch.
type Options struct {
	// MaxSkills is how many missing skills are looked up.
	MaxSkills int
	// PerSkill is how many results are requested for each skill.
	PerSkill int
	// MaxTotal caps the combined, deduplicated list.
	MaxTotal int
	// Timeout bounds every single source call.
	Timeout time.Duration
	// Concurrency is the number of skills looked up at once; 1 is sequential.
	Concurrency int
}

// DefaultOptions returns the standard limits.
func DefaultOptions() Options {
	return Options{
		MaxSkills:   10,
		PerSkill:    3,
		MaxTotal:    15,
		Timeout:     5 * time.Second,
		Concurrency: 4,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxSkills <= 0 {
		o.MaxSkills = d.MaxSkills
	}
	if o.PerSkill <= 0 {
		o.PerSkill = d.PerSkill
	}
	if o.MaxTotal <= 0 {
		o.MaxTotal = d.MaxTotal
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	return o
}

// FailureFunc is called for every skill whose lookup failed.
type FailureFunc func(source, skill string, err error)

// Fetcher turns a list of missing skills into a deduplicated, capped list of courses.
// Lookup failures never fail the fetch: they are logged and the skill is skipped.
type Fetcher struct {
	source    Source
	opts      Options
	logger    *slog.Logger
	onFailure FailureFunc
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLogger sets the logger used for lookup failures.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFailureHook registers fn to observe lookup failures, e.g. for metrics.
func WithFailureHook(fn FailureFunc) FetcherOption {
	return func(f *Fetcher) {
		f.onFailure = fn
	}
}

// NewFetcher creates a Fetcher. A nil source yields a Fetcher that always returns
// an empty list.
func NewFetcher(source Source, opts Options, options ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source: source,
		opts:   opts.withDefaults(),
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Options returns the effective limits.
func (f *Fetcher) Options() Options {
	return f.opts
}

// FetchResources looks up courses for the first MaxSkills distinct missing skills and
// returns them in skill order, deduplicated by normalized link (or title) and capped
// at MaxTotal. The result is the same whether lookups run sequentially or in parallel.
func (f *Fetcher) FetchResources(ctx context.Context, missing []string) []Course {
	courses := make([]Course, 0)
	if f == nil || f.source == nil {
		return courses
	}

	skills := firstDistinct(missing, f.opts.MaxSkills)
	if len(skills) == 0 {
		return courses
	}

	results := make([][]Course, len(skills))
	var g errgroup.Group
	g.SetLimit(f.opts.Concurrency)
	for i, skill := range skills {
		g.Go(func() error {
			results[i] = f.lookup(ctx, skill)
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool)
	for _, batch := range results {
		for _, c := range batch {
			key := dedupeKey(c)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			courses = append(courses, c)
			if len(courses) == f.opts.MaxTotal {
				return courses
			}
		}
	}
	return courses
}

func (f *Fetcher) lookup(ctx context.Context, skill string) []Course {
	if ctx.Err() != nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	found, err := f.source.Search(callCtx, skill, f.opts.PerSkill)
	if err != nil {
		f.logger.Warn("course lookup failed", "source", f.source.Name(), "skill", skill, "error", err)
		if f.onFailure != nil {
			f.onFailure(f.source.Name(), skill, err)
		}
		return nil
	}

	if len(found) > f.opts.PerSkill {
		found = found[:f.opts.PerSkill]
	}
	out := make([]Course, 0, len(found))
	for _, c := range found {
		out = append(out, finalize(c, skill))
	}
	return out
}

// finalize fills in the fields every returned course must carry.
func finalize(c Course, skill string) Course {
	c.Title = strings.TrimSpace(c.Title)
	c.Link = strings.TrimSpace(c.Link)
	if c.Skill == "" {
		c.Skill = skill
	}
	switch c.Type {
	case TypeDegree, TypeDiploma, TypeCertification, TypeCourse, TypeTutorial:
	default:
		c.Type = Classify(c.Title, c.Description, c.Type)
	}
	if c.ID == "" {
		c.ID = courseID(c)
	}
	return c
}

func firstDistinct(skills []string, n int) []string {
	out := make([]string, 0, min(len(skills), n))
	seen := make(map[string]bool)
	for _, raw := range skills {
		skill := strings.ToLower(strings.TrimSpace(raw))
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		out = append(out, skill)
		if len(out) == n {
			break
		}
	}
	return out
}
