package recommend

import (
	"context"
	"errors"
	"fmt"
)

// Source looks up learning resources for a single skill.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Search returns at most limit courses for skill.
	Search(ctx context.Context, skill string, limit int) ([]Course, error)
}

// ChainSource queries its sources in order and returns the first non-empty result.
// Errors fall through to the next source; if every source fails the errors are joined.
type ChainSource struct {
	sources []Source
}

// NewChainSource builds a ChainSource. Nil sources are skipped.
func NewChainSource(sources ...Source) *ChainSource {
	chain := &ChainSource{}
	for _, s := range sources {
		if s != nil {
			chain.sources = append(chain.sources, s)
		}
	}
	return chain
}

// Len returns the number of sources in the chain.
func (c *ChainSource) Len() int {
	return len(c.sources)
}

// Name implements Source.
func (c *ChainSource) Name() string {
	return "chain"
}

// Search implements Source.
func (c *ChainSource) Search(ctx context.Context, skill string, limit int) ([]Course, error) {
	var errs []error
	for _, s := range c.sources {
		courses, err := s.Search(ctx, skill, limit)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			if ctx.Err() != nil {
				return nil, errors.Join(errs...)
			}
			continue
		}
		if len(courses) > 0 {
			return courses, nil
		}
	}

	if len(errs) > 0 && len(errs) == len(c.sources) {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}
