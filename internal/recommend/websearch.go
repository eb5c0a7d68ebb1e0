package recommend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// WebSearchSource finds course pages through a Google Programmable Search engine,
// typically one restricted to learning sites.
type WebSearchSource struct {
	svc *customsearch.Service
	cx  string
}

// NewWebSearchSource creates a WebSearchSource for search engine cx.
func NewWebSearchSource(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*WebSearchSource, error) {
	if cx == "" {
		return nil, fmt.Errorf("search engine id is required")
	}
	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &WebSearchSource{svc: svc, cx: cx}, nil
}

// Name implements Source.
func (s *WebSearchSource) Name() string {
	return "websearch"
}

// Search implements Source.
func (s *WebSearchSource) Search(ctx context.Context, skill string, limit int) ([]Course, error) {
	query := fmt.Sprintf("%s online course", skill)
	resp, err := s.svc.Cse.List().Cx(s.cx).Q(query).Num(int64(limit)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	courses := make([]Course, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		courses = append(courses, Course{
			Title:       item.Title,
			Platform:    siteName(item.DisplayLink, item.Link),
			Link:        item.Link,
			Description: item.Snippet,
			Skill:       skill,
			Type:        Classify(item.Title, item.Snippet, ""),
		})
	}
	return courses, nil
}

func siteName(displayLink, link string) string {
	host := displayLink
	if host == "" {
		if u, err := url.Parse(link); err == nil {
			host = u.Hostname()
		}
	}
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
