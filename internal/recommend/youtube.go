package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeSource finds tutorial videos with the YouTube Data API v3.
type YouTubeSource struct {
	svc *youtube.Service
}

// NewYouTubeSource creates a YouTubeSource authenticated with apiKey. Extra client
// options (endpoint, HTTP client) are passed through to the API client.
func NewYouTubeSource(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeSource, error) {
	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &YouTubeSource{svc: svc}, nil
}

// Name implements Source.
func (s *YouTubeSource) Name() string {
	return "youtube"
}

// Search implements Source. It runs one search call and, when it finds videos,
// one videos.list call for their durations and like counts.
func (s *YouTubeSource) Search(ctx context.Context, skill string, limit int) ([]Course, error) {
	resp, err := s.svc.Search.List([]string{"snippet"}).
		Q(skill + " tutorial").
		Type("video").
		VideoEmbeddable("true").
		SafeSearch("strict").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	courses := make([]Course, 0, len(resp.Items))
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		videoID := item.Id.VideoId
		ids = append(ids, videoID)

		title := item.Snippet.Title
		courses = append(courses, Course{
			ID:          videoID,
			Title:       title,
			Platform:    "YouTube",
			Link:        "https://www.youtube.com/watch?v=" + videoID,
			Description: item.Snippet.Description,
			Thumbnail:   thumbnailURL(item.Snippet.Thumbnails),
			Skill:       skill,
			Type:        videoType(title, item.Snippet.Description),
		})
	}

	if len(ids) == 0 {
		return courses, nil
	}

	// Durations are cosmetic; keep the search results if this call fails.
	details, err := s.svc.Videos.List([]string{"contentDetails", "statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return courses, nil
	}

	byID := make(map[string]*youtube.Video, len(details.Items))
	for _, v := range details.Items {
		byID[v.Id] = v
	}
	for i := range courses {
		v, ok := byID[courses[i].ID]
		if !ok {
			continue
		}
		if v.ContentDetails != nil {
			courses[i].Duration = formatISODuration(v.ContentDetails.Duration)
		}
		if v.Statistics != nil {
			courses[i].Rating = likeRating(v.Statistics.LikeCount, v.Statistics.ViewCount)
		}
	}

	return courses, nil
}

// videoType classifies a video, treating anything unlabeled as a tutorial.
func videoType(title, description string) string {
	t := Classify(title, description, "")
	if t == TypeCourse && !containsWord(strings.ToLower(title), "course") {
		return TypeTutorial
	}
	return t
}

func thumbnailURL(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, thumb := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if thumb != nil && thumb.Url != "" {
			return thumb.Url
		}
	}
	return ""
}

// likeRating maps the like/view ratio onto a 0-5 scale. Videos with no views are unrated.
func likeRating(likes, views uint64) float64 {
	if views == 0 {
		return 0
	}
	// A 4% like ratio is already exceptional on YouTube.
	r := float64(likes) / float64(views) / 0.04 * 5
	if r > 5 {
		r = 5
	}
	return math.Round(r*10) / 10
}

// formatISODuration renders an ISO 8601 duration such as "PT1H2M30S" as "1h 2m".
// Unparseable input is returned unchanged.
func formatISODuration(iso string) string {
	d, ok := parseISODuration(iso)
	if !ok {
		return iso
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func parseISODuration(iso string) (time.Duration, bool) {
	rest, ok := strings.CutPrefix(iso, "P")
	if !ok || rest == "" {
		return 0, false
	}

	var total time.Duration
	inTime := false
	num := 0
	digits := false
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			digits = true
		case r == 'T':
			inTime = true
		default:
			if !digits {
				return 0, false
			}
			var unit time.Duration
			switch {
			case r == 'D' && !inTime:
				unit = 24 * time.Hour
			case r == 'W' && !inTime:
				unit = 7 * 24 * time.Hour
			case r == 'H' && inTime:
				unit = time.Hour
			case r == 'M' && inTime:
				unit = time.Minute
			case r == 'S' && inTime:
				unit = time.Second
			default:
				return 0, false
			}
			total += time.Duration(num) * unit
			num = 0
			digits = false
		}
	}
	if digits {
		return 0, false
	}
	return total, true
}
