// Package recommend fetches learning resources for skills a resume is missing.
package recommend

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Course types. Every course is assigned exactly one.
const (
	TypeDegree        = "degree"
	TypeDiploma       = "diploma"
	TypeCertification = "certification"
	TypeCourse        = "course"
	TypeTutorial      = "tutorial"
)

// Course is a learning resource suggested for one missing skill.
type Course struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Platform    string  `json:"platform"`
	Link        string  `json:"link"`
	Duration    string  `json:"duration"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail"`
	Skill       string  `json:"skill"`
	Type        string  `json:"type"`
}

// typeKeywords is checked in order; the first bucket with a hit wins.
var typeKeywords = []struct {
	courseType string
	keywords   []string
}{
	{TypeDegree, []string{"degree", "bachelor", "master's", "masters", "mba", "msc", "bsc"}},
	{TypeDiploma, []string{"diploma", "postgraduate", "post-graduate"}},
	{TypeCertification, []string{"certificate", "certification", "certified", "exam prep"}},
	{TypeTutorial, []string{"tutorial", "crash course", "in 100 seconds", "explained", "for beginners", "how to"}},
	{TypeCourse, []string{"course", "specialization", "bootcamp", "class"}},
}

// Classify buckets a course by keywords in its title, description and any
// provider-supplied label. It is best effort and always returns one of the Type constants.
func Classify(title, description, label string) string {
	text := strings.ToLower(strings.Join([]string{label, title, description}, " "))
	for _, bucket := range typeKeywords {
		for _, kw := range bucket.keywords {
			if containsWord(text, kw) {
				return bucket.courseType
			}
		}
	}
	return TypeCourse
}

func containsWord(text, kw string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(kw)
		if (i == 0 || !isAlnum(text[i-1])) && (end == len(text) || !isAlnum(text[end])) {
			return true
		}
		start = i + 1
	}
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// courseID derives a stable id from a course link, or from its title when it has none.
func courseID(c Course) string {
	key := normalizeLink(c.Link)
	if key == "" {
		key = "title:" + normalizeTitle(c.Title)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// dedupeKey identifies a course for deduplication: its normalized link, falling back
// to its normalized title. Courses with neither have no key.
func dedupeKey(c Course) string {
	if key := normalizeLink(c.Link); key != "" {
		return key
	}
	if title := normalizeTitle(c.Title); title != "" {
		return "title:" + title
	}
	return ""
}

// normalizeLink lowercases scheme and host and strips the fragment, utm_* tracking
// parameters and any trailing slash.
func normalizeLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimRight(raw, "/"))
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	query := u.Query()
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			query.Del(key)
		}
	}
	u.RawQuery = query.Encode()

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String()
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
