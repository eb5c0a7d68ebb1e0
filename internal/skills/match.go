package skills

import (
	"math"
	"sort"
	"strings"
)

// MatchResult partitions a candidate and a required skill set.
// Every slice is sorted so the result does not depend on input order.
type MatchResult struct {
	Matched []string `json:"matchedSkills"`
	Missing []string `json:"missingSkills"`
	Extra   []string `json:"extraSkills"`
}

// Match compares skill sets by exact equality of canonical names.
// Matched is candidate ∩ required, Missing is required − candidate, Extra is candidate − required.
func Match(candidate, required []string) MatchResult {
	have := toSet(candidate)
	want := toSet(required)

	result := MatchResult{
		Matched: make([]string, 0),
		Missing: make([]string, 0),
		Extra:   make([]string, 0),
	}

	for skill := range want {
		if have[skill] {
			result.Matched = append(result.Matched, skill)
		} else {
			result.Missing = append(result.Missing, skill)
		}
	}
	for skill := range have {
		if !want[skill] {
			result.Extra = append(result.Extra, skill)
		}
	}

	sort.Strings(result.Matched)
	sort.Strings(result.Missing)
	sort.Strings(result.Extra)
	return result
}

// Score returns round(100 * matched / (required ∪ matched)) for an exact match result,
// or 0 when nothing was required.
func Score(result MatchResult) int {
	total := len(result.Matched) + len(result.Missing)
	if total == 0 {
		return 0
	}
	return percent(len(result.Matched), total)
}

// ContainsResult is the outcome of MatchContains. Matched and Missing keep the
// order of the required list.
type ContainsResult struct {
	Score         int      `json:"matchScore"`
	Matched       []string `json:"matchedSkills"`
	Missing       []string `json:"missingSkills"`
	MatchedCount  int      `json:"matchedCount"`
	TotalRequired int      `json:"totalRequired"`
}

// MatchContains scores required skills against candidate skills using substring
// containment in either direction, case-insensitively, so "python" matches "python3".
// Blank required entries are ignored and duplicates are counted once.
func MatchContains(candidate, required []string) ContainsResult {
	have := make([]string, 0, len(candidate))
	for _, skill := range candidate {
		if s := normalizeSkill(skill); s != "" {
			have = append(have, s)
		}
	}

	result := ContainsResult{
		Matched: make([]string, 0),
		Missing: make([]string, 0),
	}

	seen := make(map[string]bool)
	for _, raw := range required {
		skill := normalizeSkill(raw)
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		result.TotalRequired++

		if containsEither(have, skill) {
			result.Matched = append(result.Matched, skill)
		} else {
			result.Missing = append(result.Missing, skill)
		}
	}

	result.MatchedCount = len(result.Matched)
	result.Score = percent(result.MatchedCount, max(1, result.TotalRequired))
	return result
}

// NormalizeList lowercases, trims and deduplicates skills, dropping blanks and
// keeping first-seen order.
func NormalizeList(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool)
	for _, raw := range skills {
		skill := normalizeSkill(raw)
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		out = append(out, skill)
	}
	return out
}

func containsEither(candidates []string, skill string) bool {
	for _, c := range candidates {
		if strings.Contains(c, skill) || strings.Contains(skill, c) {
			return true
		}
	}
	return false
}

func toSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, raw := range skills {
		if s := normalizeSkill(raw); s != "" {
			set[s] = true
		}
	}
	return set
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func percent(part, whole int) int {
	return int(math.Round(100 * float64(part) / float64(whole)))
}
