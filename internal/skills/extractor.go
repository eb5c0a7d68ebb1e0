// Package skills extracts canonical skills from free text and matches skill sets.
package skills

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/job-portal/internal/vocabulary"
)

// ExtractedSkill is a canonical skill found in a document together with its category.
type ExtractedSkill struct {
	Skill    string `json:"skill"`
	Category string `json:"category"`
}

// Extractor finds vocabulary skills in text. It is safe for concurrent use.
type Extractor struct {
	vocab   *vocabulary.Vocabulary
	pattern *regexp.Regexp
}

// NewExtractor compiles a single pattern covering every surface form of vocab.
// Alternatives are ordered longest first so that "react native" is preferred over "react".
func NewExtractor(vocab *vocabulary.Vocabulary) *Extractor {
	forms := vocab.SurfaceForms()
	alternatives := make([]string, 0, len(forms))
	for _, form := range forms {
		alternatives = append(alternatives, formPattern(form))
	}

	return &Extractor{
		vocab:   vocab,
		pattern: regexp.MustCompile(`(?i)(?:` + strings.Join(alternatives, "|") + `)`),
	}
}

// Vocabulary returns the vocabulary the extractor was built from.
func (e *Extractor) Vocabulary() *vocabulary.Vocabulary {
	return e.vocab
}

// Extract returns the canonical skills mentioned in text, deduplicated, in first-seen order.
// Empty text yields an empty slice.
func (e *Extractor) Extract(text string) []string {
	detailed := e.ExtractDetailed(text)
	out := make([]string, len(detailed))
	for i, s := range detailed {
		out[i] = s.Skill
	}
	return out
}

// ExtractDetailed is Extract with the category of every skill.
func (e *Extractor) ExtractDetailed(text string) []ExtractedSkill {
	found := make([]ExtractedSkill, 0)
	if strings.TrimSpace(text) == "" {
		return found
	}

	seen := make(map[string]bool)
	for _, match := range e.pattern.FindAllString(text, -1) {
		canonical, ok := e.vocab.Canonical(collapseSpaces(match))
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		category, _ := e.vocab.Category(canonical)
		found = append(found, ExtractedSkill{Skill: canonical, Category: category})
	}

	return found
}

// formPattern escapes a surface form and adds word boundaries on the sides that
// begin or end with a word character. Inner spaces match any whitespace run.
func formPattern(form string) string {
	quoted := regexp.QuoteMeta(form)
	quoted = strings.ReplaceAll(quoted, " ", `\s+`)

	first, _ := utf8.DecodeRuneInString(form)
	last, _ := utf8.DecodeLastRuneInString(form)
	if isWordRune(first) {
		quoted = `\b` + quoted
	}
	if isWordRune(last) {
		quoted += `\b`
	}
	return quoted
}

func isWordRune(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
