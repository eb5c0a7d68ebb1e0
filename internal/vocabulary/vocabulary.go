// Package vocabulary provides the immutable skill vocabulary used for resume and
// job description skill extraction.
//
// A vocabulary maps categories to canonical skill names, and each canonical skill
// to the surface forms (synonyms, spellings, abbreviations) that count as an
// occurrence of it. The table is loaded once at startup and shared read-only.
package vocabulary

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jonathan/job-portal/internal/schemas"
)

//go:embed skills.json
var defaultVocabulary []byte

//go:embed skills.schema.json
var vocabularySchemaJSON string

var vocabularySchema = schemas.MustCompile("skills_vocabulary", vocabularySchemaJSON)

// LoadError represents an error loading or validating a vocabulary file
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vocabulary load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("vocabulary load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// file is the on-disk representation of a vocabulary.
type file struct {
	Version    string                         `json:"version"`
	Categories map[string]map[string][]string `json:"categories"`
}

// Vocabulary is an immutable skill table. All accessors return copies.
type Vocabulary struct {
	version     string
	categories  []string
	byCategory  map[string][]string
	forms       map[string][]string
	categoryOf  map[string]string
	canonicalOf map[string]string
}

// Default returns the vocabulary embedded in the binary.
func Default() (*Vocabulary, error) {
	return Load(defaultVocabulary)
}

// MustDefault returns the embedded vocabulary, panicking if it is invalid.
func MustDefault() *Vocabulary {
	v, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return v
}

// LoadFile reads and validates a vocabulary from a JSON file.
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}
	return Load(data)
}

// Load validates data against the vocabulary schema and builds a Vocabulary.
// Names and forms are lowercased with whitespace collapsed. Loading fails when a canonical skill
// appears in more than one category or a surface form resolves to more than one
// canonical skill.
func Load(data []byte) (*Vocabulary, error) {
	if err := vocabularySchema.Validate(data); err != nil {
		return nil, &LoadError{Message: "schema validation failed", Cause: err}
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Message: "failed to parse JSON", Cause: err}
	}

	v := &Vocabulary{
		version:     f.Version,
		byCategory:  make(map[string][]string),
		forms:       make(map[string][]string),
		categoryOf:  make(map[string]string),
		canonicalOf: make(map[string]string),
	}

	// Iterate in sorted order so conflict errors are reproducible.
	categoryNames := make([]string, 0, len(f.Categories))
	for name := range f.Categories {
		categoryNames = append(categoryNames, name)
	}
	sort.Strings(categoryNames)

	for _, rawCategory := range categoryNames {
		category := normalize(rawCategory)
		skills := f.Categories[rawCategory]

		skillNames := make([]string, 0, len(skills))
		for name := range skills {
			skillNames = append(skillNames, name)
		}
		sort.Strings(skillNames)

		for _, rawSkill := range skillNames {
			canonical := normalize(rawSkill)
			if canonical == "" {
				continue
			}
			if existing, ok := v.categoryOf[canonical]; ok {
				return nil, &LoadError{Message: fmt.Sprintf("skill %q is listed in both %q and %q", canonical, existing, category)}
			}
			v.categoryOf[canonical] = category
			v.byCategory[category] = append(v.byCategory[category], canonical)

			seen := make(map[string]bool)
			for _, raw := range append([]string{canonical}, skills[rawSkill]...) {
				form := normalize(raw)
				if form == "" || seen[form] {
					continue
				}
				seen[form] = true
				if owner, ok := v.canonicalOf[form]; ok && owner != canonical {
					return nil, &LoadError{Message: fmt.Sprintf("surface form %q maps to both %q and %q", form, owner, canonical)}
				}
				v.canonicalOf[form] = canonical
				v.forms[canonical] = append(v.forms[canonical], form)
			}
		}
	}

	for category := range v.byCategory {
		v.categories = append(v.categories, category)
	}
	sort.Strings(v.categories)

	if len(v.canonicalOf) == 0 {
		return nil, &LoadError{Message: "vocabulary defines no skills"}
	}

	return v, nil
}

// Version returns the version string declared by the vocabulary file.
func (v *Vocabulary) Version() string {
	return v.version
}

// Categories returns the sorted category names.
func (v *Vocabulary) Categories() []string {
	return append([]string(nil), v.categories...)
}

// Skills returns the sorted canonical skills of a category.
func (v *Vocabulary) Skills(category string) []string {
	return append([]string(nil), v.byCategory[normalize(category)]...)
}

// Forms returns every surface form of a canonical skill, canonical name first.
func (v *Vocabulary) Forms(canonical string) []string {
	return append([]string(nil), v.forms[normalize(canonical)]...)
}

// Category returns the category of a canonical skill.
func (v *Vocabulary) Category(canonical string) (string, bool) {
	category, ok := v.categoryOf[normalize(canonical)]
	return category, ok
}

// Canonical resolves a surface form (any case) to its canonical skill.
func (v *Vocabulary) Canonical(form string) (string, bool) {
	canonical, ok := v.canonicalOf[normalize(form)]
	return canonical, ok
}

// SurfaceForms returns all surface forms, longest first, ties broken alphabetically.
func (v *Vocabulary) SurfaceForms() []string {
	forms := make([]string, 0, len(v.canonicalOf))
	for form := range v.canonicalOf {
		forms = append(forms, form)
	}
	sort.Slice(forms, func(i, j int) bool {
		if len(forms[i]) != len(forms[j]) {
			return len(forms[i]) > len(forms[j])
		}
		return forms[i] < forms[j]
	})
	return forms
}

// Len returns the number of canonical skills.
func (v *Vocabulary) Len() int {
	return len(v.categoryOf)
}

// normalize lowercases s and collapses whitespace runs to single spaces.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
