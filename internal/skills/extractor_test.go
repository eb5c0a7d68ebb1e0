package skills

import (
	"testing"

	"github.com/jonathan/job-portal/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	return NewExtractor(vocabulary.MustDefault())
}

func TestExtract_SynonymCollapse(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("I know JS, ReactJS and Node.js")
	assert.Equal(t, []string{"javascript", "react", "nodejs"}, got)
}

func TestExtract_CountsEachConceptOnce(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("JavaScript, js, ECMAScript and ES6 are the same language")
	assert.Equal(t, []string{"javascript"}, got)
}

func TestExtract_EmptyInput(t *testing.T) {
	e := newTestExtractor(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		got := e.Extract(text)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := newTestExtractor(t)
	text := "Senior engineer: Python, Django, PostgreSQL, Docker, Kubernetes (k8s), AWS and React Native."

	first := e.Extract(text)
	second := e.Extract(text)
	assert.Equal(t, first, second)
}

func TestExtract_Boundaries(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"java is not javascript", "We use JavaScript daily", []string{"javascript"}},
		{"no match inside words", "Our scalable platform", []string{}},
		{"symbols in forms", "Skilled in C++, C# and .NET", []string{"c++", "c#", "dotnet"}},
		{"longest form wins", "Built apps with React Native", []string{"react native"}},
		{"dotted form", "Backend on ASP.NET Core", []string{"dotnet"}},
		{"multi-word across line break", "Deployed on Amazon\nWeb Services", []string{"aws"}},
		{"case insensitive", "POSTGRES and MongoDB", []string{"postgresql", "mongodb"}},
		{"punctuation around", "(docker), [kubernetes]; git.", []string{"docker", "kubernetes", "git"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text))
		})
	}
}

func TestExtractDetailed_Categories(t *testing.T) {
	e := newTestExtractor(t)

	got := e.ExtractDetailed("Python and PostgreSQL on AWS")
	require.Len(t, got, 3)
	assert.Equal(t, ExtractedSkill{Skill: "python", Category: "programming"}, got[0])
	assert.Equal(t, ExtractedSkill{Skill: "postgresql", Category: "database"}, got[1])
	assert.Equal(t, ExtractedSkill{Skill: "aws", Category: "cloud"}, got[2])
}

func TestExtract_CustomVocabulary(t *testing.T) {
	vocab, err := vocabulary.Load([]byte(`{"version": "t", "categories": {
		"programming": {"go": ["golang"]}
	}}`))
	require.NoError(t, err)
	e := NewExtractor(vocab)

	assert.Equal(t, []string{"go"}, e.Extract("Golang and Go services"))
	assert.Same(t, vocab, e.Vocabulary())
}

func TestExtract_CustomVocabularyCollapsesSpaces(t *testing.T) {
	vocab, err := vocabulary.Load([]byte(`{"version": "t", "categories": {
		"data": {"machine  learning": ["deep \t learning"]}
	}}`))
	require.NoError(t, err)
	e := NewExtractor(vocab)

	assert.Equal(t, []string{"machine learning"}, e.Extract("I do machine  learning"))
	assert.Equal(t, []string{"machine learning"}, e.Extract("Deep\nlearning research"))
}
