package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	// Create test server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_CustomHeadersAndClient(t *testing.T) {
	var gotAgent, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	opts := &Options{
		Headers: map[string]string{"Accept-Language": "en"},
		Client:  server.Client(),
	}
	_, err := URL(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotAgent)
	assert.Equal(t, "en", gotAccept)
}

func TestURL_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, &Options{MaxBodyBytes: 10})
	require.NoError(t, err)
	assert.Len(t, result.HTML, 10)
}

const catalogHTML = `
<html>
	<body>
		<nav>Browse</nav>
		<ul>
			<li class="course-card">
				<h3><a href="/learn/go-basics?utm_source=x">  Go   Basics </a></h3>
				<span class="course-provider">Gopher U</span>
				<p class="course-description">Learn the language.</p>
				<img src="https://cdn.example.com/go.png">
			</li>
			<li class="course-card">
				<h3>No link here</h3>
			</li>
		</ul>
		<script>var x = 1;</script>
	</body>
</html>`

func TestParseHTML_StripsNoise(t *testing.T) {
	doc, err := ParseHTML(catalogHTML)
	require.NoError(t, err)

	assert.Equal(t, 0, doc.Find("nav").Length())
	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Equal(t, 2, doc.Find(".course-card").Length())
}

func TestFirstText_And_FirstAttr(t *testing.T) {
	doc, err := ParseHTML(catalogHTML)
	require.NoError(t, err)

	card := doc.Find(".course-card").First()
	assert.Equal(t, "Go Basics", FirstText(card, CourseTitleSelectors()))
	assert.Equal(t, "Gopher U", FirstText(card, CourseProviderSelectors()))
	assert.Equal(t, "Learn the language.", FirstText(card, CourseDescriptionSelectors()))
	assert.Equal(t, "", FirstText(card, CourseDurationSelectors()))
	assert.Equal(t, "/learn/go-basics?utm_source=x", FirstAttr(card, CourseLinkSelectors(), "href"))
	assert.Equal(t, "https://cdn.example.com/go.png", FirstAttr(card, CourseImageSelectors(), "src"))

	second := doc.Find(".course-card").Eq(1)
	assert.Equal(t, "", FirstAttr(second, CourseLinkSelectors(), "href"))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "https://catalog.example.com/learn/go", Resolve("https://catalog.example.com/search?q=go", "/learn/go"))
	assert.Equal(t, "https://other.example.com/x", Resolve("https://catalog.example.com/", "https://other.example.com/x"))
	assert.Equal(t, "", Resolve("https://catalog.example.com/", ""))
}
