package ingestion

import (
	"regexp"
	"strings"
)

var (
	spaceRun      = regexp.MustCompile(`[ \t]+`)
	blankLineRuns = regexp.MustCompile(`\n{3,}`)
)

// pdfArtifacts maps characters that PDF text layers emit in place of plain
// text. Ligatures would otherwise split skill names such as "workflow".
var pdfArtifacts = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ", // no-break space
	"\u2007", " ",
	"\u202f", " ",
	"\u200b", "", // zero width space
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
	"\u00ad", "", // soft hyphen
	"\ufb00", "ff",
	"\ufb01", "fi",
	"\ufb02", "fl",
	"\ufb03", "ffi",
	"\ufb04", "ffl",
)

// bulletMarkers are the list markers seen in exported resumes.
var bulletMarkers = []string{"- ", "* ", "\u2022 ", "\u00b7 ", "\u25aa ", "\u25e6 ", "\u2023 "}

// CleanText normalizes extracted resume text: line endings become LF, PDF
// artifacts are replaced, runs of spaces inside a line collapse to one and at
// most one blank line separates paragraphs. Leading indentation and bullet
// markers survive so the text stays readable in logs and CLI output.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	lines := strings.Split(pdfArtifacts.Replace(content), "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	joined := blankLineRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(joined)
}

func cleanLine(line string) string {
	body := strings.TrimLeft(line, " \t")
	if strings.TrimSpace(body) == "" {
		return ""
	}
	indent := strings.Repeat(" ", len(line)-len(body))

	marker := bulletMarker(body)
	body = spaceRun.ReplaceAllString(strings.TrimSpace(body[len(marker):]), " ")
	return indent + marker + body
}

func bulletMarker(line string) string {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return m
		}
	}
	return ""
}
