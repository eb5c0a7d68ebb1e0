package analysis

import "fmt"

// ValidationError represents a missing or malformed request input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NoSkillsFoundError is returned when a non-empty document mentions no known skill
type NoSkillsFoundError struct {
	Document string
}

func (e *NoSkillsFoundError) Error() string {
	return fmt.Sprintf("no recognizable skills found in %s", e.Document)
}

// Guidance returns a user-facing hint for fixing the document.
func (e *NoSkillsFoundError) Guidance() string {
	return fmt.Sprintf("No recognizable skills were found in the %s. List technologies and tools explicitly (for example \"Python, PostgreSQL, Docker\") and try again.", e.Document)
}
