// Package types provides request and workflow types shared by the HTTP layer and storage.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// JobPostingRequest creates or replaces a job posting. When Skills is nil the
// skills are extracted from Description.
type JobPostingRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Company     string   `json:"company" validate:"required,max=200"`
	Location    string   `json:"location,omitempty" validate:"max=200"`
	Description string   `json:"description" validate:"required,max=20000"`
	Skills      []string `json:"skills,omitempty" validate:"omitempty,max=100,dive,max=100"`
}

// Validate validates the JobPostingRequest using the validator.
func (r *JobPostingRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
