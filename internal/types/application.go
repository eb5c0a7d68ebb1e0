package types

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// ApplicationStatus is a step in the hiring workflow
type ApplicationStatus string

// Application statuses in workflow order
const (
	StatusApplied      ApplicationStatus = "applied"
	StatusReviewing    ApplicationStatus = "reviewing"
	StatusShortlisted  ApplicationStatus = "shortlisted"
	StatusInterviewing ApplicationStatus = "interviewing"
	StatusOffered      ApplicationStatus = "offered"
	StatusHired        ApplicationStatus = "hired"
	StatusRejected     ApplicationStatus = "rejected"
)

var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:      {StatusReviewing, StatusRejected},
	StatusReviewing:    {StatusShortlisted, StatusRejected},
	StatusShortlisted:  {StatusInterviewing, StatusRejected},
	StatusInterviewing: {StatusOffered, StatusRejected},
	StatusOffered:      {StatusHired, StatusRejected},
	StatusHired:        nil,
	StatusRejected:     nil,
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s ApplicationStatus) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Next returns the statuses reachable from s in one step.
func (s ApplicationStatus) Next() []ApplicationStatus {
	return slices.Clone(transitions[s])
}

// CanTransition reports whether an application may move from one status to another.
func CanTransition(from, to ApplicationStatus) bool {
	return slices.Contains(transitions[from], to)
}

// InvalidTransitionError is returned when a status change breaks the workflow.
type InvalidTransitionError struct {
	From ApplicationStatus
	To   ApplicationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move application from %s to %s", e.From, e.To)
}

// CreateApplicationRequest holds the form fields of a job application.
// The resume arrives as a separate multipart file.
type CreateApplicationRequest struct {
	ApplicantName  string `json:"applicantName" validate:"required,max=200"`
	ApplicantEmail string `json:"applicantEmail" validate:"required,email,max=320"`
}

// UpdateStatusRequest changes an application's workflow status.
type UpdateStatusRequest struct {
	Status ApplicationStatus `json:"status" validate:"required,oneof=applied reviewing shortlisted interviewing offered hired rejected"`
}

// Validate validates the CreateApplicationRequest using the validator.
func (r *CreateApplicationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateStatusRequest using the validator.
func (r *UpdateStatusRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
