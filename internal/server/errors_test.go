package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-portal/internal/analysis"
	"github.com/jonathan/job-portal/internal/db"
	"github.com/jonathan/job-portal/internal/ingestion"
	"github.com/jonathan/job-portal/internal/schemas"
	"github.com/jonathan/job-portal/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	fieldErr := (&types.CreateApplicationRequest{ApplicantName: "Sam"}).Validate()
	require.Error(t, fieldErr)

	tests := []struct {
		name     string
		err      error
		expected int
		code     string
	}{
		{"validation", &analysis.ValidationError{Field: "jobs", Message: "jobs are required"}, http.StatusBadRequest, CodeValidation},
		{"wrapped validation", fmt.Errorf("request: %w", &analysis.ValidationError{Message: "bad"}), http.StatusBadRequest, CodeValidation},
		{"schema", &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "0", Message: "skills is required"}}}, http.StatusBadRequest, CodeValidation},
		{"validator", fieldErr, http.StatusBadRequest, CodeValidation},
		{"parse", &ingestion.ParseError{Message: "PDF file is empty"}, http.StatusBadRequest, CodeParse},
		{"no skills", &analysis.NoSkillsFoundError{Document: analysis.DocumentResume}, http.StatusBadRequest, CodeNoSkills},
		{"not found", db.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"wrapped not found", fmt.Errorf("delete: %w", db.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"transition", &types.InvalidTransitionError{From: types.StatusHired, To: types.StatusApplied}, http.StatusConflict, CodeConflict},
		{"unknown", assert.AnError, http.StatusInternalServerError, CodeInternal},
		{"nil", nil, http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, NewErrorResponse(tt.err, false).Error)
		})
	}
}

func TestNewErrorResponse_Messages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"field validation", &analysis.ValidationError{Field: "resume", Message: "a resume file is required"}, "resume: a resume file is required"},
		{"bare validation", &analysis.ValidationError{Message: "invalid JSON body"}, "invalid JSON body"},
		{"schema", &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "0", Message: "skills is required"}}}, "Invalid request: 0: skills is required"},
		{"parse", &ingestion.ParseError{Message: "PDF file is empty"}, reexportMessage},
		{"no skills", &analysis.NoSkillsFoundError{Document: analysis.DocumentResume}, "No recognizable skills were found in the resume."},
		{"not found", db.ErrNotFound, notFoundMessage},
		{"transition", &types.InvalidTransitionError{From: types.StatusHired, To: types.StatusApplied}, "An application cannot move from hired to applied."},
		{"internal", assert.AnError, genericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewErrorResponse(tt.err, false)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Message, tt.message)
			assert.Empty(t, resp.Details)
		})
	}
}

func TestNewErrorResponse_Debug(t *testing.T) {
	resp := NewErrorResponse(fmt.Errorf("pool exhausted"), true)
	assert.Equal(t, "pool exhausted", resp.Details)
	assert.Equal(t, genericMessage, resp.Message)

	resp = NewErrorResponse(&ingestion.ParseError{Message: "PDF file is empty"}, true)
	assert.Contains(t, resp.Details, "PDF file is empty")

	resp = NewErrorResponse(&analysis.ValidationError{Message: "x"}, true)
	assert.Empty(t, resp.Details)
}

func TestValidatorMessage(t *testing.T) {
	err := (&types.UpdateStatusRequest{Status: "archived"}).Validate()

	resp := NewErrorResponse(err, false)
	assert.Equal(t, CodeValidation, resp.Error)
	assert.Equal(t, `Invalid request: Status failed the "oneof" rule`, resp.Message)
}
