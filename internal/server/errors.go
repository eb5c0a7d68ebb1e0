// Package server provides the HTTP REST API for skill analysis, job matching,
// job postings and applications.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-portal/internal/analysis"
	"github.com/jonathan/job-portal/internal/db"
	"github.com/jonathan/job-portal/internal/ingestion"
	"github.com/jonathan/job-portal/internal/schemas"
	"github.com/jonathan/job-portal/internal/types"
)

// Error codes returned in the "error" field of failure responses.
const (
	CodeValidation   = "validation_error"
	CodeParse        = "parse_error"
	CodeNoSkills     = "no_skills_found"
	CodeNotFound     = "not_found"
	CodeConflict     = "invalid_transition"
	CodeRateLimited  = "rate_limit_exceeded"
	CodeInternal     = "internal_error"
	genericMessage   = "An unexpected error occurred. Please try again later."
	reexportMessage  = "The resume could not be read. Re-export it as a text-based PDF (not a scanned image) and upload it again."
	notFoundMessage  = "The requested resource was not found."
	validationPrefix = "Invalid request: "
)

// ErrorResponse is the body of every failure response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch errorCode(err) {
	case CodeValidation, CodeParse, CodeNoSkills:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	var (
		validation *analysis.ValidationError
		schemaErr  *schemas.ValidationError
		fieldErrs  validator.ValidationErrors
		parseErr   *ingestion.ParseError
		noSkills   *analysis.NoSkillsFoundError
		transition *types.InvalidTransitionError
	)
	switch {
	case err == nil:
		return CodeInternal
	case errors.As(err, &validation), errors.As(err, &schemaErr), errors.As(err, &fieldErrs):
		return CodeValidation
	case errors.As(err, &parseErr):
		return CodeParse
	case errors.As(err, &noSkills):
		return CodeNoSkills
	case errors.Is(err, db.ErrNotFound):
		return CodeNotFound
	case errors.As(err, &transition):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// NewErrorResponse builds the failure body for err. Internal errors carry a
// generic message; their text is only exposed in Details when debug is set.
func NewErrorResponse(err error, debug bool) ErrorResponse {
	resp := ErrorResponse{Error: errorCode(err)}

	var (
		validation *analysis.ValidationError
		schemaErr  *schemas.ValidationError
		fieldErrs  validator.ValidationErrors
		noSkills   *analysis.NoSkillsFoundError
		transition *types.InvalidTransitionError
	)
	switch resp.Error {
	case CodeValidation:
		switch {
		case errors.As(err, &validation):
			resp.Message = validation.Message
			if validation.Field != "" {
				resp.Message = fmt.Sprintf("%s: %s", validation.Field, validation.Message)
			}
		case errors.As(err, &schemaErr):
			resp.Message = validationPrefix + schemaErr.Summary()
		case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
			fe := fieldErrs[0]
			resp.Message = fmt.Sprintf("%s%s failed the %q rule", validationPrefix, fe.Field(), fe.Tag())
		default:
			resp.Message = validationPrefix + err.Error()
		}
	case CodeParse:
		resp.Message = reexportMessage
		if debug {
			resp.Details = err.Error()
		}
	case CodeNoSkills:
		errors.As(err, &noSkills)
		resp.Message = noSkills.Guidance()
	case CodeNotFound:
		resp.Message = notFoundMessage
	case CodeConflict:
		errors.As(err, &transition)
		resp.Message = fmt.Sprintf("An application cannot move from %s to %s.", transition.From, transition.To)
	default:
		resp.Message = genericMessage
		if debug && err != nil {
			resp.Details = err.Error()
		}
	}
	return resp
}

// writeError logs err and writes its failure response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	logger := s.requestLogger(r)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.Info("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	s.jsonResponse(w, status, NewErrorResponse(err, s.cfg.Debug))
}

// errorResponse writes a failure response with an explicit code and message.
func (s *Server) errorResponse(w http.ResponseWriter, status int, code, message string) {
	s.jsonResponse(w, status, ErrorResponse{Error: code, Message: message})
}
