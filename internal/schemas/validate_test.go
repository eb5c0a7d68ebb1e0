package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer"}
  }
}`

func TestSchema_Validate(t *testing.T) {
	schema, err := Compile("person", personSchema)
	require.NoError(t, err)
	assert.Equal(t, "person", schema.Name())

	tests := []struct {
		name      string
		doc       string
		wantField string
		wantMsg   string
	}{
		{name: "valid", doc: `{"name": "Ada", "age": 36}`},
		{name: "missing field", doc: `{"age": 36}`, wantField: "(root)", wantMsg: "name is required"},
		{name: "wrong type", doc: `{"name": "Ada", "age": "old"}`, wantField: "age"},
		{name: "malformed", doc: `{ invalid json }`, wantField: "(root)", wantMsg: "not valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate([]byte(tt.doc))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "person", verr.Schema)
			assert.Equal(t, tt.wantField, verr.Errors[0].Field)
			if tt.wantMsg != "" {
				assert.Contains(t, verr.Summary(), tt.wantMsg)
			}
		})
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "broken", compileErr.Schema)
	assert.Panics(t, func() { MustCompile("broken", `{"type": 12}`) })
}

func TestJobList(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"single job", `[{"title": "Backend", "skills": ["golang", "sql"]}]`, false},
		{"empty skills allowed", `[{"skills": []}]`, false},
		{"extra fields kept", `[{"_id": 7, "company": "Acme", "skills": ["python"]}]`, false},
		{"empty array", `[]`, true},
		{"not an array", `{"skills": ["golang"]}`, true},
		{"missing skills", `[{"title": "Backend"}]`, true},
		{"skills not strings", `[{"skills": [1, 2]}]`, true},
		{"skills not array", `[{"skills": "golang, sql"}]`, true},
		{"garbage", `jobs`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := JobList.Validate([]byte(tt.payload))
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationError_Messages(t *testing.T) {
	single := &ValidationError{Schema: "job_list", Errors: []FieldError{{Field: "0", Message: "skills is required"}}}
	assert.Equal(t, "0: skills is required", single.Summary())
	assert.Equal(t, "job_list failed validation: 0: skills is required", single.Error())

	multi := &ValidationError{Errors: []FieldError{
		{Field: "0", Message: "skills is required"},
		{Field: "1", Message: "skills is required"},
	}}
	assert.Equal(t, "0: skills is required (and 1 more)", multi.Summary())

	assert.Equal(t, "validation failed", (&ValidationError{}).Summary())
}
