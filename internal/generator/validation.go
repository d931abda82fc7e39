package generator

import (
	"bytes"
	"errors"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/planner-go/internal/prompts"
	"github.com/nibzard/planner-go/internal/utils"
)

const taskSchemaURL = "tasks.schema.json"

// TaskValidationError reports a structured reply that does not match the
// subtask schema.
type TaskValidationError struct {
	Path    string
	Message string
}

func (e *TaskValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("task reply validation failed at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("task reply validation failed: %s", e.Message)
}

func compileTaskSchema(schema []byte) (*jsonschema.Schema, error) {
	if len(schema) == 0 {
		schema = prompts.BundledTaskSchema()
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(taskSchemaURL, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("load task schema: %w", err)
	}
	compiled, err := compiler.Compile(taskSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile task schema: %w", err)
	}
	return compiled, nil
}

// validateTaskReply checks a decoded JSON value against the subtask schema.
func validateTaskReply(v any, schema []byte) error {
	compiled, err := compileTaskSchema(schema)
	if err != nil {
		return err
	}
	if err := compiled.Validate(v); err != nil {
		return mapSchemaError(err)
	}
	return nil
}

func mapSchemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &TaskValidationError{Message: err.Error()}
	}
	leaf := firstLeaf(ve)
	return &TaskValidationError{
		Path:    utils.JSONPointerToPath(leaf.InstanceLocation),
		Message: leaf.Message,
	}
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
