package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const backupSchemaJSON = `{
  "type": "object",
  "required": ["backup_name", "tasks_data", "settings_data"],
  "properties": {
    "id": {"type": "string"},
    "user_id": {"type": "string"},
    "backup_name": {"type": "string", "minLength": 1},
    "tasks_data": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "id": {"type": "string"},
          "user_id": {"type": "string"},
          "title": {"type": "string", "pattern": "\\S"},
          "description": {"type": "string"},
          "is_urgent": {"type": "boolean"},
          "is_completed": {"type": "boolean"},
          "created_at": {"type": "string"},
          "updated_at": {"type": "string"}
        }
      }
    },
    "settings_data": {"type": "object"},
    "created_at": {"type": "string"}
  }
}`

var backupSchema = jsonschema.MustCompileString("backup.schema.json", backupSchemaJSON)

// validateBackupDocument checks an exported backup document. Schema
// violations come back as *ValidationError pointing at the first bad value.
func validateBackupDocument(data []byte) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return &ValidationError{Field: "document", Message: fmt.Sprintf("is not valid JSON: %v", err)}
	}
	if err := backupSchema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return firstSchemaError(ve)
		}
		return &ValidationError{Field: "document", Message: err.Error()}
	}
	return nil
}

func firstSchemaError(ve *jsonschema.ValidationError) *ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := ve.InstanceLocation
	if field == "" {
		field = "document"
	}
	return &ValidationError{Field: field, Message: ve.Message}
}
