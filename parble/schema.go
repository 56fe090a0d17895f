package parble

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// fileSchema describes the File payloads accepted from the API. Only the id is
// required because uploads may answer before processing produced anything else.
// start_page <= end_page is deliberately not checked.
const fileSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "filename": {"type": "string"},
    "automated": {"type": "boolean"},
    "number_of_pages": {"type": "integer", "minimum": 0},
    "timings": {
      "type": "object",
      "required": ["upload"],
      "properties": {
        "upload": {"type": "string"},
        "done": {"type": ["string", "null"]}
      }
    },
    "documents": {
      "type": ["array", "null"],
      "items": {"$ref": "#/$defs/document"}
    }
  },
  "$defs": {
    "document": {
      "type": "object",
      "required": ["automated", "classification"],
      "properties": {
        "automated": {"type": "boolean"},
        "classification": {
          "type": "object",
          "required": ["automated", "document_type", "confidence", "start_page", "end_page"],
          "properties": {
            "automated": {"type": "boolean"},
            "document_type": {"type": "string"},
            "confidence": {"type": "number", "minimum": 0, "maximum": 100},
            "start_page": {"type": "integer"},
            "end_page": {"type": "integer"}
          }
        },
        "header_fields": {
          "type": ["object", "null"],
          "additionalProperties": {"$ref": "#/$defs/field"}
        }
      }
    },
    "field": {
      "type": "object",
      "properties": {
        "page": {"type": "integer"},
        "coordinates": {
          "type": ["array", "null"],
          "items": {"type": "integer"},
          "minItems": 4,
          "maxItems": 4
        },
        "text": {"type": ["string", "null"]},
        "confidence": {"type": "integer"},
        "automated": {"type": "boolean"}
      }
    }
  }
}`

var fileSchemaCompiled = jsonschema.MustCompileString("file.json", fileSchema)

// validateFilePayload checks payload against fileSchema and returns it in
// canonical form. The schema accepts integral numbers such as 2.0 for integer
// attributes; re-encoding writes them as 2 so they decode into int fields.
func validateFilePayload(payload []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, &ValidationError{Err: err}
	}
	if err := fileSchemaCompiled.Validate(v); err != nil {
		return nil, &ValidationError{Err: err}
	}

	canonical, err := json.Marshal(v)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}
	return canonical, nil
}
