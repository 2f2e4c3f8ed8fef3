package registry

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const indexSchema = `{
  "type": "object",
  "required": ["metadata", "items"],
  "properties": {
    "metadata": {
      "type": "object",
      "required": ["collection", "total_items"],
      "properties": {
        "collection": {"type": "string"},
        "total_items": {"type": "integer", "minimum": 0},
        "created_at": {"type": "string"},
        "last_updated": {"type": "string"}
      }
    },
    "items": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["uuid", "title", "type", "file", "generated_at"],
        "properties": {
          "uuid": {"type": "string"},
          "title": {"type": "string"},
          "type": {"type": "string", "minLength": 1},
          "file": {"type": "string", "minLength": 1},
          "generated_at": {"type": "string"},
          "sequence": {"type": "integer"},
          "source_contents": {"type": "array", "items": {"type": "string"}},
          "difficulty": {"type": "string"},
          "interdisciplinary": {"type": "boolean"}
        }
      }
    }
  }
}`

var indexSchemaLoader = gojsonschema.NewStringLoader(indexSchema)

// checkIndex validates raw index bytes against the index schema.
func checkIndex(data []byte) error {
	result, err := gojsonschema.Validate(indexSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if result.Valid() {
		return nil
	}

	reasons := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		reasons = append(reasons, e.String())
	}
	return fmt.Errorf("%w: %s", ErrCorruptIndex, strings.Join(reasons, "; "))
}
