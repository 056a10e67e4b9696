package progress

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema accepts the current document shape and the legacy one
// ("unlocked", entries without "completed").
const documentSchema = `{
  "type": "object",
  "properties": {
    "unlocked_topic": {"type": "integer", "minimum": 0},
    "unlocked": {"type": "integer", "minimum": 0},
    "topic_progress": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "completed": {"type": "integer", "minimum": 0},
          "finished": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var schema = gojsonschema.NewStringLoader(documentSchema)

func validate(data []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrCorrupt, strings.Join(msgs, "; "))
	}
	return nil
}
