package server

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const convertRequestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "image_base64": {"type": "string", "minLength": 1},
    "content_type": {"enum": ["auto", "equation", "table", "diagram", "document"]},
    "inline": {"type": "boolean"},
    "caption": {"type": "string"},
    "title": {"type": "string"},
    "author": {"type": "string"}
  },
  "required": ["image_base64"],
  "additionalProperties": false
}`

var convertSchema = jsonschema.MustCompileString("convert_request.json", convertRequestSchema)

// validateConvertRequest rejects malformed JSON bodies before any base64
// decoding or temp-file work happens.
func validateConvertRequest(body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	if err := convertSchema.Validate(v); err != nil {
		return fmt.Errorf("request does not match schema: %v", err)
	}
	return nil
}
