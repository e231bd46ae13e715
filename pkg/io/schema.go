package io

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/matzehuels/banktags/pkg/errors"
)

// Schema is the JSON schema a collection document must satisfy. Its row
// bounds follow grid.MaxHeight.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "item": {
      "type": "object",
      "required": ["x", "y", "id"],
      "properties": {
        "x": {"type": "integer", "minimum": 0, "maximum": 7},
        "y": {"type": "integer", "minimum": 0, "maximum": 255},
        "id": {"type": "integer"},
        "quantity": {"type": "integer", "minimum": 0}
      }
    },
    "layout": {
      "type": "object",
      "required": ["id", "title"],
      "properties": {
        "id": {"type": "integer"},
        "title": {"type": "string"},
        "author": {"type": "string"},
        "tags": {"type": "array", "items": {"type": "string"}},
        "width": {"type": "integer"},
        "height": {"type": "integer", "minimum": 0, "maximum": 256},
        "items": {"type": "array", "items": {"$ref": "#/definitions/item"}},
        "thumbnailId": {"type": ["integer", "null"]},
        "thumbnail": {"type": "string"}
      }
    },
    "layouts": {"type": "array", "items": {"$ref": "#/definitions/layout"}}
  },
  "oneOf": [
    {"$ref": "#/definitions/layouts"},
    {
      "type": "object",
      "required": ["layouts"],
      "properties": {"layouts": {"$ref": "#/definitions/layouts"}}
    }
  ]
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// Validate checks a JSON document against [Schema].
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse collection")
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid collection: %s", strings.Join(msgs, "; "))
}
