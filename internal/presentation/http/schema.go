package httppresentation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const registerOrderSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["order_no", "currency_code", "amount"],
  "additionalProperties": false,
  "properties": {
    "order_no":      {"type": "string", "minLength": 1, "maxLength": 64},
    "currency_code": {"type": "string", "pattern": "^[A-Za-z]{3}$"},
    "amount": {
      "oneOf": [
        {"type": "number"},
        {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]+)?$"}
      ]
    }
  }
}`

const submitPaymentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["order_no", "instrument_id"],
  "additionalProperties": false,
  "properties": {
    "order_no":      {"type": "string", "minLength": 1, "maxLength": 64},
    "instrument_id": {"type": "string", "minLength": 1}
  }
}`

// contract validates request bodies against a compiled JSON schema.
type contract struct {
	schema *gojsonschema.Schema
}

func mustContract(name, schema string) *contract {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return &contract{schema: s}
}

// Validate returns the violations found in body. A body that is not JSON
// yields an error.
func (c *contract) Validate(body []byte) ([]string, error) {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("validate request body: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return violations, nil
}
