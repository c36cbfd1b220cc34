package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedPayload is returned when a payload is not a JSON array of objects.
var ErrMalformedPayload = errors.New("malformed payload")

// payloadSchema only pins the envelope. Field-level rules live in Validate so
// that their order and error kinds stay under our control.
const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {"type": "object"}
}`

var compiledPayloadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(payloadSchema))
})

// DecodePayload decodes a topic payload into validated questions.
// It is all-or-nothing: one invalid record fails the whole payload.
func DecodePayload(data []byte) ([]Question, error) {
	if err := checkEnvelope(data); err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	questions := make([]Question, 0, len(records))
	for i, rec := range records {
		q, err := Validate(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func checkEnvelope(data []byte) error {
	schema, err := compiledPayloadSchema()
	if err != nil {
		return fmt.Errorf("compiling payload schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrMalformedPayload, strings.Join(msgs, "; "))
	}
	return nil
}
