package api

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://tasklist.local/schema.json"

//go:embed schema.json
var schemaJSON string

type schemaSet struct {
	task  *jsonschema.Schema
	tasks *jsonschema.Schema
}

var schemas = mustCompileSchemas()

func mustCompileSchemas() schemaSet {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("api: load schema: %v", err))
	}
	return schemaSet{
		task:  c.MustCompile(schemaURL + "#/$defs/task"),
		tasks: c.MustCompile(schemaURL + "#/$defs/tasks"),
	}
}

// validate checks a response body against s before it is decoded.
func validate(s *jsonschema.Schema, body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
