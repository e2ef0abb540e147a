package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaErrors lists every violation found while validating a body.
type SchemaErrors []error

// Error joins the violations with "; ".
func (se SchemaErrors) Error() string {
	var sb strings.Builder
	for i, err := range se {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// ValidateSchema checks the JSON body against a JSON Schema document. It
// returns SchemaErrors when the body violates the schema, a
// *JSONDecodeError when the body is not JSON, and a plain error for an
// invalid schema.
func (r *Response) ValidateSchema(schema string) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schema)); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	// jsonschema expects json.Number for numeric instances
	dec := json.NewDecoder(bytes.NewReader(r.result.Body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return newJSONDecodeError(err, r.result.Status, r.result.Body)
	}

	if err := compiled.Validate(doc); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return collectSchemaErrors(verr)
		}
		return SchemaErrors{err}
	}
	return nil
}

func collectSchemaErrors(err *jsonschema.ValidationError) SchemaErrors {
	var errs SchemaErrors
	if len(err.Causes) == 0 {
		errs = append(errs, fmt.Errorf("validation error at %q: %s", err.InstanceLocation, err.Message))
	}
	for _, cause := range err.Causes {
		errs = append(errs, collectSchemaErrors(cause)...)
	}
	return errs
}
