package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaID = "component.schema.json"

//go:embed schema/component.schema.json
var schemaJSON []byte

var printer = message.NewPrinter(language.English)

// componentSchema compiles the embedded schema on first use.
var componentSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("decoding embedded schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaID, doc); err != nil {
		return nil, fmt.Errorf("registering schema: %w", err)
	}
	s, err := c.Compile(schemaID)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return s, nil
})

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation.
type ValidationIssue struct {
	Path    string // JSON pointer into the manifest, "" for the document root
	Message string
	Keyword string // failing schema keyword, e.g. "required"
}

func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Validate checks raw manifest YAML against the component schema. The error
// return is reserved for undecodable input; schema violations are reported
// in the result.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := componentSchema()
	if err != nil {
		return nil, err
	}
	inst, err := toInstance(data)
	if err != nil {
		return nil, err
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}
	return &ValidationResult{Issues: leafIssues(ve)}, nil
}

// toInstance decodes YAML and round-trips it through JSON so the validator
// only sees json.Number values and string-keyed objects.
func toInstance(data []byte) (interface{}, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	js, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}
	return inst, nil
}

// leafIssues flattens the error tree to its leaves, dropping combinator
// nodes and leaves reported twice through a shared $ref.
func leafIssues(root *jsonschema.ValidationError) []ValidationIssue {
	var out []ValidationIssue
	seen := make(map[ValidationIssue]bool)

	var walk func(ve *jsonschema.ValidationError)
	walk = func(ve *jsonschema.ValidationError) {
		if len(ve.Causes) > 0 {
			for _, c := range ve.Causes {
				walk(c)
			}
			return
		}
		issue, ok := toIssue(ve)
		if !ok || seen[issue] {
			return
		}
		seen[issue] = true
		out = append(out, issue)
	}
	walk(root)

	if len(out) == 0 {
		return []ValidationIssue{{Message: root.Error()}}
	}
	return out
}

func toIssue(ve *jsonschema.ValidationError) (ValidationIssue, bool) {
	if ve.ErrorKind == nil {
		return ValidationIssue{}, false
	}
	kw := ve.ErrorKind.KeywordPath()
	if len(kw) == 0 {
		return ValidationIssue{}, false
	}
	keyword := kw[len(kw)-1]
	switch keyword {
	case "$ref", "allOf", "anyOf", "oneOf":
		return ValidationIssue{}, false
	}

	var path string
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	return ValidationIssue{
		Path:    path,
		Message: ve.ErrorKind.LocalizedString(printer),
		Keyword: keyword,
	}, true
}

// normalizeYAML converts YAML-decoded values to JSON-compatible types.
// Mappings with non-string keys (commands: {1: ...}) decode as
// map[interface{}]interface{}, which encoding/json refuses.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, e := range val {
			m[k] = normalizeYAML(e)
		}
		return m
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, e := range val {
			m[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return m
	case []interface{}:
		a := make([]interface{}, len(val))
		for i, e := range val {
			a[i] = normalizeYAML(e)
		}
		return a
	default:
		return val
	}
}
