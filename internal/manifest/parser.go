package manifest

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Parse validates raw manifest bytes against the component schema and
// decodes them into a Descriptor. Origin names the file or package the bytes
// came from and is carried on any returned *DescriptorError.
func Parse(data []byte, origin string) (*Descriptor, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, &DescriptorError{Origin: origin, Err: err}
	}
	if !result.Valid {
		return nil, &DescriptorError{Origin: origin, Issues: result.Issues}
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, &DescriptorError{Origin: origin, Err: fmt.Errorf("decoding manifest: %w", err)}
	}
	d.Name = strings.TrimSpace(d.Name)
	d.Version = strings.TrimSpace(d.Version)

	if err := Check(&d); err != nil {
		if de, ok := err.(*DescriptorError); ok {
			de.Origin = origin
		}
		return nil, err
	}
	return &d, nil
}

// ParseFile reads a bare manifest file and parses it.
func ParseFile(path string) (*Descriptor, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, &DescriptorError{Origin: path, Err: err}
	}
	return Parse(data, path)
}

// Check applies the structural rules every descriptor must satisfy before
// it can take part in dependency resolution: a non-nil descriptor with a
// name, and no blank dependency entries. Descriptors built in code (tests,
// embedders) skip the schema and rely on this alone.
func Check(d *Descriptor) error {
	if d == nil {
		return &DescriptorError{Err: fmt.Errorf("nil descriptor")}
	}
	var issues []ValidationIssue
	if strings.TrimSpace(d.Name) == "" {
		issues = append(issues, ValidationIssue{Path: "/name", Message: "name must not be empty", Keyword: "required"})
	}
	for i, dep := range d.Depend {
		if strings.TrimSpace(dep) == "" {
			issues = append(issues, ValidationIssue{Path: fmt.Sprintf("/depend/%d", i), Message: "dependency name must not be blank", Keyword: "minLength"})
		}
	}
	for i, dep := range d.SoftDepend {
		if strings.TrimSpace(dep) == "" {
			issues = append(issues, ValidationIssue{Path: fmt.Sprintf("/softdepend/%d", i), Message: "dependency name must not be blank", Keyword: "minLength"})
		}
	}
	if len(issues) > 0 {
		return &DescriptorError{Origin: d.Name, Issues: issues}
	}
	return nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
