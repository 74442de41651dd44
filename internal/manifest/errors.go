package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoManifest is returned when a package has no recognised manifest entry.
var ErrNoManifest = errors.New("no component manifest found")

// DescriptorError reports a manifest that is missing, unreadable, or fails
// validation. Origin is the file or package the manifest came from.
type DescriptorError struct {
	Origin string
	Issues []ValidationIssue
	Err    error
}

func (e *DescriptorError) Error() string {
	var b strings.Builder
	b.WriteString("invalid descriptor")
	if e.Origin != "" {
		fmt.Fprintf(&b, " in %s", e.Origin)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Issues) > 0 {
		parts := make([]string, 0, len(e.Issues))
		for _, issue := range e.Issues {
			parts = append(parts, issue.String())
		}
		fmt.Fprintf(&b, ": %s", strings.Join(parts, "; "))
	}
	return b.String()
}

func (e *DescriptorError) Unwrap() error { return e.Err }
