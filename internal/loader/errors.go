package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/plugmgr/plugmgr/internal/resolver"
)

// Kind classifies a load failure.
type Kind string

const (
	KindPolicy              Kind = "policy"
	KindAcquisition         Kind = "acquisition"
	KindDescribe            Kind = "describe"
	KindMissingDependencies Kind = "missing-dependencies"
	KindCycle               Kind = "cycle"
	KindInstall             Kind = "install"
)

var (
	// ErrURLSourcesDisabled is the policy error for a URL source when
	// load-allow-url is off.
	ErrURLSourcesDisabled = errors.New("loading from URLs is disabled")
	// ErrLocalSourcesDisabled is the policy error for a file source when
	// load-allow-local is off.
	ErrLocalSourcesDisabled = errors.New("loading from local files is disabled")
	// ErrNotRegularFile is returned for a local source that is a directory
	// or device.
	ErrNotRegularFile = errors.New("not a regular file")
)

// Error is returned by Pipeline.Load.
type Error struct {
	Kind   Kind
	Source string
	// Missing lists unsatisfied hard dependencies for KindMissingDependencies.
	Missing []string
	// Cycles lists the dependency edges that closed a cycle for KindCycle.
	Cycles []resolver.Edge
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingDependencies:
		return fmt.Sprintf("%s has missing dependencies: %s", e.Source, strings.Join(e.Missing, ", "))
	case KindCycle:
		parts := make([]string, len(e.Cycles))
		for i, c := range e.Cycles {
			parts[i] = c.String()
		}
		return fmt.Sprintf("%s has cyclic dependencies: %s", e.Source, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Source, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Source)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of a load error, or "" when err is not one.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
