package lifecycle

import (
	"fmt"
	"strings"
)

// Op is the requested transition.
type Op string

const (
	OpEnable  Op = "enable"
	OpDisable Op = "disable"
	OpReload  Op = "reload"
)

// Outcome classifies a Result.
type Outcome string

const (
	OK       Outcome = "ok"
	NoOp     Outcome = "noop"
	Rejected Outcome = "rejected"
	Failed   Outcome = "failed"
)

// Reason is a stable code explaining a NoOp, Rejected or Failed outcome.
type Reason string

const (
	ReasonNone                     Reason = ""
	ReasonNotFound                 Reason = "not-found"
	ReasonAlreadyEnabled           Reason = "already-enabled"
	ReasonAlreadyDisabled          Reason = "already-disabled"
	ReasonNotEnabled               Reason = "not-enabled"
	ReasonCannotDisableSelf        Reason = "cannot-disable-self"
	ReasonCannotReloadSelf         Reason = "cannot-reload-self"
	ReasonSystemComponentProtected Reason = "system-component-protected"
	ReasonHasActiveDependents      Reason = "has-active-dependents"
	ReasonHostFailure              Reason = "host-failure"
)

// Action is a single call issued to the host registry.
type Action string

const (
	ActionEnable  Action = "enable"
	ActionDisable Action = "disable"
)

// Step records one registry call made while serving a request.
type Step struct {
	Action    Action
	Component string
	Err       error
}

func (s Step) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s %s: %v", s.Action, s.Component, s.Err)
	}
	return string(s.Action) + " " + s.Component
}

// Result is the outcome of an Enable, Disable or Reload request.
type Result struct {
	Op      Op
	Target  string
	Outcome Outcome
	Reason  Reason
	// Dependents holds the blocking dependents for has-active-dependents,
	// and the dependents cascaded over by a smart reload.
	Dependents []string
	Steps      []Step
	Err        error
}

// Changed reports whether the request succeeded and altered host state.
func (r Result) Changed() bool {
	return r.Outcome == OK
}

// FailedSteps returns the steps whose registry call failed.
func (r Result) FailedSteps() []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Message renders the result as a single line.
func (r Result) Message() string {
	switch r.Outcome {
	case OK:
		switch r.Op {
		case OpEnable:
			return fmt.Sprintf("Enabled %s.", r.Target)
		case OpDisable:
			return fmt.Sprintf("Disabled %s.", r.Target)
		default:
			if len(r.Dependents) > 0 {
				return fmt.Sprintf("Reloaded %s and its dependents (%s).", r.Target, strings.Join(r.Dependents, ", "))
			}
			return fmt.Sprintf("Reloaded %s.", r.Target)
		}
	case NoOp:
		switch r.Reason {
		case ReasonNotFound:
			return fmt.Sprintf("Component %s not found.", r.Target)
		case ReasonAlreadyEnabled:
			return fmt.Sprintf("%s is already enabled.", r.Target)
		case ReasonAlreadyDisabled:
			return fmt.Sprintf("%s is already disabled.", r.Target)
		case ReasonNotEnabled:
			return fmt.Sprintf("%s is not enabled.", r.Target)
		}
	case Rejected:
		switch r.Reason {
		case ReasonCannotDisableSelf:
			return fmt.Sprintf("%s cannot disable itself.", r.Target)
		case ReasonCannotReloadSelf:
			return fmt.Sprintf("%s cannot reload itself.", r.Target)
		case ReasonSystemComponentProtected:
			return fmt.Sprintf("%s is a protected system component.", r.Target)
		case ReasonHasActiveDependents:
			return fmt.Sprintf("Cannot disable %s: required by %s.", r.Target, strings.Join(r.Dependents, ", "))
		}
	case Failed:
		failed := r.FailedSteps()
		if len(failed) == 0 {
			return fmt.Sprintf("Failed to %s %s: %v", r.Op, r.Target, r.Err)
		}
		parts := make([]string, len(failed))
		for i, s := range failed {
			parts[i] = s.String()
		}
		return fmt.Sprintf("Failed to %s %s: %s", r.Op, r.Target, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s %s: %s %s", r.Op, r.Target, r.Outcome, r.Reason)
}
