package lifecycle

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/plugmgr/plugmgr/internal/host"
	"github.com/plugmgr/plugmgr/internal/manifest"
	"github.com/plugmgr/plugmgr/internal/metrics"
	"github.com/plugmgr/plugmgr/internal/resolver"
)

// ErrNotFound is returned by ListDependents for an unknown component.
var ErrNotFound = errors.New("component not found")

// Policy controls which transitions the coordinator allows.
type Policy struct {
	// Self is the name of the hosting component; it can never be disabled
	// or reloaded.
	Self string
	// ReservedNames are platform components protected from disable unless
	// AllowDisableCore is set.
	ReservedNames              []string
	AllowDisableCore           bool
	BlockDisableWithDependents bool
	SmartReload                bool
	// RestoreSnapshot limits the smart reload restore phase to the
	// dependents the reload itself disabled. When false every dependent
	// that is not enabled afterwards is enabled.
	RestoreSnapshot bool
}

// DefaultPolicy returns the policy used when no configuration overrides it.
func DefaultPolicy(self string) Policy {
	return Policy{
		Self:                       self,
		ReservedNames:              []string{"host", "runtime", "platform", "core"},
		BlockDisableWithDependents: true,
		SmartReload:                true,
	}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger for transition diagnostics.
func WithLogger(l logr.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// Coordinator serves enable, disable and reload requests against a host
// registry. It keeps no state of its own between calls.
type Coordinator struct {
	reg      host.Registry
	policy   Policy
	reserved resolver.NameSet
	log      logr.Logger
}

// New creates a Coordinator over reg.
func New(reg host.Registry, policy Policy, opts ...Option) *Coordinator {
	c := &Coordinator{
		reg:      reg,
		policy:   policy,
		reserved: resolver.NewNameSet(policy.ReservedNames...),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enable enables name.
func (c *Coordinator) Enable(name string) Result {
	res := Result{Op: OpEnable, Target: name}
	comp, ok := c.reg.Lookup(name)
	if !ok {
		return c.finish(noop(res, ReasonNotFound))
	}
	res.Target = comp.Name()
	if c.reg.Enabled(comp) {
		return c.finish(noop(res, ReasonAlreadyEnabled))
	}

	if !c.step(&res, ActionEnable, comp) {
		return c.finish(fail(res))
	}
	res.Outcome = OK
	return c.finish(res)
}

// Disable disables name, subject to the policy.
func (c *Coordinator) Disable(name string) Result {
	res := Result{Op: OpDisable, Target: name}
	// Self is checked before lookup and enabled state so the rejection is
	// unconditional.
	if c.isSelf(name) {
		return c.finish(reject(res, ReasonCannotDisableSelf))
	}
	comp, ok := c.reg.Lookup(name)
	if !ok {
		return c.finish(noop(res, ReasonNotFound))
	}
	res.Target = comp.Name()
	if !c.reg.Enabled(comp) {
		return c.finish(noop(res, ReasonAlreadyDisabled))
	}
	if !c.policy.AllowDisableCore && c.reserved.Has(comp.Name()) {
		return c.finish(reject(res, ReasonSystemComponentProtected))
	}
	if c.policy.BlockDisableWithDependents {
		if active := c.enabledDependents(comp.Name()); len(active) > 0 {
			res.Dependents = active
			return c.finish(reject(res, ReasonHasActiveDependents))
		}
	}

	if !c.step(&res, ActionDisable, comp) {
		return c.finish(fail(res))
	}
	res.Outcome = OK
	return c.finish(res)
}

// Reload disables and re-enables name. With SmartReload its dependents are
// disabled first and restored afterwards.
func (c *Coordinator) Reload(name string) Result {
	res := Result{Op: OpReload, Target: name}
	if c.isSelf(name) {
		return c.finish(reject(res, ReasonCannotReloadSelf))
	}
	comp, ok := c.reg.Lookup(name)
	if !ok {
		return c.finish(noop(res, ReasonNotFound))
	}
	res.Target = comp.Name()
	if !c.reg.Enabled(comp) {
		return c.finish(noop(res, ReasonNotEnabled))
	}

	if !c.policy.SmartReload {
		if c.step(&res, ActionDisable, comp) {
			c.step(&res, ActionEnable, comp)
		}
		if len(res.FailedSteps()) > 0 {
			return c.finish(fail(res))
		}
		res.Outcome = OK
		return c.finish(res)
	}

	return c.finish(c.smartReload(res, comp))
}

func (c *Coordinator) smartReload(res Result, target *host.Component) Result {
	dependents := c.dependentComponents(target.Name())
	for _, d := range dependents {
		res.Dependents = append(res.Dependents, d.Name())
	}

	// Phase 1: take down enabled dependents, then cycle the target. The
	// first failure aborts the rest of this phase.
	disabledByUs := make(map[string]bool, len(dependents))
	aborted := false
	for _, d := range dependents {
		if !c.reg.Enabled(d) {
			continue
		}
		if !c.step(&res, ActionDisable, d) {
			aborted = true
			break
		}
		disabledByUs[d.Key()] = true
	}
	if !aborted && c.step(&res, ActionDisable, target) {
		c.step(&res, ActionEnable, target)
	}

	// Phase 2: restore dependents, best effort.
	for _, d := range dependents {
		if c.reg.Enabled(d) {
			continue
		}
		if c.policy.RestoreSnapshot && !disabledByUs[d.Key()] {
			continue
		}
		c.step(&res, ActionEnable, d)
	}

	if len(res.FailedSteps()) > 0 {
		return fail(res)
	}
	res.Outcome = OK
	return res
}

// ListDependents returns the installed components that declare name as a
// hard or soft dependency, sorted by name.
func (c *Coordinator) ListDependents(name string) ([]string, error) {
	comp, ok := c.reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("listing dependents of %s: %w", name, ErrNotFound)
	}
	return resolver.DependentsOf(comp.Name(), host.Descriptors(c.reg)), nil
}

func (c *Coordinator) isSelf(name string) bool {
	return c.policy.Self != "" && manifest.NameKey(name) == manifest.NameKey(c.policy.Self)
}

func (c *Coordinator) dependentComponents(name string) []*host.Component {
	var out []*host.Component
	for _, dep := range resolver.DependentsOf(name, host.Descriptors(c.reg)) {
		if comp, ok := c.reg.Lookup(dep); ok {
			out = append(out, comp)
		}
	}
	return out
}

func (c *Coordinator) enabledDependents(name string) []string {
	var out []string
	for _, comp := range c.dependentComponents(name) {
		if c.reg.Enabled(comp) {
			out = append(out, comp.Name())
		}
	}
	return out
}

// step issues one registry call and records it. It reports success.
func (c *Coordinator) step(res *Result, action Action, comp *host.Component) bool {
	var err error
	switch action {
	case ActionEnable:
		err = c.reg.Enable(comp)
	case ActionDisable:
		err = c.reg.Disable(comp)
	}
	res.Steps = append(res.Steps, Step{Action: action, Component: comp.Name(), Err: err})
	if err != nil {
		metrics.StepFailuresTotal.WithLabelValues(string(action)).Inc()
		c.log.Error(err, "registry call failed", "action", action, "component", comp.Name(), "op", res.Op, "target", res.Target)
		return false
	}
	c.log.V(1).Info("registry call", "action", action, "component", comp.Name())
	return true
}

func (c *Coordinator) finish(res Result) Result {
	metrics.TransitionsTotal.WithLabelValues(string(res.Op), string(res.Outcome)).Inc()
	c.log.V(1).Info("transition", "op", res.Op, "target", res.Target, "outcome", res.Outcome, "reason", res.Reason, "steps", len(res.Steps))
	return res
}

func noop(res Result, reason Reason) Result {
	res.Outcome = NoOp
	res.Reason = reason
	return res
}

func reject(res Result, reason Reason) Result {
	res.Outcome = Rejected
	res.Reason = reason
	return res
}

func fail(res Result) Result {
	res.Outcome = Failed
	res.Reason = ReasonHostFailure
	var errs []error
	for _, s := range res.FailedSteps() {
		errs = append(errs, fmt.Errorf("%s %s: %w", s.Action, s.Component, s.Err))
	}
	res.Err = errors.Join(errs...)
	return res
}
