package lifecycle

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugmgr/plugmgr/internal/host"
	"github.com/plugmgr/plugmgr/internal/manifest"
	"github.com/plugmgr/plugmgr/internal/metrics"
)

const self = "plugmgr"

func newRegistry(t *testing.T) *host.Memory {
	t.Helper()
	reg := host.NewMemory()
	reg.Add(&manifest.Descriptor{Name: self, Version: "dev"}, true)
	return reg
}

func add(reg *host.Memory, name string, enabled bool, depend ...string) {
	reg.Add(&manifest.Descriptor{Name: name, Version: "1.0.0", Depend: depend}, enabled)
}

func isEnabled(t *testing.T, reg *host.Memory, name string) bool {
	t.Helper()
	c, ok := reg.Lookup(name)
	require.True(t, ok, "component %s", name)
	return reg.Enabled(c)
}

func ev(op host.Op, name string) host.Event {
	return host.Event{Op: op, Name: name}
}

func failOn(op host.Op, target string) host.Guard {
	return func(o host.Op, name string) error {
		if o == op && name == target {
			return errors.New("host refused " + string(op) + " " + name)
		}
		return nil
	}
}

func TestEnable(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", false)
	c := New(reg, DefaultPolicy(self))

	first := c.Enable("x")
	assert.Equal(t, OK, first.Outcome)
	assert.Equal(t, "X", first.Target)
	assert.True(t, isEnabled(t, reg, "X"))

	second := c.Enable("X")
	assert.Equal(t, NoOp, second.Outcome)
	assert.Equal(t, ReasonAlreadyEnabled, second.Reason)
	assert.Equal(t, []host.Event{ev(host.OpEnable, "X")}, reg.Journal())
}

func TestEnable_NotFound(t *testing.T) {
	c := New(newRegistry(t), DefaultPolicy(self))
	res := c.Enable("ghost")
	assert.Equal(t, NoOp, res.Outcome)
	assert.Equal(t, ReasonNotFound, res.Reason)
	assert.Equal(t, "Component ghost not found.", res.Message())
}

func TestEnable_HostFailure(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", false)
	reg.SetGuard(failOn(host.OpEnable, "X"))

	res := New(reg, DefaultPolicy(self)).Enable("X")
	assert.Equal(t, Failed, res.Outcome)
	assert.Equal(t, ReasonHostFailure, res.Reason)
	require.Error(t, res.Err)
	assert.False(t, isEnabled(t, reg, "X"))
}

func TestDisable_SelfAlwaysRejected(t *testing.T) {
	reg := newRegistry(t)
	policies := []Policy{
		DefaultPolicy(self),
		{Self: self, AllowDisableCore: true},
	}
	for _, p := range policies {
		res := New(reg, p).Disable("PlugMgr")
		assert.Equal(t, Rejected, res.Outcome)
		assert.Equal(t, ReasonCannotDisableSelf, res.Reason)
	}

	// Even when the hosting component is not registered at all.
	res := New(host.NewMemory(), DefaultPolicy(self)).Disable(self)
	assert.Equal(t, ReasonCannotDisableSelf, res.Reason)

	assert.True(t, isEnabled(t, reg, self))
	assert.Empty(t, reg.Journal())
}

func TestDisable_ActiveDependentBlocks(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", true)
	add(reg, "Y", true, "X")
	add(reg, "Z", false, "X")
	c := New(reg, DefaultPolicy(self))

	res := c.Disable("X")
	assert.Equal(t, Rejected, res.Outcome)
	assert.Equal(t, ReasonHasActiveDependents, res.Reason)
	assert.Equal(t, []string{"Y"}, res.Dependents)
	assert.True(t, isEnabled(t, reg, "X"))
	assert.Equal(t, "Cannot disable X: required by Y.", res.Message())
	assert.Empty(t, reg.Journal())
}

func TestDisable_DependentsAllowedWhenNotBlocking(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", true)
	add(reg, "Y", true, "X")
	p := DefaultPolicy(self)
	p.BlockDisableWithDependents = false

	res := New(reg, p).Disable("X")
	assert.Equal(t, OK, res.Outcome)
	assert.False(t, isEnabled(t, reg, "X"))
	assert.True(t, isEnabled(t, reg, "Y"))
}

func TestDisable_Reserved(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "Core", true)

	res := New(reg, DefaultPolicy(self)).Disable("core")
	assert.Equal(t, Rejected, res.Outcome)
	assert.Equal(t, ReasonSystemComponentProtected, res.Reason)

	p := DefaultPolicy(self)
	p.AllowDisableCore = true
	res = New(reg, p).Disable("core")
	assert.Equal(t, OK, res.Outcome)
}

func TestDisable_AlreadyDisabled(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", false)
	res := New(reg, DefaultPolicy(self)).Disable("X")
	assert.Equal(t, NoOp, res.Outcome)
	assert.Equal(t, ReasonAlreadyDisabled, res.Reason)
}

func TestReload_Self(t *testing.T) {
	res := New(newRegistry(t), DefaultPolicy(self)).Reload(self)
	assert.Equal(t, Rejected, res.Outcome)
	assert.Equal(t, ReasonCannotReloadSelf, res.Reason)
}

func TestReload_NotEnabled(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", false)
	res := New(reg, DefaultPolicy(self)).Reload("X")
	assert.Equal(t, NoOp, res.Outcome)
	assert.Equal(t, ReasonNotEnabled, res.Reason)
	assert.Empty(t, reg.Journal())
}

func TestReload_Simple(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", true)
	add(reg, "A", true, "X")
	p := DefaultPolicy(self)
	p.SmartReload = false

	res := New(reg, p).Reload("X")
	assert.Equal(t, OK, res.Outcome)
	assert.Equal(t, []host.Event{ev(host.OpDisable, "X"), ev(host.OpEnable, "X")}, reg.Journal())
}

func TestReload_SimpleDisableFailure(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", true)
	reg.SetGuard(failOn(host.OpDisable, "X"))
	p := DefaultPolicy(self)
	p.SmartReload = false

	res := New(reg, p).Reload("X")
	assert.Equal(t, Failed, res.Outcome)
	require.Len(t, res.Steps, 1, "enable is not attempted after a failed disable")
}

func TestReload_SmartOrder(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", true)
	add(reg, "B", true, "X")
	add(reg, "A", true, "X")

	res := New(reg, DefaultPolicy(self)).Reload("X")
	require.Equal(t, OK, res.Outcome, res.Message())
	assert.Equal(t, []string{"A", "B"}, res.Dependents)
	assert.Equal(t, []host.Event{
		ev(host.OpDisable, "A"),
		ev(host.OpDisable, "B"),
		ev(host.OpDisable, "X"),
		ev(host.OpEnable, "X"),
		ev(host.OpEnable, "A"),
		ev(host.OpEnable, "B"),
	}, reg.Journal())
	for _, name := range []string{"X", "A", "B"} {
		assert.True(t, isEnabled(t, reg, name), name)
	}
}

func TestReload_SmartLiveStateRestoresPreviouslyDisabled(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", true)
	add(reg, "A", false, "X")

	res := New(reg, DefaultPolicy(self)).Reload("X")
	assert.Equal(t, OK, res.Outcome)
	assert.True(t, isEnabled(t, reg, "A"), "live-state restore enables every dependent")
}

func TestReload_SmartSnapshotKeepsPreviouslyDisabled(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", true)
	add(reg, "A", false, "X")
	add(reg, "B", true, "X")
	p := DefaultPolicy(self)
	p.RestoreSnapshot = true

	res := New(reg, p).Reload("X")
	assert.Equal(t, OK, res.Outcome)
	assert.False(t, isEnabled(t, reg, "A"))
	assert.True(t, isEnabled(t, reg, "B"))
}

func TestReload_SmartRestoresAfterDependentFailure(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", true)
	add(reg, "A", true, "X")
	add(reg, "B", true, "X")
	add(reg, "C", true, "X")
	reg.SetGuard(failOn(host.OpDisable, "B"))

	res := New(reg, DefaultPolicy(self)).Reload("X")
	assert.Equal(t, Failed, res.Outcome)
	assert.Equal(t, ReasonHostFailure, res.Reason)

	// A was disabled, B failed, so C and the target are never touched; the
	// restore phase still brings A back.
	assert.Equal(t, []host.Event{
		ev(host.OpDisable, "A"),
		ev(host.OpEnable, "A"),
	}, reg.Journal())
	for _, name := range []string{"X", "A", "B", "C"} {
		assert.True(t, isEnabled(t, reg, name), name)
	}
	require.Len(t, res.FailedSteps(), 1)
	assert.Equal(t, "B", res.FailedSteps()[0].Component)
}

func TestReload_SmartRestoreIsBestEffort(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", true)
	add(reg, "A", true, "X")
	add(reg, "B", true, "X")
	reg.SetGuard(failOn(host.OpEnable, "A"))

	res := New(reg, DefaultPolicy(self)).Reload("X")
	assert.Equal(t, Failed, res.Outcome)
	assert.False(t, isEnabled(t, reg, "A"))
	assert.True(t, isEnabled(t, reg, "B"), "a failed restore does not stop later restores")
	assert.Contains(t, res.Message(), "enable A")
}

func TestListDependents(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", true)
	add(reg, "b", true, "X")
	reg.Add(&manifest.Descriptor{Name: "A", SoftDepend: []string{"x"}}, false)
	c := New(reg, DefaultPolicy(self))

	deps, err := c.ListDependents("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "b"}, deps)

	_, err = c.ListDependents("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMetricsRecorded(t *testing.T) {
	reg := newRegistry(t)
	add(reg, "X", false)
	before := testutil.ToFloat64(metrics.TransitionsTotal.WithLabelValues("enable", "ok"))

	New(reg, DefaultPolicy(self)).Enable("X")

	after := testutil.ToFloat64(metrics.TransitionsTotal.WithLabelValues("enable", "ok"))
	assert.Equal(t, before+1, after)
}
