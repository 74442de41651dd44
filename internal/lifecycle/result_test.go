package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultMessage(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{"enabled", Result{Op: OpEnable, Target: "X", Outcome: OK}, "Enabled X."},
		{"disabled", Result{Op: OpDisable, Target: "X", Outcome: OK}, "Disabled X."},
		{"reloaded", Result{Op: OpReload, Target: "X", Outcome: OK}, "Reloaded X."},
		{"reloaded cascade", Result{Op: OpReload, Target: "X", Outcome: OK, Dependents: []string{"A", "B"}}, "Reloaded X and its dependents (A, B)."},
		{"already enabled", Result{Op: OpEnable, Target: "X", Outcome: NoOp, Reason: ReasonAlreadyEnabled}, "X is already enabled."},
		{"already disabled", Result{Op: OpDisable, Target: "X", Outcome: NoOp, Reason: ReasonAlreadyDisabled}, "X is already disabled."},
		{"not enabled", Result{Op: OpReload, Target: "X", Outcome: NoOp, Reason: ReasonNotEnabled}, "X is not enabled."},
		{"self", Result{Op: OpDisable, Target: "plugmgr", Outcome: Rejected, Reason: ReasonCannotDisableSelf}, "plugmgr cannot disable itself."},
		{"reload self", Result{Op: OpReload, Target: "plugmgr", Outcome: Rejected, Reason: ReasonCannotReloadSelf}, "plugmgr cannot reload itself."},
		{"protected", Result{Op: OpDisable, Target: "core", Outcome: Rejected, Reason: ReasonSystemComponentProtected}, "core is a protected system component."},
		{
			"failed step",
			Result{Op: OpEnable, Target: "X", Outcome: Failed, Reason: ReasonHostFailure, Steps: []Step{{Action: ActionEnable, Component: "X", Err: errors.New("boom")}}},
			"Failed to enable X: enable X: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Message())
		})
	}
}

func TestResultChanged(t *testing.T) {
	assert.True(t, Result{Outcome: OK}.Changed())
	assert.False(t, Result{Outcome: NoOp}.Changed())
	assert.False(t, Result{Outcome: Rejected}.Changed())
}
