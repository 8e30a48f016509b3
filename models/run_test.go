// ABOUTME: Tests for transfer run models
// ABOUTME: Validates the run state machine transitions
package models

import "testing"

func TestRunStateTransitions(t *testing.T) {
	allowed := []struct{ from, to RunState }{
		{RunStateInit, RunStateLoadingGroups},
		{RunStateInit, RunStateRunning},
		{RunStateLoadingGroups, RunStateRunning},
		{RunStateRunning, RunStateDone},
		{RunStateInit, RunStateFailed},
		{RunStateRunning, RunStateFailed},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to RunState }{
		{RunStateDone, RunStateFailed},
		{RunStateFailed, RunStateRunning},
		{RunStateRunning, RunStateLoadingGroups},
		{RunStateInit, RunStateDone},
	}
	for _, tc := range denied {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestRunStateTerminal(t *testing.T) {
	if !RunStateDone.Terminal() || !RunStateFailed.Terminal() {
		t.Error("done and failed should be terminal")
	}
	if RunStateRunning.Terminal() {
		t.Error("running should not be terminal")
	}
}
