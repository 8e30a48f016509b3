// ABOUTME: Transfer run models for vCard import and export
// ABOUTME: Defines the run state machine plus the per-contact log entries
package models

import (
	"time"

	"github.com/google/uuid"
)

// RunKind tells imports and exports apart.
type RunKind string

const (
	RunImport RunKind = "import"
	RunExport RunKind = "export"
)

// RunState is a step of init -> loading_groups -> running -> done | failed.
type RunState string

const (
	RunStateInit          RunState = "init"
	RunStateLoadingGroups RunState = "loading_groups"
	RunStateRunning       RunState = "running"
	RunStateDone          RunState = "done"
	RunStateFailed        RunState = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s RunState) Terminal() bool {
	return s == RunStateDone || s == RunStateFailed
}

// CanTransition reports whether next may follow s.
func (s RunState) CanTransition(next RunState) bool {
	if next == RunStateFailed {
		return !s.Terminal()
	}
	switch s {
	case RunStateInit:
		return next == RunStateLoadingGroups || next == RunStateRunning
	case RunStateLoadingGroups:
		return next == RunStateRunning
	case RunStateRunning:
		return next == RunStateDone
	}
	return false
}

// TransferRun records one import or export.
type TransferRun struct {
	ID            string     `json:"id"`
	Kind          RunKind    `json:"kind"`
	Scope         string     `json:"scope,omitempty"`
	State         RunState   `json:"state"`
	Count         int        `json:"count"`
	ImportGroup   string     `json:"import_group,omitempty"`
	ImportGroupID string     `json:"import_group_id,omitempty"`
	LastResource  string     `json:"last_resource,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// Item statuses.
const (
	ItemCreated  = "created"
	ItemExported = "exported"
	ItemSkipped  = "skipped"
	ItemFailed   = "failed"
)

// TransferItem logs the outcome for a single contact within a run.
type TransferItem struct {
	ID           uuid.UUID `json:"id"`
	RunID        string    `json:"run_id"`
	ResourceName string    `json:"resource_name,omitempty"`
	DisplayName  string    `json:"display_name"`
	Status       string    `json:"status"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
