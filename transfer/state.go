// ABOUTME: Run state tracking for imports and exports
// ABOUTME: Enforces the run state machine and forwards progress to an optional recorder
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/harperreed/gcard/models"
)

// RunRecorder persists run progress. Recorder failures are logged and never fail a run.
type RunRecorder interface {
	StartRun(ctx context.Context, run *models.TransferRun) error
	UpdateRun(ctx context.Context, run *models.TransferRun) error
	RecordItem(ctx context.Context, item *models.TransferItem) error
}

type tracker struct {
	run *models.TransferRun
	rec RunRecorder
	log logrus.FieldLogger
	now func() time.Time
}

func newTracker(ctx context.Context, kind models.RunKind, scope string, rec RunRecorder, log logrus.FieldLogger, now func() time.Time) *tracker {
	t := &tracker{
		run: &models.TransferRun{
			ID:        ulid.Make().String(),
			Kind:      kind,
			Scope:     scope,
			State:     models.RunStateInit,
			StartedAt: now(),
		},
		rec: rec,
		now: now,
	}
	t.log = log.WithFields(logrus.Fields{"run": t.run.ID, "kind": kind})
	if rec != nil {
		if err := rec.StartRun(ctx, t.run); err != nil {
			t.log.WithError(err).Warn("failed to record run start")
		}
	}
	return t
}

func (t *tracker) advance(ctx context.Context, next models.RunState) error {
	if !t.run.State.CanTransition(next) {
		return fmt.Errorf("invalid run transition %s -> %s", t.run.State, next)
	}
	t.run.State = next
	if next.Terminal() {
		finished := t.now()
		t.run.FinishedAt = &finished
	}
	t.log.WithField("state", next).Debug("run state changed")
	t.save(ctx)
	return nil
}

func (t *tracker) save(ctx context.Context) {
	if t.rec == nil {
		return
	}
	if err := t.rec.UpdateRun(ctx, t.run); err != nil {
		t.log.WithError(err).Warn("failed to record run state")
	}
}

func (t *tracker) item(ctx context.Context, resourceName, displayName, status, detail string) {
	if t.rec == nil {
		return
	}
	item := &models.TransferItem{
		ID:           uuid.New(),
		RunID:        t.run.ID,
		ResourceName: resourceName,
		DisplayName:  displayName,
		Status:       status,
		Detail:       detail,
		CreatedAt:    t.now(),
	}
	if err := t.rec.RecordItem(ctx, item); err != nil {
		t.log.WithError(err).Warn("failed to record run item")
	}
}

// fail moves the run to failed and returns err for the caller to propagate.
func (t *tracker) fail(ctx context.Context, err error) error {
	t.run.ErrorMessage = err.Error()
	if advErr := t.advance(ctx, models.RunStateFailed); advErr != nil {
		t.log.WithError(advErr).Warn("run already finished")
	}
	t.log.WithError(err).Error("run failed")
	return err
}
