// ABOUTME: Exports contacts from the directory into a card file
// ABOUTME: Scope selects all contacts, one group's members or a single contact
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/sirupsen/logrus"

	"github.com/harperreed/gcard/directory"
	"github.com/harperreed/gcard/logger"
	"github.com/harperreed/gcard/mapping"
	"github.com/harperreed/gcard/models"
)

// ContactSource reads contacts for export.
type ContactSource interface {
	ListDetailed(ctx context.Context, sort directory.SortOrder, groupFilter string) ([]*models.Contact, error)
	Get(ctx context.Context, resourceName string) (*models.Contact, error)
}

// GroupNamer resolves group resource names to display names.
type GroupNamer interface {
	Names(ctx context.Context, typeFilter models.GroupType) (map[string]string, error)
}

// ExportConfig configures an Exporter.
type ExportConfig struct {
	Options  mapping.ExportOptions
	Charset  string
	Recorder RunRecorder
	Log      logrus.FieldLogger
	Now      func() time.Time
}

// ExportResult summarizes a finished export.
type ExportResult struct {
	RunID   string
	Count   int
	Skipped int
}

// Exporter writes directory contacts as cards.
type Exporter struct {
	contacts ContactSource
	groups   GroupNamer
	cfg      ExportConfig
}

// NewExporter creates an exporter.
func NewExporter(contacts ContactSource, groups GroupNamer, cfg ExportConfig) *Exporter {
	if cfg.Log == nil {
		cfg.Log = logger.GetLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Exporter{contacts: contacts, groups: groups, cfg: cfg}
}

// Export writes the contacts in scope to w. An empty scope exports every
// contact, a contactGroups/ scope exports that group's members and anything
// else is treated as a single contact resource name.
func (e *Exporter) Export(ctx context.Context, w io.Writer, scope string) (*ExportResult, error) {
	t := newTracker(ctx, models.RunExport, scope, e.cfg.Recorder, e.cfg.Log, e.cfg.Now)
	result := &ExportResult{RunID: t.run.ID}
	opts := e.cfg.Options
	single := scope != "" && !directory.IsGroupResource(scope)

	out, closeOut, err := charsetWriter(w, e.cfg.Charset)
	if err != nil {
		return result, t.fail(ctx, err)
	}

	if err := t.advance(ctx, models.RunStateLoadingGroups); err != nil {
		return result, t.fail(ctx, err)
	}
	if opts.MapGroupsToCategory {
		typeFilter := models.GroupTypeUser
		if opts.MapSystemGroups {
			typeFilter = models.GroupTypeAll
		}
		names, err := e.groups.Names(ctx, typeFilter)
		if err != nil {
			return result, t.fail(ctx, fmt.Errorf("failed to load groups: %w", err))
		}
		opts.Groups = names
	}

	if err := t.advance(ctx, models.RunStateRunning); err != nil {
		return result, t.fail(ctx, err)
	}

	var contacts []*models.Contact
	if single {
		c, err := e.contacts.Get(ctx, scope)
		if err != nil {
			return result, t.fail(ctx, fmt.Errorf("failed to load contact: %w", err))
		}
		contacts = []*models.Contact{c}
	} else {
		contacts, err = e.contacts.ListDetailed(ctx, directory.DefaultSortOrder, scope)
		if err != nil {
			return result, t.fail(ctx, fmt.Errorf("failed to list contacts: %w", err))
		}
	}

	enc := vcard.NewEncoder(out)
	for _, c := range contacts {
		card, err := mapping.ToCard(c, opts)
		if err != nil {
			if !single && errors.Is(err, models.ErrValidation) {
				result.Skipped++
				t.item(ctx, c.ResourceName(), c.DisplayName(), models.ItemSkipped, err.Error())
				t.log.WithField("resource", c.ResourceName()).Debug("skipped contact without name")
				continue
			}
			return result, t.fail(ctx, err)
		}
		if err := enc.Encode(card); err != nil {
			return result, t.fail(ctx, models.WrapError(models.CodeTransport, "write card", err))
		}
		result.Count++
		t.run.Count = result.Count
		t.run.LastResource = c.ResourceName()
		t.item(ctx, c.ResourceName(), c.DisplayName(), models.ItemExported, "")
	}

	if err := closeOut(); err != nil {
		return result, t.fail(ctx, models.WrapError(models.CodeTransport, "write card", err))
	}
	if err := t.advance(ctx, models.RunStateDone); err != nil {
		return result, err
	}
	t.log.WithFields(logrus.Fields{"exported": result.Count, "skipped": result.Skipped}).Info("export finished")
	return result, nil
}
