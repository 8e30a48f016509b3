// ABOUTME: Imports a card file into the directory, one contact at a time
// ABOUTME: Resolves categories to groups, optionally tags the run with an import group
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/sirupsen/logrus"

	"github.com/harperreed/gcard/logger"
	"github.com/harperreed/gcard/mapping"
	"github.com/harperreed/gcard/models"
)

// ImportGroupLayout formats the timestamp in generated import group names.
const ImportGroupLayout = "02.01.2006 15:04"

// ImportGroupPrefix starts every generated import group name.
const ImportGroupPrefix = "VCard Import "

// ContactWriter creates contacts and attaches photos.
type ContactWriter interface {
	Create(ctx context.Context, c *models.Contact) (*models.Contact, error)
	SetPhotoBytes(ctx context.Context, resourceName string, data []byte) error
	SetPhoto(ctx context.Context, resourceName, source string) error
}

// GroupResolver lists and creates groups.
type GroupResolver interface {
	List(ctx context.Context, typeFilter models.GroupType) ([]models.Group, error)
	Create(ctx context.Context, name string) (models.Group, error)
}

// ImportConfig configures an Importer.
type ImportConfig struct {
	// CreateImportGroup puts every imported contact into one new group.
	CreateImportGroup bool
	// ImportGroup overrides the generated import group name.
	ImportGroup string
	// StarredCategory is the category that marks a contact as starred.
	StarredCategory string
	Recorder        RunRecorder
	Log             logrus.FieldLogger
	Now             func() time.Time
}

// ImportResult summarizes an import, also when it was aborted.
type ImportResult struct {
	RunID         string
	Count         int
	Created       []string
	LastResource  string
	ImportGroup   string
	ImportGroupID string
}

// Importer creates directory contacts from cards.
type Importer struct {
	contacts ContactWriter
	groups   GroupResolver
	cfg      ImportConfig
}

// NewImporter creates an importer.
func NewImporter(contacts ContactWriter, groups GroupResolver, cfg ImportConfig) *Importer {
	if cfg.Log == nil {
		cfg.Log = logger.GetLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Importer{contacts: contacts, groups: groups, cfg: cfg}
}

// DecodeCards parses every card in r.
func DecodeCards(r io.Reader) ([]vcard.Card, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, models.WrapError(models.CodeTransport, "read card file", err)
	}
	data, err := decodeInput(raw)
	if err != nil {
		return nil, err
	}

	var cards []vcard.Card
	dec := vcard.NewDecoder(bytes.NewReader(data))
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, models.WrapError(models.CodeParse, fmt.Sprintf("decode card %d", len(cards)+1), err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

type groupIndex struct {
	ids    map[string]string
	groups GroupResolver
	log    logrus.FieldLogger
}

func (g *groupIndex) add(name, resourceName string) {
	if name != "" {
		if _, ok := g.ids[name]; !ok {
			g.ids[name] = resourceName
		}
	}
}

// resolve returns the id of the group called name, creating it when missing.
func (g *groupIndex) resolve(ctx context.Context, name string) (string, error) {
	if id, ok := g.ids[name]; ok {
		return id, nil
	}
	created, err := g.groups.Create(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to create group %q: %w", name, err)
	}
	g.ids[name] = created.ResourceName
	g.log.WithFields(logrus.Fields{"group": name, "resource": created.ResourceName}).Info("created group for import")
	return created.ResourceName, nil
}

// Import creates one contact per card in r. The run stops at the first
// failure; contacts created before it are kept.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	t := newTracker(ctx, models.RunImport, "", im.cfg.Recorder, im.cfg.Log, im.cfg.Now)
	result := &ImportResult{RunID: t.run.ID}

	cards, err := DecodeCards(r)
	if err != nil {
		return result, t.fail(ctx, err)
	}
	if len(cards) == 0 {
		return result, t.fail(ctx, models.NewError(models.CodeValidation, "import", "no cards found"))
	}

	if err := t.advance(ctx, models.RunStateLoadingGroups); err != nil {
		return result, t.fail(ctx, err)
	}
	existing, err := im.groups.List(ctx, models.GroupTypeAll)
	if err != nil {
		return result, t.fail(ctx, fmt.Errorf("failed to load groups: %w", err))
	}
	index := &groupIndex{ids: map[string]string{}, groups: im.groups, log: t.log}
	for _, g := range existing {
		index.add(g.Name, g.ResourceName)
		index.add(g.FormattedName, g.ResourceName)
	}
	if im.cfg.StarredCategory != "" {
		index.ids[im.cfg.StarredCategory] = models.GroupStarred
	}

	if im.cfg.CreateImportGroup || im.cfg.ImportGroup != "" {
		name := im.cfg.ImportGroup
		if name == "" {
			name = ImportGroupPrefix + t.run.StartedAt.Format(ImportGroupLayout)
		}
		id, err := index.resolve(ctx, name)
		if err != nil {
			return result, t.fail(ctx, err)
		}
		result.ImportGroup, result.ImportGroupID = name, id
		t.run.ImportGroup, t.run.ImportGroupID = name, id
	}

	if err := t.advance(ctx, models.RunStateRunning); err != nil {
		return result, t.fail(ctx, err)
	}

	for i, card := range cards {
		rn, name, err := im.importCard(ctx, index, card, result.ImportGroupID)
		if err != nil {
			t.item(ctx, rn, name, models.ItemFailed, err.Error())
			return result, t.fail(ctx, fmt.Errorf("failed to import card %d of %d: %w", i+1, len(cards), err))
		}
		result.Count++
		result.Created = append(result.Created, rn)
		result.LastResource = rn
		t.run.Count = result.Count
		t.run.LastResource = rn
		t.item(ctx, rn, name, models.ItemCreated, "")
	}

	if err := t.advance(ctx, models.RunStateDone); err != nil {
		return result, err
	}
	t.log.WithFields(logrus.Fields{"imported": result.Count, "group": result.ImportGroup}).Info("import finished")
	return result, nil
}

// importCard creates a single contact and attaches its photo. It returns the
// new resource name, which is set even when only the photo step failed.
func (im *Importer) importCard(ctx context.Context, index *groupIndex, card vcard.Card, importGroupID string) (string, string, error) {
	c, err := mapping.FromCard(card)
	if err != nil {
		return "", strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName)), err
	}
	if importGroupID != "" {
		c.AddMembership(importGroupID)
	}
	for _, category := range mapping.Categories(card) {
		id, err := index.resolve(ctx, category)
		if err != nil {
			return "", c.DisplayName(), err
		}
		c.AddMembership(id)
	}

	created, err := im.contacts.Create(ctx, c)
	if err != nil {
		return "", c.DisplayName(), err
	}
	rn := created.ResourceName()

	data, uri := mapping.Photo(card)
	switch {
	case len(data) > 0:
		err = im.contacts.SetPhotoBytes(ctx, rn, data)
	case uri != "":
		err = im.contacts.SetPhoto(ctx, rn, uri)
	}
	if err != nil {
		return rn, created.DisplayName(), fmt.Errorf("failed to attach photo: %w", err)
	}
	return rn, created.DisplayName(), nil
}
