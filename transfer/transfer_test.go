// ABOUTME: Tests for card import and export against the fake People API
// ABOUTME: Covers import groups, categories, photos, aborts, charsets and run recording
package transfer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/directory"
	"github.com/harperreed/gcard/directory/peopletest"
	"github.com/harperreed/gcard/logger"
	"github.com/harperreed/gcard/mapping"
	"github.com/harperreed/gcard/models"
)

var (
	fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
)

func card(lines ...string) string {
	return "BEGIN:VCARD\r\nVERSION:3.0\r\n" + strings.Join(lines, "\r\n") + "\r\nEND:VCARD\r\n"
}

type memRecorder struct {
	mu     sync.Mutex
	states []models.RunState
	runs   map[string]models.TransferRun
	items  []models.TransferItem
}

func newMemRecorder() *memRecorder {
	return &memRecorder{runs: map[string]models.TransferRun{}}
}

func (m *memRecorder) StartRun(_ context.Context, run *models.TransferRun) error {
	return m.UpdateRun(context.Background(), run)
}

func (m *memRecorder) UpdateRun(_ context.Context, run *models.TransferRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, run.State)
	m.runs[run.ID] = *run
	return nil
}

func (m *memRecorder) RecordItem(_ context.Context, item *models.TransferItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *item)
	return nil
}

type fixture struct {
	srv      *peopletest.Server
	contacts *directory.Contacts
	groups   *directory.Groups
	rec      *memRecorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	srv := peopletest.New(t)
	svc := srv.Service(t)
	return &fixture{
		srv:      srv,
		contacts: directory.NewContacts(svc, directory.WithLogger(logger.Discard()), directory.WithDownloadClient(srv.Client())),
		groups:   directory.NewGroups(svc, directory.WithLogger(logger.Discard())),
		rec:      newMemRecorder(),
	}
}

func (f *fixture) importer(cfg ImportConfig) *Importer {
	cfg.Recorder = f.rec
	cfg.Log = logger.Discard()
	cfg.Now = func() time.Time { return fixedNow }
	return NewImporter(f.contacts, f.groups, cfg)
}

func (f *fixture) exporter(cfg ExportConfig) *Exporter {
	cfg.Recorder = f.rec
	cfg.Log = logger.Discard()
	cfg.Now = func() time.Time { return fixedNow }
	return NewExporter(f.contacts, f.groups, cfg)
}

func TestImportCreatesImportGroup(t *testing.T) {
	f := setup(t)
	data := card("N:Lovelace;Ada;;;", "FN:Ada Lovelace", "EMAIL;TYPE=INTERNET:ada@example.com") +
		card("N:Hopper;Grace;;;", "FN:Grace Hopper", "TEL;TYPE=CELL:+1 555 0100")

	result, err := f.importer(ImportConfig{CreateImportGroup: true}).Import(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Created, 2)
	assert.Equal(t, result.Created[1], result.LastResource)
	assert.Equal(t, "VCard Import 17.10.2026 09:30", result.ImportGroup)

	group := f.srv.Group(result.ImportGroupID)
	require.NotNil(t, group)
	assert.Equal(t, result.ImportGroup, group.Name)
	assert.ElementsMatch(t, result.Created, group.MemberResourceNames)

	ada := f.srv.Contact(result.Created[0])
	require.NotNil(t, ada)
	assert.Equal(t, "ada@example.com", ada.EmailAddresses[0].Value)
}

func TestImportResolvesCategories(t *testing.T) {
	f := setup(t)
	friends := f.srv.AddGroup("Friends")
	data := card("FN:Ada Lovelace", "CATEGORIES:Friends,Math,Favorites") +
		card("FN:Grace Hopper", "CATEGORIES:Math")

	result, err := f.importer(ImportConfig{StarredCategory: "Favorites"}).Import(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	assert.Empty(t, result.ImportGroupID)

	math := f.srv.GroupByName("Math")
	require.NotEmpty(t, math)
	assert.Equal(t, 1, f.srv.Calls(http.MethodPost, "/v1/contactGroups"))

	ada := models.FromPerson(f.srv.Contact(result.Created[0]))
	assert.True(t, ada.BelongsToGroup(friends))
	assert.True(t, ada.BelongsToGroup(math))
	assert.True(t, ada.IsStarred())

	grace := models.FromPerson(f.srv.Contact(result.Created[1]))
	assert.True(t, grace.BelongsToGroup(math))
	assert.False(t, grace.IsStarred())
}

func TestImportAttachesPhotos(t *testing.T) {
	f := setup(t)
	url := f.srv.Blob("grace.png", pngBytes)
	data := card("FN:Ada Lovelace", "PHOTO;ENCODING=b;TYPE=PNG:"+base64.StdEncoding.EncodeToString(pngBytes)) +
		card("FN:Grace Hopper", "PHOTO;VALUE=uri:"+url)

	result, err := f.importer(ImportConfig{}).Import(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, result.Created, 2)
	assert.Equal(t, pngBytes, f.srv.Photo(result.Created[0]))
	assert.Equal(t, pngBytes, f.srv.Photo(result.Created[1]))
}

func TestImportAbortsAtFirstFailure(t *testing.T) {
	f := setup(t)
	data := card("FN:Ada Lovelace") +
		card("EMAIL:nobody@example.com") +
		card("FN:Grace Hopper")

	result, err := f.importer(ImportConfig{}).Import(context.Background(), strings.NewReader(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 1, f.srv.ContactCount())

	run := f.rec.runs[result.RunID]
	assert.Equal(t, models.RunStateFailed, run.State)
	assert.NotEmpty(t, run.ErrorMessage)
	assert.NotNil(t, run.FinishedAt)
}

func TestImportStopsOnCreateFailure(t *testing.T) {
	f := setup(t)
	f.srv.Fail(http.MethodPost, "/v1/people:createContact", http.StatusInternalServerError, "INTERNAL", "boom")

	result, err := f.importer(ImportConfig{}).Import(context.Background(), strings.NewReader(card("FN:Ada")+card("FN:Grace")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRemoteAPI))
	assert.Equal(t, 0, result.Count)
	assert.Equal(t, 0, f.srv.ContactCount())
}

func TestImportRejectsEmptyAndMalformedInput(t *testing.T) {
	f := setup(t)

	_, err := f.importer(ImportConfig{}).Import(context.Background(), strings.NewReader(""))
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = f.importer(ImportConfig{}).Import(context.Background(), strings.NewReader("BEGIN:VCARD\r\nthis is not a property\r\n"))
	assert.True(t, errors.Is(err, models.ErrParse))
}

func TestImportDecodesWindows1252(t *testing.T) {
	f := setup(t)
	data := []byte(card("N:M\xfcller;J\xfcrgen;;;", "FN:J\xfcrgen M\xfcller"))

	result, err := f.importer(ImportConfig{}).Import(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	stored := f.srv.Contact(result.LastResource)
	require.NotNil(t, stored)
	assert.Equal(t, "Jürgen Müller", stored.Names[0].DisplayName)
	assert.Equal(t, "Müller", stored.Names[0].FamilyName)
}

func TestImportRecordsRun(t *testing.T) {
	f := setup(t)

	result, err := f.importer(ImportConfig{CreateImportGroup: true}).Import(context.Background(), strings.NewReader(card("FN:Ada")))
	require.NoError(t, err)

	assert.Equal(t, []models.RunState{
		models.RunStateInit,
		models.RunStateLoadingGroups,
		models.RunStateRunning,
		models.RunStateDone,
	}, f.rec.states)
	run := f.rec.runs[result.RunID]
	assert.Equal(t, models.RunImport, run.Kind)
	assert.Equal(t, 1, run.Count)
	assert.Equal(t, result.ImportGroupID, run.ImportGroupID)
	require.Len(t, f.rec.items, 1)
	assert.Equal(t, models.ItemCreated, f.rec.items[0].Status)
	assert.Equal(t, result.RunID, f.rec.items[0].RunID)
}

func named(given, family string) *people.Person {
	return &people.Person{Names: []*people.Name{{GivenName: given, FamilyName: family, DisplayName: given + " " + family}}}
}

func TestExportAllSkipsNamelessContacts(t *testing.T) {
	f := setup(t)
	friends := f.srv.AddGroup("Friends")
	ada := named("Ada", "Lovelace")
	ada.Memberships = []*people.Membership{
		{ContactGroupMembership: &people.ContactGroupMembership{ContactGroupResourceName: friends}},
		{ContactGroupMembership: &people.ContactGroupMembership{ContactGroupResourceName: models.GroupStarred}},
	}
	f.srv.AddContact(ada)
	f.srv.AddContact(&people.Person{EmailAddresses: []*people.EmailAddress{{Value: "anon@example.com"}}})
	f.srv.AddContact(named("Grace", "Hopper"))

	var buf bytes.Buffer
	opts := mapping.DefaultExportOptions()
	opts.StarredCategory = "Favorites"
	result, err := f.exporter(ExportConfig{Options: opts}).Export(context.Background(), &buf, "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 1, result.Skipped)

	cards, err := DecodeCards(&buf)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.ElementsMatch(t, []string{"Friends", "Favorites"}, mapping.Categories(cards[0]))
	assert.Empty(t, mapping.Categories(cards[1]))
}

func TestExportAllCarriesDetailFields(t *testing.T) {
	f := setup(t)
	friends := f.srv.AddGroup("Friends")
	ada := named("Ada", "Lovelace")
	ada.Photos = []*people.Photo{{Url: "https://example.com/ada.jpg"}}
	ada.Urls = []*people.Url{{Value: "https://ada.example.com"}}
	ada.Biographies = []*people.Biography{{Value: "Wrote the first program", ContentType: "TEXT_PLAIN"}}
	ada.Genders = []*people.Gender{{Value: "female"}}
	ada.Memberships = []*people.Membership{{ContactGroupMembership: &people.ContactGroupMembership{ContactGroupResourceName: friends}}}
	f.srv.AddContact(ada)

	for _, scope := range []string{"", friends} {
		var buf bytes.Buffer
		result, err := f.exporter(ExportConfig{Options: mapping.DefaultExportOptions()}).Export(context.Background(), &buf, scope)
		require.NoError(t, err)
		require.Equal(t, 1, result.Count)

		cards, err := DecodeCards(&buf)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "https://example.com/ada.jpg", cards[0].Value(vcard.FieldPhoto), scope)
		assert.Equal(t, "https://ada.example.com", cards[0].Value(vcard.FieldURL), scope)
		assert.Equal(t, "Wrote the first program", cards[0].Value(vcard.FieldNote), scope)
		assert.Equal(t, "F", cards[0].Value(vcard.FieldGender), scope)
	}
}

func TestExportPassesThroughGroupLoading(t *testing.T) {
	f := setup(t)
	f.srv.AddContact(named("Ada", "Lovelace"))

	var buf bytes.Buffer
	_, err := f.exporter(ExportConfig{}).Export(context.Background(), &buf, "")
	require.NoError(t, err)
	assert.Equal(t, []models.RunState{
		models.RunStateInit,
		models.RunStateLoadingGroups,
		models.RunStateRunning,
		models.RunStateDone,
	}, f.rec.states)
	assert.Equal(t, 0, f.srv.Calls(http.MethodGet, "/v1/contactGroups"))
}

func TestExportGroupScope(t *testing.T) {
	f := setup(t)
	friends := f.srv.AddGroup("Friends")
	ada := named("Ada", "Lovelace")
	ada.Memberships = []*people.Membership{{ContactGroupMembership: &people.ContactGroupMembership{ContactGroupResourceName: friends}}}
	f.srv.AddContact(ada)
	f.srv.AddContact(named("Grace", "Hopper"))

	var buf bytes.Buffer
	result, err := f.exporter(ExportConfig{Options: mapping.DefaultExportOptions()}).Export(context.Background(), &buf, friends)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Contains(t, buf.String(), "FN:Ada Lovelace")
	assert.NotContains(t, buf.String(), "Grace")
}

func TestExportSingleContact(t *testing.T) {
	f := setup(t)
	rn := f.srv.AddContact(named("Ada", "Lovelace"))
	nameless := f.srv.AddContact(&people.Person{})

	var buf bytes.Buffer
	result, err := f.exporter(ExportConfig{}).Export(context.Background(), &buf, rn)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 0, f.srv.Calls(http.MethodGet, "/v1/contactGroups"))

	buf.Reset()
	_, err = f.exporter(ExportConfig{}).Export(context.Background(), &buf, nameless)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = f.exporter(ExportConfig{}).Export(context.Background(), &buf, "people/missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestExportFailsWhenGroupsCannotLoad(t *testing.T) {
	f := setup(t)
	f.srv.AddContact(named("Ada", "Lovelace"))
	f.srv.Fail(http.MethodGet, "/v1/contactGroups", http.StatusInternalServerError, "INTERNAL", "boom")

	var buf bytes.Buffer
	result, err := f.exporter(ExportConfig{Options: mapping.DefaultExportOptions()}).Export(context.Background(), &buf, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRemoteAPI))
	assert.Equal(t, 0, result.Count)
	assert.Zero(t, buf.Len())
	assert.Equal(t, models.RunStateFailed, f.rec.runs[result.RunID].State)
}

func TestExportCharset(t *testing.T) {
	f := setup(t)
	f.srv.AddContact(named("Jürgen", "Müller"))

	var buf bytes.Buffer
	_, err := f.exporter(ExportConfig{Charset: "ISO-8859-1"}).Export(context.Background(), &buf, "")
	require.NoError(t, err)
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("M\xfcller")))

	cards, err := DecodeCards(&buf)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Jürgen Müller", cards[0].PreferredValue("FN"))

	_, err = f.exporter(ExportConfig{Charset: "klingon"}).Export(context.Background(), &buf, "")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestLookupCharset(t *testing.T) {
	enc, err := LookupCharset("")
	require.NoError(t, err)
	assert.True(t, isUTF8(enc))

	enc, err = LookupCharset("windows-1252")
	require.NoError(t, err)
	assert.False(t, isUTF8(enc))
}
