// ABOUTME: Tests for vCard and form mapping
// ABOUTME: Covers type mapping, preferred entries, categories, photos and round trips
package mapping

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/emersion/go-vcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/models"
)

const sampleCard = "BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"N:Lovelace;Ada;Augusta;Countess;\r\n" +
	"FN:Ada Lovelace\r\n" +
	"ORG:Analytical Engines;Research\r\n" +
	"TITLE:Mathematician\r\n" +
	"TEL;TYPE=HOME,VOICE:+44 20 1111\r\n" +
	"TEL;TYPE=CELL,pref:+44 77 2222\r\n" +
	"TEL;TYPE=FAX:+44 20 3333\r\n" +
	"ADR;TYPE=WORK:;;12 St James Square;London;;SW1Y 4JH;gb\r\n" +
	"ADR;TYPE=HOME:;;Ockham Park;Ockham;;;United Kingdom\r\n" +
	"EMAIL;TYPE=INTERNET:ada@example.com\r\n" +
	"EMAIL;TYPE=INTERNET,pref:countess@example.com\r\n" +
	"URL:https://example.com/ada\r\n" +
	"NICKNAME:Enchantress of Numbers\r\n" +
	"NOTE:First programmer\r\n" +
	"ROLE:Analyst\r\n" +
	"BDAY:1815-12-10\r\n" +
	"GENDER:F\r\n" +
	"CATEGORIES:Friends,Scientists\r\n" +
	"END:VCARD\r\n"

func decodeCard(t *testing.T, text string) vcard.Card {
	t.Helper()
	card, err := vcard.NewDecoder(strings.NewReader(text)).Decode()
	require.NoError(t, err)
	return card
}

func TestFromCard(t *testing.T) {
	c, err := FromCard(decodeCard(t, sampleCard))
	require.NoError(t, err)
	p := c.Person()

	require.Len(t, p.Names, 1)
	assert.Equal(t, "Ada Lovelace", p.Names[0].DisplayName)
	assert.Equal(t, "Lovelace", p.Names[0].FamilyName)
	assert.Equal(t, "Ada", p.Names[0].GivenName)
	assert.Equal(t, "Augusta", p.Names[0].MiddleName)
	assert.Equal(t, "Countess", p.Names[0].HonorificPrefix)

	require.Len(t, p.PhoneNumbers, 3)
	assert.Equal(t, TypeHome, p.PhoneNumbers[0].Type)
	assert.Equal(t, TypeMobile, p.PhoneNumbers[1].Type)
	assert.Equal(t, TypeOther, p.PhoneNumbers[2].Type)
	assert.Equal(t, 1, c.PrimaryItemIndex(models.FieldPhoneNumbers))

	require.Len(t, p.Addresses, 2)
	assert.Equal(t, TypeWork, p.Addresses[0].Type)
	assert.Equal(t, "GB", p.Addresses[0].CountryCode)
	assert.Empty(t, p.Addresses[0].Country)
	assert.Equal(t, "London", p.Addresses[0].City)
	assert.Equal(t, TypeHome, p.Addresses[1].Type)
	assert.Equal(t, "United Kingdom", p.Addresses[1].Country)
	assert.Equal(t, -1, c.PrimaryItemIndex(models.FieldAddresses))

	require.Len(t, p.EmailAddresses, 2)
	assert.Equal(t, TypeOther, p.EmailAddresses[0].Type)
	assert.Equal(t, 1, c.PrimaryItemIndex(models.FieldEmailAddresses))

	require.Len(t, p.Urls, 1)
	assert.Equal(t, TypeOther, p.Urls[0].Type)

	require.Len(t, p.Organizations, 1)
	assert.Equal(t, "Analytical Engines", p.Organizations[0].Name)
	assert.Equal(t, "Research", p.Organizations[0].Department)
	assert.Equal(t, "Mathematician", p.Organizations[0].Title)

	assert.Equal(t, "Enchantress of Numbers", p.Nicknames[0].Value)
	assert.Equal(t, "First programmer", p.Biographies[0].Value)
	assert.Equal(t, "Analyst", p.Occupations[0].Value)
	assert.Equal(t, GenderFemale, p.Genders[0].Value)
	assert.Equal(t, "1815-12-10", c.DateOfBirthString(""))

	assert.Equal(t, []string{"Friends", "Scientists"}, Categories(decodeCard(t, sampleCard)))
}

func TestFromCardPrefParam(t *testing.T) {
	text := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Grace Hopper\r\n" +
		"TEL;TYPE=work:111\r\nTEL;PREF=1;TYPE=home:222\r\nTEL;PREF=2:333\r\n" +
		"GENDER:O\r\nEND:VCARD\r\n"

	c, err := FromCard(decodeCard(t, text))
	require.NoError(t, err)
	assert.Equal(t, 1, c.PrimaryItemIndex(models.FieldPhoneNumbers))
	assert.Equal(t, "Grace Hopper", c.DisplayName())
	assert.Equal(t, GenderUnspecified, c.Person().Genders[0].Value)
}

func TestFromCardWithoutNameFails(t *testing.T) {
	text := "BEGIN:VCARD\r\nVERSION:3.0\r\nTEL:123\r\nEND:VCARD\r\n"

	_, err := FromCard(decodeCard(t, text))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestToCard(t *testing.T) {
	c := models.NewEmpty(models.DetailFields...)
	c.SetResourceName("people/c42")
	p := c.Person()
	p.Names[0].DisplayName = "Ada Lovelace"
	p.Names[0].GivenName = "Ada"
	p.Names[0].FamilyName = "Lovelace"
	p.PhoneNumbers = []*people.PhoneNumber{
		{Value: "1", Type: TypeHome},
		{Value: "2", Type: TypeMobile},
		{Value: "3", Type: TypeWork},
		{Value: "4", Type: "pager"},
	}
	require.NoError(t, c.SetPrimaryItem(models.FieldPhoneNumbers, 2))
	p.Addresses = []*people.Address{{City: "London", Type: TypeWork}, {City: "Ockham", Type: "holiday"}}
	c.AddMembership(models.GroupStarred)
	c.AddMembership("contactGroups/friends1")
	c.AddMembership("contactGroups/unknown")
	p.Photos = []*people.Photo{
		{Url: "https://example.com/default.jpg", Default: true},
		{Url: "https://example.com/ada.jpg"},
	}
	c.Compact()

	opts := DefaultExportOptions()
	opts.StarredCategory = "Starred"
	opts.Groups = map[string]string{"contactGroups/friends1": "Friends"}

	card, err := ToCard(c, opts)
	require.NoError(t, err)

	assert.Equal(t, CardVersion, card.Value(vcard.FieldVersion))
	assert.Equal(t, "Ada Lovelace", card.Value(vcard.FieldFormattedName))
	assert.True(t, strings.HasPrefix(card.Value(vcard.FieldUID), "urn:uuid:"))

	tels := card[vcard.FieldTelephone]
	require.Len(t, tels, 4)
	assert.Equal(t, []string{"HOME"}, fieldTypes(tels[0]))
	assert.Equal(t, []string{"CELL"}, fieldTypes(tels[1]))
	assert.Equal(t, []string{"WORK", "PREF"}, fieldTypes(tels[2]))
	assert.Equal(t, []string{"VOICE"}, fieldTypes(tels[3]))

	addrs := card.Addresses()
	require.Len(t, addrs, 2)
	assert.Equal(t, []string{"WORK"}, fieldTypes(addrs[0].Field))
	assert.Empty(t, fieldTypes(addrs[1].Field))

	assert.Equal(t, []string{"Starred", "Friends"}, card.Categories())
	assert.Equal(t, "https://example.com/ada.jpg", card.Value(vcard.FieldPhoto))
}

func TestToCardUIDIsStable(t *testing.T) {
	c := models.NewEmpty(models.FieldNames)
	c.SetResourceName("people/c1")
	c.Person().Names[0].DisplayName = "X"

	a, err := ToCard(c, DefaultExportOptions())
	require.NoError(t, err)
	b, err := ToCard(c, DefaultExportOptions())
	require.NoError(t, err)
	assert.Equal(t, a.Value(vcard.FieldUID), b.Value(vcard.FieldUID))
}

func TestToCardPhotoOptions(t *testing.T) {
	c := models.NewEmpty(models.FieldNames)
	c.Person().Names[0].DisplayName = "X"
	c.Person().Photos = []*people.Photo{{Url: "https://example.com/default.jpg", Default: true}}

	card, err := ToCard(c, DefaultExportOptions())
	require.NoError(t, err)
	assert.Nil(t, card.Get(vcard.FieldPhoto))

	opts := DefaultExportOptions()
	opts.UseDefaultPhoto = true
	card, err = ToCard(c, opts)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/default.jpg", card.Value(vcard.FieldPhoto))

	opts.ExportPhoto = false
	card, err = ToCard(c, opts)
	require.NoError(t, err)
	assert.Nil(t, card.Get(vcard.FieldPhoto))
}

func TestToCardWithoutNamesFails(t *testing.T) {
	c := models.NewEmpty(models.FieldPhoneNumbers)

	_, err := ToCard(c, DefaultExportOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestRoundTrip(t *testing.T) {
	first, err := FromCard(decodeCard(t, sampleCard))
	require.NoError(t, err)

	card, err := ToCard(first, ExportOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, vcard.NewEncoder(&buf).Encode(card))

	second, err := FromCard(decodeCard(t, buf.String()))
	require.NoError(t, err)

	a, b := first.Person(), second.Person()
	assert.Equal(t, a.Names[0].DisplayName, b.Names[0].DisplayName)
	assert.Equal(t, a.Names[0].GivenName, b.Names[0].GivenName)
	assert.Equal(t, a.Names[0].FamilyName, b.Names[0].FamilyName)
	require.Len(t, b.PhoneNumbers, len(a.PhoneNumbers))
	for i := range a.PhoneNumbers {
		assert.Equal(t, a.PhoneNumbers[i].Value, b.PhoneNumbers[i].Value)
		assert.Equal(t, a.PhoneNumbers[i].Type, b.PhoneNumbers[i].Type)
	}
	assert.Equal(t, first.PrimaryItemIndex(models.FieldPhoneNumbers), second.PrimaryItemIndex(models.FieldPhoneNumbers))
	assert.Equal(t, first.PrimaryItemIndex(models.FieldEmailAddresses), second.PrimaryItemIndex(models.FieldEmailAddresses))
	assert.Equal(t, a.Organizations[0].Name, b.Organizations[0].Name)
	assert.Equal(t, a.Organizations[0].Department, b.Organizations[0].Department)
	assert.Equal(t, first.DateOfBirthString(""), second.DateOfBirthString(""))
	assert.Equal(t, a.Genders[0].Value, b.Genders[0].Value)
	assert.Equal(t, a.Addresses[0].CountryCode, b.Addresses[0].CountryCode)
}

func TestPhotoExtraction(t *testing.T) {
	embedded := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:X\r\nPHOTO;ENCODING=b;TYPE=JPEG:aGVsbG8=\r\nEND:VCARD\r\n"
	data, uri := Photo(decodeCard(t, embedded))
	assert.Equal(t, []byte("hello"), data)
	assert.Empty(t, uri)

	dataURI := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:X\r\nPHOTO:data:image/png;base64,aGVsbG8=\r\nEND:VCARD\r\n"
	data, _ = Photo(decodeCard(t, dataURI))
	assert.Equal(t, []byte("hello"), data)

	remote := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:X\r\nPHOTO;VALUE=uri:https://example.com/p.jpg\r\nEND:VCARD\r\n"
	data, uri = Photo(decodeCard(t, remote))
	assert.Nil(t, data)
	assert.Equal(t, "https://example.com/p.jpg", uri)
}

func TestDecodeForm(t *testing.T) {
	values := url.Values{
		"resourceName":           {"people/c7"},
		"metadataType":           {"CONTACT"},
		"metadataId":             {"c7"},
		"metadataEtag":           {"etag-7"},
		"names_0_givenName":      {"Ada"},
		"names_0_familyName":     {"Lovelace"},
		"names_0_displayName":    {"Ada Lovelace"},
		"phoneNumbers_0_value":   {"111"},
		"phoneNumbers_0_type":    {"home"},
		"phoneNumbers_1_value":   {"222"},
		"phoneNumbers_1_type":    {"mobile"},
		"phoneNumbers":           {"1"},
		"emailAddresses_0_value": {"ada@example.com"},
		"birthday":               {"1815-12-10"},
		"submit":                 {"Save"},
	}
	values.Set("memberships_0_contactGroupResourceName", models.GroupStarred)

	c, err := DecodeForm(values)
	require.NoError(t, err)

	assert.Equal(t, "people/c7", c.ResourceName())
	assert.Equal(t, "etag-7", c.Etag())
	assert.Equal(t, "Ada Lovelace", c.DisplayName())
	require.Len(t, c.Person().PhoneNumbers, 2)
	assert.Equal(t, 1, c.PrimaryItemIndex(models.FieldPhoneNumbers))
	assert.Equal(t, "1815-12-10", c.DateOfBirthString(""))
	assert.True(t, c.IsStarred())
	assert.Empty(t, c.Person().Urls)
}

func TestDecodeFormMaskFollowsMembershipKeys(t *testing.T) {
	c, err := DecodeForm(url.Values{"names_0_givenName": {"Ada"}})
	require.NoError(t, err)
	assert.NotContains(t, c.Fields(), models.FieldMemberships)
	assert.NotContains(t, models.WritableFields(c.Fields()), models.FieldMemberships)
	assert.Contains(t, c.Fields(), models.FieldNames)

	c, err = DecodeForm(url.Values{
		"names_0_givenName":                      {"Ada"},
		"memberships_0_contactGroupResourceName": {models.GroupStarred},
	})
	require.NoError(t, err)
	assert.Contains(t, c.Fields(), models.FieldMemberships)
	assert.True(t, c.IsStarred())
}

func TestDecodeFormRejectsUnknownGroup(t *testing.T) {
	_, err := DecodeForm(url.Values{"pets_0_name": {"Rex"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestDecodeFormRejectsUnknownAttribute(t *testing.T) {
	_, err := DecodeForm(url.Values{"names_0_shoeSize": {"9"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestDecodeFormPrimaryOutOfRange(t *testing.T) {
	_, err := DecodeForm(url.Values{"names_0_givenName": {"Ada"}, "urls": {"4"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrIndexOutOfRange))
}
