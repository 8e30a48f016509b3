// ABOUTME: Tests for the contact record
// ABOUTME: Covers templates, display name fallbacks, primary entries, memberships and birthdays
package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/people/v1"
)

func TestNewEmptyTemplate(t *testing.T) {
	c := NewEmpty(FieldNames, FieldPhoneNumbers, FieldMetadata)

	assert.Len(t, c.Person().Names, 1)
	assert.Len(t, c.Person().PhoneNumbers, 1)
	assert.Empty(t, c.Person().EmailAddresses)
	require.NotNil(t, c.Person().Metadata)
	require.Len(t, c.Person().Metadata.Sources, 1)
	assert.Equal(t, SourceTypeContact, c.Person().Metadata.Sources[0].Type)
	assert.Equal(t, []FieldGroup{FieldNames, FieldPhoneNumbers, FieldMetadata}, c.Fields())
}

func TestNewEmptyDefaultsToDetailFields(t *testing.T) {
	c := NewEmpty()
	assert.Equal(t, DetailFields, c.Fields())
	assert.Len(t, c.Person().Urls, 1)
	assert.Empty(t, c.Person().Photos)
}

func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"resourceName": "people/c1",
		"etag": "e1",
		"names": [{"displayName": "Ada Lovelace", "givenName": "Ada"}],
		"metadata": {"sources": [{"type": "CONTACT", "id": "c1", "etag": "src-e1", "updateTime": "2024-02-03T04:05:06Z"}]}
	}`)

	c, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "people/c1", c.ResourceName())
	assert.Equal(t, "Ada Lovelace", c.DisplayName())
	assert.Equal(t, "src-e1", c.Etag())
	assert.Empty(t, c.Person().PhoneNumbers)
	assert.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), c.LastModified())
}

func TestFromJSONMalformed(t *testing.T) {
	_, err := FromJSON([]byte(`{"names": [`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Equal(t, CodeParse, CodeOf(err))
}

func TestDisplayNameFallbacks(t *testing.T) {
	c := NewEmpty(FieldNames, FieldOrganizations)
	assert.Equal(t, UnsetDisplayName, c.DisplayName())

	c.Person().Organizations[0].Name = "Analytical Engines Ltd"
	assert.Equal(t, "Analytical Engines Ltd", c.DisplayName())

	c.Person().Names[0].DisplayName = "Ada"
	assert.Equal(t, "Ada", c.DisplayName())
}

func TestSetPrimaryItemKeepsSingleFlag(t *testing.T) {
	c := NewEmpty(FieldPhoneNumbers)
	c.Person().PhoneNumbers = []*people.PhoneNumber{
		{Value: "1"}, {Value: "2"}, {Value: "3"},
	}

	require.NoError(t, c.SetPrimaryItem(FieldPhoneNumbers, 1))
	require.NoError(t, c.SetPrimaryItem(FieldPhoneNumbers, 2))

	count := 0
	for i := range c.Person().PhoneNumbers {
		if c.IsPrimary(FieldPhoneNumbers, i) {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, c.PrimaryItemIndex(FieldPhoneNumbers))
	assert.True(t, c.Person().PhoneNumbers[2].Metadata.SourcePrimary)
	assert.False(t, c.Person().PhoneNumbers[1].Metadata.SourcePrimary)
}

func TestSetPrimaryItemOutOfRange(t *testing.T) {
	c := NewEmpty(FieldEmailAddresses)
	c.Person().EmailAddresses = nil

	err := c.SetPrimaryItem(FieldEmailAddresses, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	c.Person().EmailAddresses = []*people.EmailAddress{{Value: "a@example.com"}}
	require.NoError(t, c.SetPrimaryItem(FieldEmailAddresses, 0))
	require.Error(t, c.SetPrimaryItem(FieldEmailAddresses, 3))
	assert.Equal(t, 0, c.PrimaryItemIndex(FieldEmailAddresses))
}

func TestPrimaryItemIndexNone(t *testing.T) {
	c := NewEmpty(FieldURLs)
	assert.Equal(t, -1, c.PrimaryItemIndex(FieldURLs))
}

func TestSetPrimaryItemOnNullEntry(t *testing.T) {
	c, err := FromJSON([]byte(`{"emailAddresses":[null,{"value":"b@example.com"}]}`))
	require.NoError(t, err)

	require.NoError(t, c.SetPrimaryItem(FieldEmailAddresses, 0))
	assert.Equal(t, 0, c.PrimaryItemIndex(FieldEmailAddresses))
	require.NotNil(t, c.Person().EmailAddresses[0])
	require.NotNil(t, c.Person().EmailAddresses[0].Metadata)
	assert.True(t, c.Person().EmailAddresses[0].Metadata.Primary)
	assert.True(t, c.IsPrimary(FieldEmailAddresses, 0))
	assert.False(t, c.IsPrimary(FieldEmailAddresses, 1))
}

func TestCloneIsIndependent(t *testing.T) {
	c := NewEmpty(FieldNames, FieldPhoneNumbers)
	c.Person().Names[0].DisplayName = "Ada"

	clone, err := c.Clone()
	require.NoError(t, err)
	clone.Compact()
	clone.Person().Names[0].DisplayName = "Grace"

	assert.Equal(t, "Ada", c.DisplayName())
	assert.Len(t, c.Person().PhoneNumbers, 1)
	assert.Empty(t, clone.Person().PhoneNumbers)
	assert.Equal(t, c.Fields(), clone.Fields())
}

func TestMarshalJSONWritesSourcePrimary(t *testing.T) {
	c := NewEmpty(FieldEmailAddresses)
	c.Person().EmailAddresses = []*people.EmailAddress{
		{Value: "a@example.com", Metadata: &people.FieldMetadata{Primary: true}},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sourcePrimary":true`)
}

func TestStarredToggle(t *testing.T) {
	c := NewEmpty(FieldNames, FieldMemberships)
	assert.False(t, c.IsStarred())

	c.AddMembership(GroupStarred)
	c.AddMembership(GroupStarred)
	assert.True(t, c.IsStarred())
	assert.Equal(t, []string{GroupStarred}, c.Memberships())

	c.RemoveMembership(GroupStarred)
	assert.False(t, c.IsStarred())
}

func TestBelongsToGroup(t *testing.T) {
	c := NewEmpty(FieldMemberships)
	c.AddMembership("contactGroups/abc")
	assert.True(t, c.BelongsToGroup("contactGroups/abc"))
	assert.False(t, c.BelongsToGroup("contactGroups/xyz"))
}

func TestSetMetadataOverwritesSource(t *testing.T) {
	c := NewEmpty(FieldNames)
	c.SetMetadata(SourceTypeContact, "c9", "etag-9")
	c.SetMetadata(SourceTypeContact, "c9", "etag-10")

	require.Len(t, c.Person().Metadata.Sources, 1)
	assert.Equal(t, "etag-10", c.Etag())
	assert.Equal(t, "c9", c.Person().Metadata.Sources[0].Id)
}

func TestCompactRemovesEmptyEntries(t *testing.T) {
	c := NewEmpty()
	c.Person().Names[0].GivenName = "Ada"
	c.Person().PhoneNumbers = append(c.Person().PhoneNumbers, &people.PhoneNumber{Value: "555"})

	c.Compact()

	assert.Len(t, c.Person().Names, 1)
	assert.Len(t, c.Person().PhoneNumbers, 1)
	assert.Equal(t, "555", c.Person().PhoneNumbers[0].Value)
	assert.Empty(t, c.Person().EmailAddresses)
	assert.Empty(t, c.Person().Memberships)
	assert.Empty(t, c.Person().Birthdays)
}

func TestParseFieldGroups(t *testing.T) {
	groups, err := ParseFieldGroups("phoneNumbers, names,names")
	require.NoError(t, err)
	assert.Equal(t, []FieldGroup{FieldNames, FieldPhoneNumbers}, groups)
	assert.Equal(t, "names,phoneNumbers", JoinFields(groups))

	_, err = ParseFieldGroups("names,favouriteColour")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestWritableFieldsDropsReadOnly(t *testing.T) {
	got := WritableFields(DetailFields)
	for _, g := range got {
		assert.False(t, g.ReadOnly(), "unexpected read-only group %s", g)
	}
	assert.NotContains(t, got, FieldPhotos)
	assert.NotContains(t, got, FieldMetadata)
	assert.Contains(t, got, FieldNames)
}
