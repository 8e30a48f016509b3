// ABOUTME: Tests for the contact group client against the fake People API
// ABOUTME: Covers listing, name resolution, conflicts, renames, deletes and membership
package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/directory/peopletest"
	"github.com/harperreed/gcard/logger"
	"github.com/harperreed/gcard/models"
)

func setupGroups(t *testing.T, opts ...Option) (*peopletest.Server, *Groups) {
	t.Helper()
	srv := peopletest.New(t)
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	return srv, NewGroups(srv.Service(t), opts...)
}

func TestGroupsListAndFilter(t *testing.T) {
	srv, groups := setupGroups(t, WithPageSize(1))
	srv.AddGroup("Friends")
	srv.AddGroup("Work")

	all, err := groups.List(context.Background(), models.GroupTypeAll)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	user, err := groups.List(context.Background(), models.GroupTypeUser)
	require.NoError(t, err)
	require.Len(t, user, 2)
	assert.Equal(t, "Friends", user[0].Name)

	system, err := groups.List(context.Background(), models.GroupTypeSystem)
	require.NoError(t, err)
	require.Len(t, system, 2)
	assert.True(t, system[0].IsSystem())
}

func TestGroupsNames(t *testing.T) {
	srv, groups := setupGroups(t)
	rn := srv.AddGroup("Friends")

	names, err := groups.Names(context.Background(), models.GroupTypeAll)
	require.NoError(t, err)
	assert.Equal(t, "Friends", names[rn])
	assert.Equal(t, "Starred", names[models.GroupStarred])
}

func TestResolveID(t *testing.T) {
	srv, groups := setupGroups(t)
	rn := srv.AddGroup("Friends")

	got, err := groups.ResolveID(context.Background(), "Friends")
	require.NoError(t, err)
	assert.Equal(t, rn, got)

	got, err = groups.ResolveID(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestCreateGroupConflict(t *testing.T) {
	srv, groups := setupGroups(t)

	created, err := groups.Create(context.Background(), "  Book Club ")
	require.NoError(t, err)
	assert.Equal(t, "Book Club", created.Name)
	assert.Equal(t, models.GroupTypeUser, created.Type)
	assert.Equal(t, created.ResourceName, srv.GroupByName("Book Club"))

	_, err = groups.Create(context.Background(), "Book Club")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConflict))

	_, err = groups.Create(context.Background(), " ")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestRenameGroup(t *testing.T) {
	srv, groups := setupGroups(t)
	rn := srv.AddGroup("Friends")

	renamed, err := groups.Rename(context.Background(), rn, "Close Friends")
	require.NoError(t, err)
	assert.Equal(t, "Close Friends", renamed.Name)
	assert.Equal(t, "Close Friends", srv.Group(rn).Name)

	_, err = groups.Rename(context.Background(), models.GroupStarred, "Faves")
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = groups.Rename(context.Background(), "contactGroups/missing", "X")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDeleteGroupKeepsOrRemovesMembers(t *testing.T) {
	srv, groups := setupGroups(t)
	keep := srv.AddGroup("Keep")
	drop := srv.AddGroup("Drop")
	a := srv.AddContact(person("Ada"))
	b := srv.AddContact(person("Grace"))
	require.NoError(t, groups.AddMembers(context.Background(), keep, a))
	require.NoError(t, groups.AddMembers(context.Background(), drop, b))

	require.NoError(t, groups.Delete(context.Background(), keep, false))
	assert.Nil(t, srv.Group(keep))
	require.NotNil(t, srv.Contact(a))
	assert.Empty(t, srv.Contact(a).Memberships)

	require.NoError(t, groups.Delete(context.Background(), drop, true))
	assert.Nil(t, srv.Contact(b))
	assert.Equal(t, 1, srv.ContactCount())

	err := groups.Delete(context.Background(), models.GroupMyContacts, false)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestGetGroupMembers(t *testing.T) {
	srv, groups := setupGroups(t)
	rn := srv.AddGroup("Friends")
	a := srv.AddContact(person("Ada"))
	b := srv.AddContact(person("Grace"))
	require.NoError(t, groups.AddMembers(context.Background(), rn, a, b))

	g, err := groups.Get(context.Background(), rn, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), g.MemberCount)
	assert.Equal(t, []string{a}, g.MemberResourceNames)

	require.NoError(t, groups.RemoveMembers(context.Background(), rn, a))
	assert.Equal(t, int64(1), srv.Group(rn).MemberCount)
}

func TestModifyMembersReportsUnknownContacts(t *testing.T) {
	srv, groups := setupGroups(t)
	rn := srv.AddGroup("Friends")

	err := groups.AddMembers(context.Background(), rn, "people/ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Contains(t, err.Error(), "people/ghost")

	assert.NoError(t, groups.AddMembers(context.Background(), rn))
}

func TestFindGroup(t *testing.T) {
	list := []models.Group{
		models.GroupFromAPI(&people.ContactGroup{ResourceName: "contactGroups/starred", Name: "starred", FormattedName: "Starred"}),
		models.GroupFromAPI(&people.ContactGroup{ResourceName: "contactGroups/g1", Name: "Friends"}),
	}
	assert.Equal(t, "contactGroups/starred", FindGroup(list, "Starred"))
	assert.Equal(t, "contactGroups/g1", FindGroup(list, "Friends"))
	assert.Equal(t, "", FindGroup(list, "Enemies"))
}
