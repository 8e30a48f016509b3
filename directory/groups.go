// ABOUTME: Contact group registry client over the People API
// ABOUTME: Paged listing, name resolution, create/rename/delete and membership changes
package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/models"
)

const groupFields = "name,groupType,memberCount,metadata"

// GroupResourcePrefix starts every contact group resource name.
const GroupResourcePrefix = "contactGroups/"

// IsGroupResource reports whether s is a contact group resource name.
func IsGroupResource(s string) bool {
	return strings.HasPrefix(s, GroupResourcePrefix)
}

// Groups is the contact group client.
type Groups struct {
	svc *people.Service
	options
}

// NewGroups creates a group client.
func NewGroups(svc *people.Service, opts ...Option) *Groups {
	return &Groups{svc: svc, options: buildOptions(DefaultGroupPageSize, MaxGroupPageSize, opts)}
}

// List returns all groups of the given type ("" for all), skipping deleted ones.
func (g *Groups) List(ctx context.Context, typeFilter models.GroupType) ([]models.Group, error) {
	var out []models.Group
	pageToken := ""
	for {
		call := g.svc.ContactGroups.List().
			GroupFields(groupFields).
			PageSize(g.pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, classify("list groups", err)
		}

		for _, cg := range resp.ContactGroups {
			if cg.Metadata != nil && cg.Metadata.Deleted {
				continue
			}
			group := models.GroupFromAPI(cg)
			if typeFilter != models.GroupTypeAll && group.Type != typeFilter {
				continue
			}
			out = append(out, group)
		}

		if resp.NextPageToken == "" {
			break
		}
		if resp.NextPageToken == pageToken {
			return nil, models.NewError(models.CodeRemoteAPI, "list groups", "service repeated page token "+pageToken)
		}
		pageToken = resp.NextPageToken
	}

	g.log.WithFields(logrus.Fields{"type": typeFilter, "groups": len(out)}).Debug("listed groups")
	return out, nil
}

// Names returns resourceName -> display name for the given type.
func (g *Groups) Names(ctx context.Context, typeFilter models.GroupType) (map[string]string, error) {
	groups, err := g.List(ctx, typeFilter)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(groups))
	for _, group := range groups {
		names[group.ResourceName] = group.DisplayName()
	}
	return names, nil
}

// Get fetches a group including up to maxMembers member resource names.
func (g *Groups) Get(ctx context.Context, resourceName string, maxMembers int64) (models.Group, error) {
	call := g.svc.ContactGroups.Get(resourceName).GroupFields(groupFields).Context(ctx)
	if maxMembers > 0 {
		call = call.MaxMembers(maxMembers)
	}
	cg, err := call.Do()
	if err != nil {
		return models.Group{}, classify("get group "+resourceName, err)
	}
	return models.GroupFromAPI(cg), nil
}

// ResolveID returns the resource name of the group called name, "" when there is none.
func (g *Groups) ResolveID(ctx context.Context, name string) (string, error) {
	groups, err := g.List(ctx, models.GroupTypeAll)
	if err != nil {
		return "", err
	}
	return FindGroup(groups, name), nil
}

// FindGroup looks a group up by name or formatted name.
func FindGroup(groups []models.Group, name string) string {
	for _, group := range groups {
		if group.Name == name || group.FormattedName == name {
			return group.ResourceName
		}
	}
	return ""
}

func validGroupName(op, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.NewError(models.CodeValidation, op, "group name is required")
	}
	return name, nil
}

// Create adds a user group. A duplicate name is a conflict.
func (g *Groups) Create(ctx context.Context, name string) (models.Group, error) {
	name, err := validGroupName("create group", name)
	if err != nil {
		return models.Group{}, err
	}
	req := &people.CreateContactGroupRequest{ContactGroup: &people.ContactGroup{Name: name}}
	cg, err := g.svc.ContactGroups.Create(req).Context(ctx).Do()
	if err != nil {
		return models.Group{}, classify("create group "+name, err)
	}
	g.log.WithFields(logrus.Fields{"resource": cg.ResourceName, "name": name}).Info("created group")
	return models.GroupFromAPI(cg), nil
}

// Rename changes the name of a user group.
func (g *Groups) Rename(ctx context.Context, resourceName, name string) (models.Group, error) {
	name, err := validGroupName("rename group", name)
	if err != nil {
		return models.Group{}, err
	}
	current, err := g.Get(ctx, resourceName, 0)
	if err != nil {
		return models.Group{}, err
	}
	if current.IsSystem() {
		return models.Group{}, models.NewError(models.CodeValidation, "rename group", "system groups cannot be renamed")
	}

	req := &people.UpdateContactGroupRequest{
		ContactGroup:      &people.ContactGroup{ResourceName: resourceName, Etag: current.Etag, Name: name},
		UpdateGroupFields: "name",
	}
	cg, err := g.svc.ContactGroups.Update(resourceName, req).Context(ctx).Do()
	if err != nil {
		return models.Group{}, classify("rename group "+resourceName, err)
	}
	g.log.WithFields(logrus.Fields{"resource": resourceName, "name": name}).Info("renamed group")
	return models.GroupFromAPI(cg), nil
}

// Delete removes a user group; deleteMembers also deletes every member contact.
func (g *Groups) Delete(ctx context.Context, resourceName string, deleteMembers bool) error {
	for _, rn := range models.SystemGroups {
		if rn == resourceName {
			return models.NewError(models.CodeValidation, "delete group", "system groups cannot be deleted")
		}
	}
	if _, err := g.svc.ContactGroups.Delete(resourceName).DeleteContacts(deleteMembers).Context(ctx).Do(); err != nil {
		return classify("delete group "+resourceName, err)
	}
	g.log.WithFields(logrus.Fields{"resource": resourceName, "delete_members": deleteMembers}).Info("deleted group")
	return nil
}

// AddMembers puts contacts into a group.
func (g *Groups) AddMembers(ctx context.Context, resourceName string, members ...string) error {
	return modifyMembers(ctx, g.svc, resourceName, members, nil)
}

// RemoveMembers takes contacts out of a group.
func (g *Groups) RemoveMembers(ctx context.Context, resourceName string, members ...string) error {
	return modifyMembers(ctx, g.svc, resourceName, nil, members)
}

func modifyMembers(ctx context.Context, svc *people.Service, group string, add, remove []string) error {
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}
	req := &people.ModifyContactGroupMembersRequest{ResourceNamesToAdd: add, ResourceNamesToRemove: remove}
	resp, err := svc.ContactGroups.Members.Modify(group, req).Context(ctx).Do()
	if err != nil {
		return classify("modify members of "+group, err)
	}
	if len(resp.NotFoundResourceNames) > 0 {
		return models.NewError(models.CodeNotFound, "modify members of "+group,
			fmt.Sprintf("contacts not found: %s", strings.Join(resp.NotFoundResourceNames, ", ")))
	}
	return nil
}
