// ABOUTME: Contact group model and system group identifiers
// ABOUTME: Converts People API contact groups into the flat Group type
package models

import (
	"strings"

	"google.golang.org/api/people/v1"
)

// GroupType filters group listings.
type GroupType string

const (
	GroupTypeAll    GroupType = ""
	GroupTypeUser   GroupType = "USER_CONTACT_GROUP"
	GroupTypeSystem GroupType = "SYSTEM_CONTACT_GROUP"
)

// ParseGroupType accepts "", all, user, system or the raw service values.
func ParseGroupType(s string) (GroupType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return GroupTypeAll, nil
	case "user", "user_contact_group":
		return GroupTypeUser, nil
	case "system", "system_contact_group":
		return GroupTypeSystem, nil
	}
	return "", NewError(CodeValidation, "parse group type", "unknown group type "+s)
}

// SystemGroups lists the fixed system group resource names.
var SystemGroups = []string{
	GroupStarred,
	GroupChatBuddies,
	GroupAll,
	GroupMyContacts,
	GroupFriends,
	GroupFamily,
	GroupCoworkers,
	GroupBlocked,
}

// Group is a named collection of contacts.
type Group struct {
	ResourceName        string    `json:"resource_name"`
	Etag                string    `json:"etag,omitempty"`
	Name                string    `json:"name"`
	FormattedName       string    `json:"formatted_name,omitempty"`
	Type                GroupType `json:"type"`
	MemberCount         int64     `json:"member_count"`
	MemberResourceNames []string  `json:"member_resource_names,omitempty"`
}

// GroupFromAPI converts a service contact group.
func GroupFromAPI(g *people.ContactGroup) Group {
	if g == nil {
		return Group{}
	}
	return Group{
		ResourceName:        g.ResourceName,
		Etag:                g.Etag,
		Name:                g.Name,
		FormattedName:       g.FormattedName,
		Type:                GroupType(g.GroupType),
		MemberCount:         g.MemberCount,
		MemberResourceNames: g.MemberResourceNames,
	}
}

// DisplayName prefers the localized formatted name.
func (g Group) DisplayName() string {
	if g.FormattedName != "" {
		return g.FormattedName
	}
	return g.Name
}

// IsSystem reports whether the group is owned by the service.
func (g Group) IsSystem() bool {
	if g.Type == GroupTypeSystem {
		return true
	}
	for _, rn := range SystemGroups {
		if rn == g.ResourceName {
			return true
		}
	}
	return false
}
