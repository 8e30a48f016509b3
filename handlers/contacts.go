// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements list_contacts, search_contacts, get_contact and star_contact tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gcard/directory"
	"github.com/harperreed/gcard/models"
)

type ContactHandlers struct {
	contacts *directory.Contacts
	groups   *directory.Groups
}

func NewContactHandlers(contacts *directory.Contacts, groups *directory.Groups) *ContactHandlers {
	return &ContactHandlers{contacts: contacts, groups: groups}
}

type ContactOutput struct {
	ResourceName string   `json:"resource_name"`
	Etag         string   `json:"etag,omitempty"`
	DisplayName  string   `json:"display_name"`
	Emails       []string `json:"emails,omitempty"`
	Phones       []string `json:"phones,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Birthday     string   `json:"birthday,omitempty"`
	Starred      bool     `json:"starred"`
	Groups       []string `json:"groups,omitempty"`
}

func contactToOutput(c *models.Contact, groupNames map[string]string) ContactOutput {
	p := c.Person()
	output := ContactOutput{
		ResourceName: c.ResourceName(),
		Etag:         c.Etag(),
		DisplayName:  c.DisplayName(),
		Birthday:     c.DateOfBirthString(models.DefaultDateLayout),
		Starred:      c.IsStarred(),
	}
	for _, e := range p.EmailAddresses {
		if e != nil && e.Value != "" {
			output.Emails = append(output.Emails, e.Value)
		}
	}
	for _, ph := range p.PhoneNumbers {
		if ph != nil && ph.Value != "" {
			output.Phones = append(output.Phones, ph.Value)
		}
	}
	if len(p.Organizations) > 0 && p.Organizations[0] != nil {
		output.Organization = p.Organizations[0].Name
	}
	for _, rn := range c.Memberships() {
		if name, ok := groupNames[rn]; ok {
			output.Groups = append(output.Groups, name)
		} else {
			output.Groups = append(output.Groups, rn)
		}
	}
	return output
}

type ListContactsInput struct {
	Group string `json:"group,omitempty" jsonschema:"Only contacts in this group (name or contactGroups/ resource name)"`
	Sort  string `json:"sort,omitempty" jsonschema:"Sort order: last, first, modified or modified-desc (default last)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Total    int             `json:"total"`
}

func (h *ContactHandlers) ListContacts(ctx context.Context, _ *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, ContactsOutput, error) {
	sort, err := directory.ParseSortOrder(input.Sort)
	if err != nil {
		return nil, ContactsOutput{}, err
	}
	names, err := h.groups.Names(ctx, models.GroupTypeAll)
	if err != nil {
		return nil, ContactsOutput{}, fmt.Errorf("failed to load groups: %w", err)
	}

	group, err := resolveGroup(ctx, h.groups, input.Group)
	if err != nil {
		return nil, ContactsOutput{}, err
	}
	contacts, err := h.contacts.List(ctx, sort, group)
	if err != nil {
		return nil, ContactsOutput{}, fmt.Errorf("failed to list contacts: %w", err)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	output := ContactsOutput{Total: len(contacts), Contacts: []ContactOutput{}}
	for i, c := range contacts {
		if i >= limit {
			break
		}
		output.Contacts = append(output.Contacts, contactToOutput(c, names))
	}
	return nil, output, nil
}

type SearchContactsInput struct {
	Query string `json:"query" jsonschema:"Text matched against names, emails, phone numbers and organizations (required)"`
}

func (h *ContactHandlers) SearchContacts(ctx context.Context, _ *mcp.CallToolRequest, input SearchContactsInput) (*mcp.CallToolResult, ContactsOutput, error) {
	if input.Query == "" {
		return nil, ContactsOutput{}, fmt.Errorf("query is required")
	}
	contacts, err := h.contacts.Search(ctx, input.Query)
	if err != nil {
		return nil, ContactsOutput{}, fmt.Errorf("failed to search contacts: %w", err)
	}
	output := ContactsOutput{Total: len(contacts), Contacts: make([]ContactOutput, len(contacts))}
	for i, c := range contacts {
		output.Contacts[i] = contactToOutput(c, nil)
	}
	return nil, output, nil
}

type GetContactInput struct {
	ResourceName string `json:"resource_name" jsonschema:"Contact resource name such as people/c123 (required)"`
}

func (h *ContactHandlers) GetContact(ctx context.Context, _ *mcp.CallToolRequest, input GetContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ResourceName == "" {
		return nil, ContactOutput{}, fmt.Errorf("resource_name is required")
	}
	c, err := h.contacts.Get(ctx, input.ResourceName)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	names, err := h.groups.Names(ctx, models.GroupTypeAll)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to load groups: %w", err)
	}
	return nil, contactToOutput(c, names), nil
}

type StarContactInput struct {
	ResourceName string `json:"resource_name" jsonschema:"Contact resource name (required)"`
	Starred      *bool  `json:"starred,omitempty" jsonschema:"true to star, false to unstar (default true)"`
}

type StarContactOutput struct {
	ResourceName string `json:"resource_name"`
	Starred      bool   `json:"starred"`
}

func (h *ContactHandlers) StarContact(ctx context.Context, _ *mcp.CallToolRequest, input StarContactInput) (*mcp.CallToolResult, StarContactOutput, error) {
	if input.ResourceName == "" {
		return nil, StarContactOutput{}, fmt.Errorf("resource_name is required")
	}
	starred := input.Starred == nil || *input.Starred
	if err := h.contacts.SetStarred(ctx, input.ResourceName, starred); err != nil {
		return nil, StarContactOutput{}, err
	}
	return nil, StarContactOutput{ResourceName: input.ResourceName, Starred: starred}, nil
}

// resolveGroup accepts a group resource name or a group name.
func resolveGroup(ctx context.Context, groups *directory.Groups, group string) (string, error) {
	if group == "" || directory.IsGroupResource(group) {
		return group, nil
	}
	rn, err := groups.ResolveID(ctx, group)
	if err != nil {
		return "", fmt.Errorf("failed to resolve group: %w", err)
	}
	if rn == "" {
		return "", models.NewError(models.CodeNotFound, "resolve group", "no group named "+group)
	}
	return rn, nil
}
