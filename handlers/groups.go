// ABOUTME: Contact group MCP tool handlers
// ABOUTME: Implements list_groups and create_group tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gcard/directory"
	"github.com/harperreed/gcard/models"
)

type GroupHandlers struct {
	groups *directory.Groups
}

func NewGroupHandlers(groups *directory.Groups) *GroupHandlers {
	return &GroupHandlers{groups: groups}
}

type ListGroupsInput struct {
	Type string `json:"type,omitempty" jsonschema:"Group type: all, user or system (default all)"`
}

type GroupsOutput struct {
	Groups []models.Group `json:"groups"`
}

func (h *GroupHandlers) ListGroups(ctx context.Context, _ *mcp.CallToolRequest, input ListGroupsInput) (*mcp.CallToolResult, GroupsOutput, error) {
	groupType, err := models.ParseGroupType(input.Type)
	if err != nil {
		return nil, GroupsOutput{}, err
	}
	groups, err := h.groups.List(ctx, groupType)
	if err != nil {
		return nil, GroupsOutput{}, fmt.Errorf("failed to list groups: %w", err)
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return nil, GroupsOutput{Groups: groups}, nil
}

type CreateGroupInput struct {
	Name string `json:"name" jsonschema:"Group name, unique per account (required)"`
}

func (h *GroupHandlers) CreateGroup(ctx context.Context, _ *mcp.CallToolRequest, input CreateGroupInput) (*mcp.CallToolResult, models.Group, error) {
	group, err := h.groups.Create(ctx, input.Name)
	if err != nil {
		return nil, models.Group{}, err
	}
	return nil, group, nil
}
