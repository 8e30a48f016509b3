// ABOUTME: MCP resource handlers exposing groups and transfer history
// ABOUTME: Serves read-only JSON under the gcard:// scheme
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gcard/db"
	"github.com/harperreed/gcard/directory"
	"github.com/harperreed/gcard/models"
)

const (
	GroupsURI  = "gcard://groups"
	HistoryURI = "gcard://history"
)

type ResourceHandlers struct {
	groups *directory.Groups
	db     *sql.DB
}

func NewResourceHandlers(groups *directory.Groups, database *sql.DB) *ResourceHandlers {
	return &ResourceHandlers{groups: groups, db: database}
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

// ReadGroups serves every contact group.
func (h *ResourceHandlers) ReadGroups(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	groups, err := h.groups.List(ctx, models.GroupTypeAll)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %w", err)
	}
	return jsonResource(GroupsURI, groups)
}

// ReadHistory serves the latest import and export runs.
func (h *ResourceHandlers) ReadHistory(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	runs, err := db.ListRuns(ctx, h.db, "", 50)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return jsonResource(HistoryURI, runs)
}
