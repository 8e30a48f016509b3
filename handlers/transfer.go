// ABOUTME: Card export and run history MCP tool handlers
// ABOUTME: Implements export_vcard and transfer_history tools
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gcard/db"
	"github.com/harperreed/gcard/models"
	"github.com/harperreed/gcard/transfer"
)

type TransferHandlers struct {
	exporter *transfer.Exporter
	db       *sql.DB
}

func NewTransferHandlers(exporter *transfer.Exporter, database *sql.DB) *TransferHandlers {
	return &TransferHandlers{exporter: exporter, db: database}
}

type ExportVCardInput struct {
	Scope string `json:"scope,omitempty" jsonschema:"Empty for all contacts, a contactGroups/ resource name for its members, or a single people/ resource name"`
}

type ExportVCardOutput struct {
	RunID   string `json:"run_id"`
	Count   int    `json:"count"`
	Skipped int    `json:"skipped"`
	VCard   string `json:"vcard"`
}

func (h *TransferHandlers) ExportVCard(ctx context.Context, _ *mcp.CallToolRequest, input ExportVCardInput) (*mcp.CallToolResult, ExportVCardOutput, error) {
	var buf bytes.Buffer
	result, err := h.exporter.Export(ctx, &buf, input.Scope)
	if err != nil {
		return nil, ExportVCardOutput{}, fmt.Errorf("failed to export: %w", err)
	}
	return nil, ExportVCardOutput{
		RunID:   result.RunID,
		Count:   result.Count,
		Skipped: result.Skipped,
		VCard:   buf.String(),
	}, nil
}

type TransferHistoryInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"import or export (default both)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of runs (default 20)"`
}

type RunOutput struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	State        string `json:"state"`
	Count        int    `json:"count"`
	Scope        string `json:"scope,omitempty"`
	ImportGroup  string `json:"import_group,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at,omitempty"`
}

type TransferHistoryOutput struct {
	Runs []RunOutput `json:"runs"`
}

func runToOutput(run models.TransferRun) RunOutput {
	output := RunOutput{
		ID:           run.ID,
		Kind:         string(run.Kind),
		State:        string(run.State),
		Count:        run.Count,
		Scope:        run.Scope,
		ImportGroup:  run.ImportGroup,
		ErrorMessage: run.ErrorMessage,
		StartedAt:    run.StartedAt.Format(time.RFC3339),
	}
	if run.FinishedAt != nil {
		output.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	return output
}

func (h *TransferHandlers) TransferHistory(ctx context.Context, _ *mcp.CallToolRequest, input TransferHistoryInput) (*mcp.CallToolResult, TransferHistoryOutput, error) {
	kind := models.RunKind(input.Kind)
	if kind != "" && kind != models.RunImport && kind != models.RunExport {
		return nil, TransferHistoryOutput{}, fmt.Errorf("kind must be import or export")
	}
	runs, err := db.ListRuns(ctx, h.db, kind, input.Limit)
	if err != nil {
		return nil, TransferHistoryOutput{}, err
	}
	output := TransferHistoryOutput{Runs: make([]RunOutput, len(runs))}
	for i, run := range runs {
		output.Runs[i] = runToOutput(run)
	}
	return nil, output, nil
}
