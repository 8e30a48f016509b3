// ABOUTME: MCP server assembly
// ABOUTME: Registers the contact, group and transfer tools plus read-only resources
package handlers

import (
	"database/sql"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gcard/directory"
	"github.com/harperreed/gcard/transfer"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// NewServer builds an MCP server over the given clients.
func NewServer(contacts *directory.Contacts, groups *directory.Groups, exporter *transfer.Exporter, database *sql.DB) *mcp.Server {
	contactHandlers := NewContactHandlers(contacts, groups)
	groupHandlers := NewGroupHandlers(groups)
	transferHandlers := NewTransferHandlers(exporter, database)
	resourceHandlers := NewResourceHandlers(groups, database)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "gcard",
		Version: Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List Google contacts, optionally only the members of one group",
	}, contactHandlers.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_contacts",
		Description: "Search Google contacts by name, email, phone or organization (at most 30 results)",
	}, contactHandlers.SearchContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contact",
		Description: "Get one contact by resource name",
	}, contactHandlers.GetContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "star_contact",
		Description: "Star or unstar a contact",
	}, contactHandlers.StarContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_groups",
		Description: "List contact groups with member counts",
	}, groupHandlers.ListGroups)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_group",
		Description: "Create a user contact group",
	}, groupHandlers.CreateGroup)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_vcard",
		Description: "Export contacts as vCard 3.0 text",
	}, transferHandlers.ExportVCard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "transfer_history",
		Description: "List recent vCard import and export runs",
	}, transferHandlers.TransferHistory)

	server.AddResource(&mcp.Resource{
		URI:         GroupsURI,
		Name:        "groups",
		Description: "All contact groups",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadGroups)

	server.AddResource(&mcp.Resource{
		URI:         HistoryURI,
		Name:        "history",
		Description: "Recent import and export runs",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadHistory)

	return server
}
