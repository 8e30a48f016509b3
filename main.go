// ABOUTME: Entry point for the gcard CLI and MCP server
// ABOUTME: Routes to Google Contacts commands, vCard transfer or the MCP server
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/gcard/cli"
	"github.com/harperreed/gcard/config"
	"github.com/harperreed/gcard/db"
	"github.com/harperreed/gcard/logger"
	"github.com/harperreed/gcard/models"
)

const version = "0.1.0"

type command func(ctx context.Context, app *cli.App, args []string) error

var commands = map[string]command{
	"list":         cli.ListCommand,
	"search":       cli.SearchCommand,
	"show":         cli.ShowCommand,
	"save":         cli.SaveCommand,
	"delete":       cli.DeleteCommand,
	"star":         cli.StarCommand,
	"photo":        cli.PhotoCommand,
	"groups":       cli.GroupsCommand,
	"group":        cli.GroupCommand,
	"group-create": cli.GroupCreateCommand,
	"group-rename": cli.GroupRenameCommand,
	"group-delete": cli.GroupDeleteCommand,
	"import":       cli.ImportCommand,
	"export":       cli.ExportCommand,
	"history":      cli.HistoryCommand,
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Run history database path (default: ~/.local/share/gcard/gcard.db)")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("gcard version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, args[0], args[1:]); err != nil {
		stop()
		fail(err)
	}
}

func run(ctx context.Context, cfg *config.Config, name string, args []string) error {
	switch name {
	case "login":
		return cli.LoginCommand(ctx, cfg, os.Stdout, args)
	case "logout":
		return cli.LogoutCommand(cfg, os.Stdout)
	case "help":
		printUsage()
		return nil
	}

	cmd, ok := commands[name]
	if !ok && name != "mcp" {
		printUsage()
		return fmt.Errorf("unknown command: %s", name)
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func(d *sql.DB) { _ = d.Close() }(database)

	app, err := cli.NewApp(ctx, cfg, database)
	if err != nil {
		return err
	}

	if name == "mcp" {
		return cli.MCPCommand(ctx, app)
	}
	return cmd(ctx, app, args)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, models.ErrAuth) {
		fmt.Fprintln(os.Stderr, "Run 'gcard login' to authorize access to your Google contacts.")
	}
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`gcard v%s - Google Contacts from the terminal

USAGE:
  gcard [global flags] <command> [flags] [args]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Run history database (default: ~/.local/share/gcard/gcard.db)

ACCOUNT:
  gcard login [--no-browser]      Authorize access to Google contacts
  gcard logout                    Forget the stored token

CONTACTS:
  gcard list                      List contacts
    --group <name|resource>         Only members of a group
    --sort <order>                  last, first, modified, modified-desc
    --limit <n>                     Max rows (default: all)
  gcard search <query>            Search contacts (first 30 matches)
  gcard show [--json] <resource>  Show a contact
  gcard save --form <file|->      Create or update a contact from form fields
  gcard delete [--yes] <resource> Delete a contact
  gcard star [--off] <resource>   Star or unstar a contact
  gcard photo <resource> <url|file>
  gcard photo --delete <resource>

GROUPS:
  gcard groups [--type all|user|system] [--ids]
  gcard group create <name>
  gcard group rename <group> <new name>
  gcard group delete [--with-contacts] [--yes] <group>
  (group-create, group-rename and group-delete are aliases)

VCARD:
  gcard import <file.vcf|->       Import contacts
    --import-group <name>           Name of the import group
    --no-import-group               Do not group imported contacts
  gcard export                    Export contacts as vCard
    --scope <resource|group>        One contact or one group (default all)
    --charset <name>                Output charset (default UTF-8)
    -o <file>                       Output file (default stdout)
  gcard history [--kind import|export] [--limit n] [--run id]

MCP SERVER:
  gcard mcp                       Start MCP server (for Claude Desktop integration)

CONFIGURATION:
  GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET or GCARD_CLIENT_SECRETS_FILE
  GCARD_PAGE_SIZE, GCARD_CHARSET, GCARD_MAP_GROUPS, GCARD_LOG_LEVEL, ...
  Values may also be set in a .env file.
`, version)
}
