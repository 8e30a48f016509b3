// ABOUTME: Shared wiring for CLI commands
// ABOUTME: Builds the authenticated People clients, run database and terminal helpers
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/auth"
	"github.com/harperreed/gcard/config"
	"github.com/harperreed/gcard/db"
	"github.com/harperreed/gcard/directory"
	"github.com/harperreed/gcard/logger"
	"github.com/harperreed/gcard/models"
	"github.com/harperreed/gcard/transfer"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// App carries what every command needs.
type App struct {
	Config      *config.Config
	Log         logrus.FieldLogger
	Contacts    *directory.Contacts
	Groups      *directory.Groups
	DB          *sql.DB
	Out         io.Writer
	In          io.Reader
	Interactive bool
}

// NewApp authenticates against the People API using the stored token.
func NewApp(ctx context.Context, cfg *config.Config, database *sql.DB) (*App, error) {
	log := logger.GetLogger()
	oc, err := auth.NewOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := auth.NewHTTPClient(ctx, oc, auth.NewFileTokenStore(cfg.TokenPath), log)
	if err != nil {
		return nil, err
	}
	svc, err := auth.NewPeopleService(ctx, client)
	if err != nil {
		return nil, err
	}
	app := NewAppWithService(cfg, svc, database, log)
	app.Interactive = term.IsTerminal(int(os.Stdin.Fd()))
	return app, nil
}

// NewAppWithService wires commands to an existing People service.
func NewAppWithService(cfg *config.Config, svc *people.Service, database *sql.DB, log logrus.FieldLogger) *App {
	return &App{
		Config:   cfg,
		Log:      log,
		Contacts: directory.NewContacts(svc, directory.WithLogger(log), directory.WithPageSize(cfg.PageSize)),
		Groups:   directory.NewGroups(svc, directory.WithLogger(log), directory.WithPageSize(cfg.GroupPageSize)),
		DB:       database,
		Out:      os.Stdout,
		In:       os.Stdin,
	}
}

func (a *App) recorder() transfer.RunRecorder {
	if a.DB == nil {
		return nil
	}
	return &db.Recorder{DB: a.DB}
}

func (a *App) exporter(charset string) *transfer.Exporter {
	if charset == "" {
		charset = a.Config.Charset
	}
	return transfer.NewExporter(a.Contacts, a.Groups, transfer.ExportConfig{
		Options:  a.Config.ExportOptions(),
		Charset:  charset,
		Recorder: a.recorder(),
		Log:      a.Log,
	})
}

func (a *App) importer(createGroup bool, groupName string) *transfer.Importer {
	return transfer.NewImporter(a.Contacts, a.Groups, transfer.ImportConfig{
		CreateImportGroup: createGroup,
		ImportGroup:       groupName,
		StarredCategory:   a.Config.StarredCategory,
		Recorder:          a.recorder(),
		Log:               a.Log,
	})
}

func (a *App) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

// confirm asks a yes/no question; non-interactive sessions must pass --yes instead.
func (a *App) confirm(prompt string) (bool, error) {
	if !a.Interactive {
		return false, fmt.Errorf("refusing to continue without --yes: stdin is not a terminal")
	}
	a.printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// resolveGroupArg accepts a group resource name or a group name.
func (a *App) resolveGroupArg(ctx context.Context, arg string) (string, error) {
	if arg == "" || directory.IsGroupResource(arg) {
		return arg, nil
	}
	rn, err := a.Groups.ResolveID(ctx, arg)
	if err != nil {
		return "", err
	}
	if rn == "" {
		return "", models.NewError(models.CodeNotFound, "resolve group", "no group named "+arg)
	}
	return rn, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func primaryEmail(c *models.Contact) string {
	emails := c.Person().EmailAddresses
	if i := c.PrimaryItemIndex(models.FieldEmailAddresses); i >= 0 {
		return emails[i].Value
	}
	for _, e := range emails {
		if e != nil && e.Value != "" {
			return e.Value
		}
	}
	return ""
}

func primaryPhone(c *models.Contact) string {
	phones := c.Person().PhoneNumbers
	if i := c.PrimaryItemIndex(models.FieldPhoneNumbers); i >= 0 {
		return phones[i].Value
	}
	for _, p := range phones {
		if p != nil && p.Value != "" {
			return p.Value
		}
	}
	return ""
}
