// ABOUTME: Contact CLI commands
// ABOUTME: list, search, show, save, delete, star and photo
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/gcard/directory"
	"github.com/harperreed/gcard/mapping"
	"github.com/harperreed/gcard/models"
)

func (a *App) printContactTable(contacts []*models.Contact) {
	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tSTAR\tRESOURCE")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t----\t--------")
	for _, c := range contacts {
		star := ""
		if c.IsStarred() {
			star = "★"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.DisplayName(), dash(primaryEmail(c)), dash(primaryPhone(c)), star, c.ResourceName())
	}
	_ = w.Flush()
}

// ListCommand lists contacts.
func ListCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	group := fs.String("group", "", "Only members of this group (name or resource name)")
	sortFlag := fs.String("sort", "last", "Sort order: last, first, modified, modified-desc")
	limit := fs.Int("limit", 0, "Maximum results (0 for all)")
	_ = fs.Parse(args)

	sort, err := directory.ParseSortOrder(*sortFlag)
	if err != nil {
		return err
	}
	groupRN, err := app.resolveGroupArg(ctx, *group)
	if err != nil {
		return err
	}

	contacts, err := app.Contacts.List(ctx, sort, groupRN)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}
	if len(contacts) == 0 {
		app.printf("No contacts found\n")
		return nil
	}
	total := len(contacts)
	if *limit > 0 && len(contacts) > *limit {
		contacts = contacts[:*limit]
	}

	app.printContactTable(contacts)
	app.printf("\n%s\n", mutedStyle.Render(fmt.Sprintf("%d of %d contacts", len(contacts), total)))
	return nil
}

// SearchCommand searches contacts.
func SearchCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	_ = fs.Parse(args)

	query := strings.Join(fs.Args(), " ")
	if query == "" {
		return fmt.Errorf("usage: gcard search <query>")
	}

	contacts, err := app.Contacts.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to search contacts: %w", err)
	}
	if len(contacts) == 0 {
		app.printf("No contacts match %q\n", query)
		return nil
	}
	app.printContactTable(contacts)
	if len(contacts) == directory.MaxSearchPageSize {
		app.printf("\n%s\n", mutedStyle.Render("Showing the first results only; refine the query to see others."))
	}
	return nil
}

// ShowCommand prints one contact.
func ShowCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the raw person JSON")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: gcard show [--json] <resource>")
	}
	c, err := app.Contacts.Get(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	if *asJSON {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode contact: %w", err)
		}
		app.printf("%s\n", data)
		return nil
	}

	names, err := app.Groups.Names(ctx, models.GroupTypeAll)
	if err != nil {
		return fmt.Errorf("failed to load groups: %w", err)
	}

	p := c.Person()
	app.printf("%s\n", headingStyle.Render(c.DisplayName()))
	field := func(label, value string) {
		if value != "" {
			app.printf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label+":")), value)
		}
	}
	field("Resource", c.ResourceName())
	if len(p.Organizations) > 0 && p.Organizations[0] != nil {
		org := p.Organizations[0]
		field("Company", strings.TrimSpace(org.Name+" "+org.Department))
		field("Title", org.Title)
	}
	for i, e := range p.EmailAddresses {
		if e == nil {
			continue
		}
		field("Email", entryLabel(e.Value, e.Type, c.IsPrimary(models.FieldEmailAddresses, i)))
	}
	for i, ph := range p.PhoneNumbers {
		if ph == nil {
			continue
		}
		field("Phone", entryLabel(ph.Value, ph.Type, c.IsPrimary(models.FieldPhoneNumbers, i)))
	}
	for i, addr := range p.Addresses {
		if addr == nil {
			continue
		}
		value := addr.FormattedValue
		if value == "" {
			value = strings.Join(nonEmpty(addr.StreetAddress, addr.PostalCode+" "+addr.City, addr.Country), ", ")
		}
		field("Address", entryLabel(value, addr.Type, c.IsPrimary(models.FieldAddresses, i)))
	}
	for _, u := range p.Urls {
		if u != nil {
			field("URL", u.Value)
		}
	}
	field("Birthday", c.DateOfBirthString(models.DefaultDateLayout))
	var groups []string
	for _, rn := range c.Memberships() {
		if name, ok := names[rn]; ok {
			groups = append(groups, name)
		}
	}
	field("Groups", strings.Join(groups, ", "))
	if len(p.Biographies) > 0 && p.Biographies[0] != nil {
		field("Notes", p.Biographies[0].Value)
	}
	field("Etag", c.Etag())
	return nil
}

func entryLabel(value, typ string, primary bool) string {
	if typ != "" {
		value += " (" + typ + ")"
	}
	if primary {
		value += " *"
	}
	return value
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SaveCommand creates or updates a contact from url-encoded form fields.
func SaveCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	formFile := fs.String("form", "", "File with url-encoded form fields, - for stdin (required)")
	_ = fs.Parse(args)

	if *formFile == "" {
		return fmt.Errorf("--form is required")
	}
	var raw []byte
	var err error
	if *formFile == "-" {
		raw, err = io.ReadAll(app.In)
	} else {
		raw, err = os.ReadFile(*formFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read form: %w", err)
	}
	values, err := url.ParseQuery(strings.TrimSpace(string(raw)))
	if err != nil {
		return models.WrapError(models.CodeParse, "parse form", err)
	}

	contact, err := mapping.DecodeForm(values)
	if err != nil {
		return err
	}

	if rn := contact.ResourceName(); rn != "" {
		updated, err := app.Contacts.Update(ctx, rn, contact.Etag(), contact)
		if err != nil {
			return err
		}
		app.printf("✓ Contact updated: %s (%s)\n", updated.DisplayName(), updated.ResourceName())
		return nil
	}

	created, err := app.Contacts.Create(ctx, contact)
	if err != nil {
		return err
	}
	app.printf("✓ Contact created: %s (%s)\n", created.DisplayName(), created.ResourceName())
	return nil
}

// DeleteCommand deletes a contact.
func DeleteCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: gcard delete [--yes] <resource>")
	}
	rn := fs.Arg(0)

	c, err := app.Contacts.Get(ctx, rn)
	if err != nil {
		return err
	}
	if !*yes {
		ok, err := app.confirm(fmt.Sprintf("Delete %s?", c.DisplayName()))
		if err != nil {
			return err
		}
		if !ok {
			app.printf("Cancelled\n")
			return nil
		}
	}

	if err := app.Contacts.Delete(ctx, rn); err != nil {
		return err
	}
	app.printf("✓ Contact deleted: %s\n", c.DisplayName())
	return nil
}

// StarCommand stars or unstars a contact.
func StarCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("star", flag.ExitOnError)
	off := fs.Bool("off", false, "Unstar instead")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: gcard star [--off] <resource>")
	}
	if err := app.Contacts.SetStarred(ctx, fs.Arg(0), !*off); err != nil {
		return err
	}
	if *off {
		app.printf("✓ Unstarred %s\n", fs.Arg(0))
	} else {
		app.printf("✓ Starred %s\n", fs.Arg(0))
	}
	return nil
}

// PhotoCommand sets or removes a contact photo.
func PhotoCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("photo", flag.ExitOnError)
	remove := fs.Bool("delete", false, "Remove the photo")
	_ = fs.Parse(args)

	if *remove {
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: gcard photo --delete <resource>")
		}
		if err := app.Contacts.DeletePhoto(ctx, fs.Arg(0)); err != nil {
			return err
		}
		app.printf("✓ Photo removed from %s\n", fs.Arg(0))
		return nil
	}

	if fs.NArg() != 2 {
		return fmt.Errorf("usage: gcard photo <resource> <url|file>")
	}
	if err := app.Contacts.SetPhoto(ctx, fs.Arg(0), fs.Arg(1)); err != nil {
		return err
	}
	app.printf("✓ Photo set for %s\n", fs.Arg(0))
	return nil
}
