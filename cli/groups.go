// ABOUTME: Contact group CLI commands
// ABOUTME: list, create, rename and delete groups
package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/gcard/models"
)

// GroupsCommand lists contact groups.
func GroupsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("groups", flag.ExitOnError)
	typeFlag := fs.String("type", "user", "Group type: all, user, system")
	ids := fs.Bool("ids", false, "Only print resource names and names")
	_ = fs.Parse(args)

	typ, err := models.ParseGroupType(*typeFlag)
	if err != nil {
		return err
	}

	if *ids {
		names, err := app.Groups.Names(ctx, typ)
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}
		keys := make([]string, 0, len(names))
		for rn := range names {
			keys = append(keys, rn)
		}
		sort.Strings(keys)
		for _, rn := range keys {
			app.printf("%s\t%s\n", rn, names[rn])
		}
		return nil
	}
	groups, err := app.Groups.List(ctx, typ)
	if err != nil {
		return fmt.Errorf("failed to list groups: %w", err)
	}
	if len(groups) == 0 {
		app.printf("No groups found\n")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tMEMBERS\tTYPE\tRESOURCE")
	_, _ = fmt.Fprintln(w, "----\t-------\t----\t--------")
	for _, g := range groups {
		kind := "user"
		if g.IsSystem() {
			kind = "system"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", g.DisplayName(), g.MemberCount, kind, g.ResourceName)
	}
	_ = w.Flush()
	return nil
}

// GroupCreateCommand creates a user group.
func GroupCreateCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("group-create", flag.ExitOnError)
	_ = fs.Parse(args)

	name := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if name == "" {
		return fmt.Errorf("usage: gcard group create <name>")
	}
	g, err := app.Groups.Create(ctx, name)
	if err != nil {
		return err
	}
	app.printf("✓ Group created: %s (%s)\n", g.Name, g.ResourceName)
	return nil
}

// GroupRenameCommand renames a user group.
func GroupRenameCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("group-rename", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: gcard group rename <group> <new name>")
	}
	rn, err := app.resolveGroupArg(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	g, err := app.Groups.Rename(ctx, rn, strings.Join(fs.Args()[1:], " "))
	if err != nil {
		return err
	}
	app.printf("✓ Group renamed: %s (%s)\n", g.Name, g.ResourceName)
	return nil
}

// GroupDeleteCommand deletes a user group.
func GroupDeleteCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("group-delete", flag.ExitOnError)
	withContacts := fs.Bool("with-contacts", false, "Also delete every contact in the group")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: gcard group delete [--with-contacts] [--yes] <group>")
	}
	rn, err := app.resolveGroupArg(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	if !*yes {
		prompt := fmt.Sprintf("Delete group %s?", fs.Arg(0))
		if *withContacts {
			prompt = fmt.Sprintf("Delete group %s and all of its contacts?", fs.Arg(0))
		}
		ok, err := app.confirm(prompt)
		if err != nil {
			return err
		}
		if !ok {
			app.printf("Cancelled\n")
			return nil
		}
	}

	if err := app.Groups.Delete(ctx, rn, *withContacts); err != nil {
		return err
	}
	app.printf("✓ Group deleted: %s\n", rn)
	return nil
}

// GroupCommand dispatches group subcommands.
func GroupCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return GroupsCommand(ctx, app, nil)
	}
	switch args[0] {
	case "list":
		return GroupsCommand(ctx, app, args[1:])
	case "create":
		return GroupCreateCommand(ctx, app, args[1:])
	case "rename":
		return GroupRenameCommand(ctx, app, args[1:])
	case "delete":
		return GroupDeleteCommand(ctx, app, args[1:])
	}
	return fmt.Errorf("unknown group command: %s", args[0])
}
