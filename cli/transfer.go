// ABOUTME: vCard import/export CLI commands and the transfer run history
// ABOUTME: Reads cards from a file or stdin and writes cards to a file or stdout
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/gcard/db"
	"github.com/harperreed/gcard/models"
)

// ImportCommand creates contacts from a vCard file.
func ImportCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	groupName := fs.String("import-group", "", "Name of the group that receives the imported contacts")
	noGroup := fs.Bool("no-import-group", false, "Do not create an import group")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: gcard import [--import-group name] [--no-import-group] <file.vcf|->")
	}

	var in io.Reader = app.In
	if path := fs.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	createGroup := app.Config.CreateImportGroup && !*noGroup
	if *groupName != "" {
		createGroup = true
	}

	result, err := app.importer(createGroup, *groupName).Import(ctx, in)
	if result != nil && result.Count > 0 {
		app.printf("✓ Imported %d contacts\n", result.Count)
	}
	if err != nil {
		if result != nil && result.LastResource != "" {
			app.printf("%s\n", mutedStyle.Render("Last created contact: "+result.LastResource))
		}
		return fmt.Errorf("import stopped: %w", err)
	}
	if result.ImportGroup != "" {
		app.printf("  Group: %s (%s)\n", result.ImportGroup, result.ImportGroupID)
	}
	app.printf("  Run: %s\n", result.RunID)
	return nil
}

// ExportCommand writes contacts as vCards.
func ExportCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	scope := fs.String("scope", "", "Contact resource name, group name or group resource name (default all)")
	charset := fs.String("charset", "", "Output charset (default from config)")
	output := fs.String("o", "", "Output file (default stdout)")
	_ = fs.Parse(args)

	target := *scope
	if target != "" && !isContactResource(target) {
		rn, err := app.resolveGroupArg(ctx, target)
		if err != nil {
			return err
		}
		target = rn
	}

	w := app.Out
	var f *os.File
	if *output != "" {
		var err error
		f, err = os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *output, err)
		}
		w = f
	}

	result, err := app.exporter(*charset).Export(ctx, w, target)
	if f != nil {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", *output, cerr)
		}
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if f != nil {
		app.printf("✓ Exported %d contacts to %s\n", result.Count, *output)
		if result.Skipped > 0 {
			app.printf("  Skipped %d contacts without a name\n", result.Skipped)
		}
	}
	return nil
}

func isContactResource(s string) bool {
	return strings.HasPrefix(s, "people/")
}

// HistoryCommand lists recorded transfer runs, or the items of one run.
func HistoryCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	kind := fs.String("kind", "", "Only import or export runs")
	limit := fs.Int("limit", 20, "Maximum runs")
	runID := fs.String("run", "", "Show the items of one run")
	_ = fs.Parse(args)

	if app.DB == nil {
		return fmt.Errorf("run history is not available without a database")
	}

	if *runID != "" {
		return showRun(ctx, app, *runID)
	}

	k := models.RunKind(*kind)
	if k != "" && k != models.RunImport && k != models.RunExport {
		return fmt.Errorf("--kind must be import or export")
	}
	runs, err := db.ListRuns(ctx, app.DB, k, *limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		app.printf("No transfer runs recorded\n")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RUN\tKIND\tSTATE\tCOUNT\tSTARTED\tSCOPE")
	_, _ = fmt.Fprintln(w, "---\t----\t-----\t-----\t-------\t-----")
	for _, run := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID, run.Kind, run.State, run.Count, run.StartedAt.Local().Format(time.DateTime), dash(run.Scope))
	}
	_ = w.Flush()
	return nil
}

func showRun(ctx context.Context, app *App, id string) error {
	run, err := db.GetRun(ctx, app.DB, id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return models.NewError(models.CodeNotFound, "show run", "no run "+id)
	}

	app.printf("%s\n", headingStyle.Render(fmt.Sprintf("%s %s", run.Kind, run.ID)))
	app.printf("  %s %s\n", labelStyle.Render("State:"), run.State)
	app.printf("  %s %d\n", labelStyle.Render("Count:"), run.Count)
	if run.ImportGroup != "" {
		app.printf("  %s %s\n", labelStyle.Render("Group:"), run.ImportGroup)
	}
	if run.ErrorMessage != "" {
		app.printf("  %s %s\n", labelStyle.Render("Error:"), run.ErrorMessage)
	}

	items, err := db.ListRunItems(ctx, app.DB, id)
	if err != nil {
		return fmt.Errorf("failed to list run items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}
	app.printf("\n")
	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STATUS\tNAME\tRESOURCE\tDETAIL")
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.Status, dash(item.DisplayName), dash(item.ResourceName), item.Detail)
	}
	_ = w.Flush()
	return nil
}
