// ABOUTME: Google account login and logout commands
// ABOUTME: Runs the browser consent flow and manages the stored token
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/harperreed/gcard/auth"
	"github.com/harperreed/gcard/config"
)

// LoginCommand authorizes gcard against the user's Google contacts.
func LoginCommand(ctx context.Context, cfg *config.Config, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	noBrowser := fs.Bool("no-browser", false, "Only print the consent URL")
	_ = fs.Parse(args)

	oc, err := auth.NewOAuthConfig(cfg)
	if err != nil {
		return err
	}

	open := auth.OpenBrowser
	if *noBrowser {
		open = nil
	}
	if _, err := auth.Login(ctx, oc, auth.NewFileTokenStore(cfg.TokenPath), out, open); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ Logged in. Token saved to %s\n", cfg.TokenPath)
	return nil
}

// LogoutCommand removes the stored token.
func LogoutCommand(cfg *config.Config, out io.Writer) error {
	if err := auth.NewFileTokenStore(cfg.TokenPath).Delete(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "✓ Logged out")
	return nil
}
