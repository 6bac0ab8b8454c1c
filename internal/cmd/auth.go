package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/promptflow/promptflow/internal/auth"
	"github.com/promptflow/promptflow/internal/ui"
	"github.com/promptflow/promptflow/pkg/sdk"
	sdkauth "github.com/promptflow/promptflow/pkg/sdk/auth"
	sdkerrors "github.com/promptflow/promptflow/pkg/sdk/errors"
)

func newAuthCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
	}
	cmd.AddCommand(newLoginCmd(o), newLogoutCmd(o), newStatusCmd(o))
	return cmd
}

// readToken reads a token from in, without echo when in is a terminal.
func readToken(cmd *cobra.Command, in io.Reader) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Paste your access token: ")

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newLoginCmd(o *rootOptions) *cobra.Command {
	var (
		email     string
		noBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token for the PromptFlow API",
		Long: `Store an access token for the PromptFlow API.

Opens the PromptFlow sign-in page in your browser. After signing in, copy
the access token shown there and paste it at the prompt. Pass --token to
skip the browser, e.g. in CI.

The token is checked against the server before it is saved to
~/.promptflow/credentials.json (mode 0600).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			noColor := o.colorDisabled(cfg)
			stderr := cmd.ErrOrStderr()

			token := strings.TrimSpace(cfg.Token)
			if token == "" {
				loginURL, err := auth.LoginURL(cfg.ServerURL)
				if err != nil {
					return err
				}
				fmt.Fprintf(stderr, "Sign in at:\n\n  %s\n\n", loginURL)
				if !noBrowser {
					if err := auth.OpenBrowser(loginURL); err != nil {
						fmt.Fprintf(stderr, "Note: %v\n\n", err)
					}
				}

				token, err = readToken(cmd, cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			if token == "" {
				return fmt.Errorf("no token provided")
			}

			client, err := sdk.New(sdk.Config{
				ServerURL: cfg.ServerURL,
				Tokens:    sdkauth.StaticToken(token),
				Logger:    newLogger(cfg, stderr),
			})
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := requestContext(cmd, cfg)
			defer cancel()

			if _, err := client.Chats.List(ctx); err != nil {
				if sdkerrors.IsUnauthorized(err) {
					return fmt.Errorf("the server rejected this token")
				}
				return fmt.Errorf("failed to verify token: %w", err)
			}

			path, err := credentialsPath(cfg)
			if err != nil {
				return err
			}
			creds := &auth.Credentials{
				AccessToken: token,
				UserEmail:   email,
				ServerURL:   cfg.ServerURL,
				SavedAt:     time.Now().UTC(),
			}
			if err := auth.Save(creds, path); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Logged in to "+cfg.ServerURL, noColor))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email to show in auth status")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the sign-in page")
	return cmd
}

func newLogoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			path, err := credentialsPath(cfg)
			if err != nil {
				return err
			}
			if err := auth.Remove(path); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Logged out successfully", o.colorDisabled(cfg)))
			return nil
		},
	}
}

func newStatusCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if cfg.Token != "" {
				fmt.Fprintf(w, "Using token from flag or environment: %s\n", maskToken(cfg.Token))
				return nil
			}

			path, err := credentialsPath(cfg)
			if err != nil {
				return err
			}
			creds, err := auth.Load(path)
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(w, "Not logged in. Run: promptflow auth login")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(w, "Logged in")
			if creds.UserEmail != "" {
				fmt.Fprintf(w, "  Email:   %s\n", creds.UserEmail)
			}
			if creds.ServerURL != "" {
				fmt.Fprintf(w, "  Server:  %s\n", creds.ServerURL)
			}
			fmt.Fprintf(w, "  Token:   %s\n", maskToken(creds.AccessToken))
			if !creds.SavedAt.IsZero() {
				fmt.Fprintf(w, "  Saved:   %s\n", creds.SavedAt.Local().Format(time.RFC1123))
			}
			fmt.Fprintf(w, "  File:    %s\n", path)
			return nil
		},
	}
}

func maskToken(token string) string {
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + "..." + token[len(token)-4:]
}
