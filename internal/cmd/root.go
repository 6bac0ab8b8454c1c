// Package cmd implements the promptflow command tree.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptflow/promptflow/internal/auth"
	"github.com/promptflow/promptflow/internal/config"
	"github.com/promptflow/promptflow/internal/ui"
	"github.com/promptflow/promptflow/pkg/logger"
	"github.com/promptflow/promptflow/pkg/sdk"
	sdkauth "github.com/promptflow/promptflow/pkg/sdk/auth"
)

// rootOptions carries the global flags to every subcommand.
type rootOptions struct {
	cfgFile   string
	serverURL string
	output    string
	token     string
	debug     bool
	noColor   bool

	v *viper.Viper
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "promptflow",
		Short: "CLI for the PromptFlow workflow generator",
		Long: `Command-line interface for PromptFlow.

Describe an automation in plain language and PromptFlow generates the
workflow document for it. Use "promptflow dashboard" for the interactive
view, or the chats and workflows commands for scripting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ui.ParseFormat(o.output); err != nil {
				return err
			}
			return config.LoadDotEnv(".")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.cfgFile, "config", "", "config file (default is $HOME/.promptflow/config.yaml)")
	flags.StringVar(&o.serverURL, "server", "", "PromptFlow API base URL")
	flags.StringVar(&o.output, "output", "table", "output format (table, json, yaml)")
	flags.StringVar(&o.token, "token", "", "bearer token (overrides stored credentials)")
	flags.BoolVar(&o.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&o.noColor, "no-color", false, "disable colored output")

	_ = o.v.BindPFlag("server_url", flags.Lookup("server"))
	_ = o.v.BindPFlag("token", flags.Lookup("token"))
	_ = o.v.BindPFlag("debug", flags.Lookup("debug"))

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(ui.FormatTable), string(ui.FormatJSON), string(ui.FormatYAML)}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		newChatsCmd(o),
		newWorkflowsCmd(o),
		newDashboardCmd(o),
		newAuthCmd(o),
		newConfigCmd(o),
		newCompletionCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// configPath resolves the config file in use.
func (o *rootOptions) configPath() string {
	return config.DiscoverPath(o.cfgFile)
}

// loadConfig merges the config file, environment and global flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(o.v, o.configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) format() ui.Format {
	f, _ := ui.ParseFormat(o.output)
	return f
}

func (o *rootOptions) colorDisabled(cfg *config.Config) bool {
	return !cfg.UseColor(o.noColor)
}

func credentialsPath(cfg *config.Config) (string, error) {
	if cfg.CredentialsPath != "" {
		return cfg.CredentialsPath, nil
	}
	return auth.DefaultPath()
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if cfg.Debug {
		return logger.New(w, slog.LevelDebug)
	}
	return logger.NewLogger()
}

// tokenSource prefers an explicit token (flag, env or config) over the
// stored credentials.
func tokenSource(cfg *config.Config) (sdkauth.TokenSource, error) {
	if cfg.Token != "" {
		return sdkauth.StaticToken(cfg.Token), nil
	}
	path, err := credentialsPath(cfg)
	if err != nil {
		return nil, err
	}
	return auth.FileTokenSource{Path: path}, nil
}

// newClient builds an SDK client from the merged configuration.
func (o *rootOptions) newClient(cmd *cobra.Command) (*sdk.Client, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	tokens, err := tokenSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	stderr := cmd.ErrOrStderr()
	client, err := sdk.New(sdk.Config{
		ServerURL: cfg.ServerURL,
		Tokens:    tokens,
		// Per-call deadlines come from the command context; the client
		// timeout only has to outlast the longest of them.
		HTTPClient: &http.Client{Timeout: cfg.GenerationTimeout()},
		Logger:     newLogger(cfg, stderr),
		OnUnauthorized: func() {
			fmt.Fprintln(stderr, ui.Warning("Not authenticated. Run: promptflow auth login", o.colorDisabled(cfg)))
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, cfg, nil
}

// requestContext bounds a single non-generation API call.
func requestContext(cmd *cobra.Command, cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.RequestTimeout())
}

// generateContext bounds a workflow generation call.
func generateContext(cmd *cobra.Command, cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.GenerationTimeout())
}

// render prints v in the selected output format; table draws the table
// form.
func (o *rootOptions) render(cmd *cobra.Command, cfg *config.Config, v any, table func(io.Writer) error) error {
	w := cmd.OutOrStdout()
	switch o.format() {
	case ui.FormatJSON:
		noColor := o.colorDisabled(cfg) || w != os.Stdout || ui.IsPiped()
		return ui.WriteJSON(w, v, noColor)
	case ui.FormatYAML:
		return ui.WriteYAML(w, v)
	default:
		return table(w)
	}
}
