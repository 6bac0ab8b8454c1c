package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/promptflow/promptflow/internal/config"
	"github.com/promptflow/promptflow/internal/ui"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Configure the server URL, timeouts and other settings for the PromptFlow CLI",
	}
	cmd.AddCommand(newConfigSetServerCmd(o), newConfigShowCmd(o), newConfigPathCmd(o))
	return cmd
}

func newConfigSetServerCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "set-server <url>",
		Short:   "Set the PromptFlow API base URL",
		Example: `  promptflow config set-server http://localhost:8000/api`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL := args[0]
			u, err := url.Parse(serverURL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid server URL %q", serverURL)
			}

			path := o.configPath()
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			cfg.ServerURL = serverURL
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Server URL updated to: %s\n", serverURL)
			fmt.Fprintf(w, "Configuration saved to: %s\n", path)
			return nil
		},
	}
}

func newConfigShowCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			credsPath, err := credentialsPath(cfg)
			if err != nil {
				return err
			}

			token := "(stored credentials)"
			if cfg.Token != "" {
				token = maskToken(cfg.Token) + " (override)"
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Current Configuration:")
			table := ui.NewTable(w, "Setting", "Value")
			rows := [][2]string{
				{"Server URL", cfg.ServerURL},
				{"Token", token},
				{"Credentials", credsPath},
				{"Timeout", cfg.RequestTimeout().String()},
				{"Generate timeout", cfg.GenerationTimeout().String()},
				{"Cache", fmt.Sprintf("%v (ttl %s)", cfg.Cache.Enabled, cfg.CacheTTL())},
				{"Color", cfg.UI.Color},
				{"Debug", fmt.Sprintf("%v", cfg.Debug)},
				{"Config File", o.configPath()},
			}
			for _, r := range rows {
				if err := table.Append(r[0], r[1]); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

func newConfigPathCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), o.configPath())
		},
	}
}
