package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/promptflow/promptflow/internal/dashboard"
	"github.com/promptflow/promptflow/internal/tui"
	"github.com/promptflow/promptflow/pkg/logger"
)

func newDashboardCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive workflow dashboard",
		Long: `Open the interactive workflow dashboard.

Pick a chat on the left (or none to start a new one), type a prompt and
press ctrl+s to generate a workflow. Press ? for all key bindings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(0) {
				return fmt.Errorf("the dashboard needs an interactive terminal; use the chats and workflows commands instead")
			}

			client, cfg, err := o.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			// Debug logs would tear the alternate screen; keep them off it.
			log := logger.Discard()
			if cfg.Debug {
				log = newLogger(cfg, cmd.ErrOrStderr())
			}

			d := dashboard.New(client.Chats, client.Workflows, dashboard.Options{
				RequestTimeout:  cfg.RequestTimeout(),
				GenerateTimeout: cfg.GenerationTimeout(),
				Logger:          log,
			})

			return tui.Run(cmd.Context(), d, tui.Options{NoColor: o.colorDisabled(cfg)})
		},
	}
}
