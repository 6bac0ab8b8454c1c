package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/promptflow/promptflow/internal/cache"
	"github.com/promptflow/promptflow/internal/ui"
	"github.com/promptflow/promptflow/pkg/sdk/workflows"
)

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

func newWorkflowsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflows",
		Aliases: []string{"workflow", "wf"},
		Short:   "Generate and manage workflows",
	}

	cmd.AddCommand(
		newWorkflowsListCmd(o),
		newWorkflowsGenerateCmd(o),
		newWorkflowsGetCmd(o),
		newWorkflowsUpdateCmd(o),
		newWorkflowsDeleteCmd(o),
	)
	return cmd
}

func newWorkflowsListCmd(o *rootOptions) *cobra.Command {
	var chatFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var chatID int64
			if chatFilter != "" {
				id, err := parseID(chatFilter)
				if err != nil {
					return err
				}
				chatID = id
			}

			client, cfg, err := o.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := requestContext(cmd, cfg)
			defer cancel()

			list, err := client.Workflows.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list workflows: %w", err)
			}

			if chatID != 0 {
				filtered := list[:0]
				for _, wf := range list {
					if wf.ChatID != nil && *wf.ChatID == chatID {
						filtered = append(filtered, wf)
					}
				}
				list = filtered
			}

			return o.render(cmd, cfg, list, func(w io.Writer) error {
				return ui.RenderWorkflows(w, list)
			})
		},
	}

	cmd.Flags().StringVar(&chatFilter, "chat", "", "only show workflows in this chat")
	_ = cmd.RegisterFlagCompletionFunc("chat", o.completeChatIDs)
	return cmd
}

func newWorkflowsGenerateCmd(o *rootOptions) *cobra.Command {
	var chatFlag string

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a workflow from a prompt",
		Long: `Generate a workflow from a natural-language prompt.

Without --chat the server starts a new chat for the workflow.`,
		Example: `  promptflow workflows generate "send a daily email with new sheet rows"
  promptflow workflows generate --chat 42 "also post them to slack"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if err := workflows.ValidatePrompt(prompt); err != nil {
				return err
			}

			var chatID *int64
			if chatFlag != "" {
				id, err := parseID(chatFlag)
				if err != nil {
					return err
				}
				chatID = &id
			}

			client, cfg, err := o.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := generateContext(cmd, cfg)
			defer cancel()

			spinner := ui.NewSpinner("Generating workflow...", o.colorDisabled(cfg))
			spinner.Start()
			wf, err := client.Workflows.Create(ctx, prompt, chatID)
			spinner.Stop()
			if err != nil {
				return fmt.Errorf("failed to generate workflow: %w", err)
			}
			invalidateCompletions(cfg, cache.WorkflowsKey)
			if chatID == nil && wf.ChatID != nil {
				invalidateCompletions(cfg, cache.ChatsKey)
			}

			return o.render(cmd, cfg, wf, func(w io.Writer) error {
				noColor := o.colorDisabled(cfg)
				fmt.Fprintln(w, ui.Success("Workflow generated successfully!", noColor))
				printWorkflowSummary(w, wf)
				fmt.Fprintln(w)
				return ui.WriteJSON(w, wf.WorkflowJSON, noColor)
			})
		},
	}

	cmd.Flags().StringVar(&chatFlag, "chat", "", "add the workflow to an existing chat")
	_ = cmd.RegisterFlagCompletionFunc("chat", o.completeChatIDs)
	return cmd
}

func newWorkflowsGetCmd(o *rootOptions) *cobra.Command {
	var copyJSON bool

	cmd := &cobra.Command{
		Use:               "get <id>",
		Short:             "Show a workflow and its generated document",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: firstArg(o.completeWorkflowIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			client, cfg, err := o.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := requestContext(cmd, cfg)
			defer cancel()

			wf, err := client.Workflows.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get workflow %d: %w", id, err)
			}

			if copyJSON {
				text, err := ui.FormatJSON(wf.WorkflowJSON, true)
				if err != nil {
					return err
				}
				if err := writeClipboard(text); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Success("Workflow JSON copied to clipboard", o.colorDisabled(cfg)))
			}

			return o.render(cmd, cfg, wf, func(w io.Writer) error {
				printWorkflowSummary(w, wf)
				fmt.Fprintln(w)
				return ui.WriteJSON(w, wf.WorkflowJSON, o.colorDisabled(cfg))
			})
		},
	}

	cmd.Flags().BoolVar(&copyJSON, "copy", false, "copy the workflow JSON to the clipboard")
	return cmd
}

func newWorkflowsUpdateCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "update <id> <prompt>",
		Short:             "Replace a workflow's prompt",
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: firstArg(o.completeWorkflowIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			prompt := strings.Join(args[1:], " ")

			client, cfg, err := o.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := generateContext(cmd, cfg)
			defer cancel()

			wf, err := client.Workflows.Update(ctx, id, prompt)
			if err != nil {
				return fmt.Errorf("failed to update workflow %d: %w", id, err)
			}

			return o.render(cmd, cfg, wf, func(w io.Writer) error {
				fmt.Fprintln(w, ui.Success(fmt.Sprintf("Updated workflow %d", wf.ID), o.colorDisabled(cfg)))
				printWorkflowSummary(w, wf)
				return nil
			})
		},
	}
}

func newWorkflowsDeleteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "delete <id>",
		Short:             "Delete a workflow",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: firstArg(o.completeWorkflowIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			client, cfg, err := o.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := requestContext(cmd, cfg)
			defer cancel()

			if _, err := client.Workflows.Delete(ctx, id); err != nil {
				return fmt.Errorf("failed to delete workflow %d: %w", id, err)
			}
			invalidateCompletions(cfg, cache.WorkflowsKey)

			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Deleted workflow %d", id), o.colorDisabled(cfg)))
			return nil
		},
	}
}

func printWorkflowSummary(w io.Writer, wf *workflows.Workflow) {
	fmt.Fprintf(w, "Workflow %d\n", wf.ID)
	fmt.Fprintf(w, "  Prompt:  %s\n", wf.Prompt)
	if wf.ChatID != nil {
		fmt.Fprintf(w, "  Chat:    %d\n", *wf.ChatID)
	}
	if !wf.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Created: %s\n", wf.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}
