package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptflow/promptflow/internal/cache"
	"github.com/promptflow/promptflow/internal/config"
	"github.com/promptflow/promptflow/pkg/sdk"
)

// completionTimeout keeps tab completion responsive on slow servers.
const completionTimeout = 2 * time.Second

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for the PromptFlow CLI.

Besides commands and flags, chat and workflow IDs are completed from the
server. They are cached under ~/.promptflow/cache/ for cache.ttl (5m by
default).

Bash:
  $ source <(promptflow completion bash)

Zsh:
  $ promptflow completion zsh > "${fpath[1]}/_promptflow"

Fish:
  $ promptflow completion fish | source

PowerShell:
  PS> promptflow completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func completionCache(cfg *config.Config) *cache.Manager {
	if !cfg.Cache.Enabled {
		return nil
	}
	m, err := cache.NewManager("", cfg.CacheTTL())
	if err != nil {
		return nil
	}
	return m
}

// invalidateCompletions drops cached IDs after a create or delete.
func invalidateCompletions(cfg *config.Config, name string) {
	if m := completionCache(cfg); m != nil {
		_ = m.Clear(cache.Key(cfg.ServerURL, name))
	}
}

type completeFunc func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// firstArg restricts fn to the first positional argument.
func firstArg(fn completeFunc) completeFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return fn(cmd, args, toComplete)
	}
}

// completeIDs offers "id<TAB>description" candidates.
func (o *rootOptions) completeIDs(cmd *cobra.Command, name string, fetch func(context.Context, *sdk.Client) ([]string, error)) ([]string, cobra.ShellCompDirective) {
	client, cfg, err := o.newClient(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), completionTimeout)
	defer cancel()

	values, err := completionCache(cfg).GetOrFetch(ctx, cache.Key(cfg.ServerURL, name), func(ctx context.Context) ([]string, error) {
		return fetch(ctx, client)
	})
	if err != nil {
		if cfg.Debug {
			fmt.Fprintf(os.Stderr, "completion failed: %v\n", err)
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return values, cobra.ShellCompDirectiveNoFileComp
}

func (o *rootOptions) completeChatIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return o.completeIDs(cmd, cache.ChatsKey, func(ctx context.Context, c *sdk.Client) ([]string, error) {
		list, err := c.Chats.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(list))
		for _, chat := range list {
			out = append(out, strconv.FormatInt(chat.ID, 10)+"\t"+chat.Title)
		}
		return out, nil
	})
}

func (o *rootOptions) completeWorkflowIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return o.completeIDs(cmd, cache.WorkflowsKey, func(ctx context.Context, c *sdk.Client) ([]string, error) {
		list, err := c.Workflows.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(list))
		for _, wf := range list {
			out = append(out, strconv.FormatInt(wf.ID, 10)+"\t"+wf.Prompt)
		}
		return out, nil
	})
}
