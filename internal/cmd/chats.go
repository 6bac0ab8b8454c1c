package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptflow/promptflow/internal/cache"
	"github.com/promptflow/promptflow/internal/ui"
	"github.com/promptflow/promptflow/pkg/sdk/chats"
)

func newChatsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chats",
		Aliases: []string{"chat"},
		Short:   "Manage chats",
		Long:    "Chats group the workflows generated from related prompts.",
	}

	cmd.AddCommand(
		newChatsListCmd(o),
		newChatsCreateCmd(o),
		newChatsGetCmd(o),
		newChatsRenameCmd(o),
		newChatsDeleteCmd(o),
	)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

func newChatsListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chats, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := o.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := requestContext(cmd, cfg)
			defer cancel()

			list, err := client.Chats.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list chats: %w", err)
			}

			return o.render(cmd, cfg, list, func(w io.Writer) error {
				return ui.RenderChats(w, list)
			})
		},
	}
}

func newChatsCreateCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create [title]",
		Short: "Create a chat",
		Long:  `Create a chat. The title defaults to "New Chat".`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := o.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			title := ""
			if len(args) == 1 {
				title = args[0]
			}

			ctx, cancel := requestContext(cmd, cfg)
			defer cancel()

			chat, err := client.Chats.Create(ctx, title)
			if err != nil {
				return fmt.Errorf("failed to create chat: %w", err)
			}
			invalidateCompletions(cfg, cache.ChatsKey)

			return o.render(cmd, cfg, chat, func(w io.Writer) error {
				fmt.Fprintln(w, ui.Success(fmt.Sprintf("Created chat %d: %s", chat.ID, chat.Title), o.colorDisabled(cfg)))
				return nil
			})
		},
	}
}

func newChatsGetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "get <id>",
		Short:             "Show a chat",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: firstArg(o.completeChatIDs),
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

			chat, err := client.Chats.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get chat %d: %w", id, err)
			}

			return o.render(cmd, cfg, chat, func(w io.Writer) error {
				return ui.RenderChats(w, []chats.Chat{*chat})
			})
		},
	}
}

func newChatsRenameCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "rename <id> <title>",
		Short:             "Rename a chat",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: firstArg(o.completeChatIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			title := strings.TrimSpace(args[1])
			if title == "" {
				return fmt.Errorf("title must not be empty")
			}

			client, cfg, err := o.newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := requestContext(cmd, cfg)
			defer cancel()

			chat, err := client.Chats.Update(ctx, id, title)
			if err != nil {
				return fmt.Errorf("failed to rename chat %d: %w", id, err)
			}

			return o.render(cmd, cfg, chat, func(w io.Writer) error {
				fmt.Fprintln(w, ui.Success(fmt.Sprintf("Renamed chat %d to %q", chat.ID, chat.Title), o.colorDisabled(cfg)))
				return nil
			})
		},
	}
}

func newChatsDeleteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "delete <id>",
		Short:             "Delete a chat",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: firstArg(o.completeChatIDs),
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

			if _, err := client.Chats.Delete(ctx, id); err != nil {
				return fmt.Errorf("failed to delete chat %d: %w", id, err)
			}
			invalidateCompletions(cfg, cache.ChatsKey)

			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Deleted chat %d", id), o.colorDisabled(cfg)))
			return nil
		},
	}
}
