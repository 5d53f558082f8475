package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	llmSvc "github.com/ldsilvadev/mcp-word-caller/internal/domain/services/llm"
)

var chatDraftID string

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send one message to the drafting agent",
	Long: `Runs a single conversation turn against the configured model and
prints the answer with the tools it called.

Examples:
  mcp-word-caller chat "Create a remote work policy"
  mcp-word-caller chat --draft 3f6c... "Add a section about equipment"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatDraftID, "draft", "d", "", "ID of the draft the message refers to")
}

func runChat(cmd *cobra.Command, args []string) error {
	req := &llmSvc.ChatRequest{Message: strings.Join(args, " ")}
	if chatDraftID != "" {
		id, err := uuid.Parse(chatDraftID)
		if err != nil {
			return fmt.Errorf("invalid --draft: %w", err)
		}
		req.ActiveDraftID = &id
	}

	cfg, logger, closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.llm.Chat == nil {
		return fmt.Errorf("chat is disabled: ANTHROPIC_API_KEY is not set")
	}

	resp, err := a.llm.Chat.HandleMessage(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, resp.Response)
	if len(resp.ToolCalls) > 0 {
		fmt.Fprintln(out)
		for _, call := range resp.ToolCalls {
			status := "ok"
			if call.IsError {
				status = "error"
			}
			fmt.Fprintf(out, "  %s (%s)\n", call.Name, status)
		}
	}
	if resp.DraftUpdated && resp.DraftID != nil {
		fmt.Fprintf(out, "\ndraft updated: %s\n", resp.DraftID)
	}
	return nil
}
