package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AagmanBhatia/Oora/pkg/conversation"
	"github.com/AagmanBhatia/Oora/pkg/llm"
	"github.com/AagmanBhatia/Oora/pkg/models"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat in the terminal",
	Long: `Starts a terminal session on the same conversation rules as the web page.

Commands:
  /regen   regenerate the last answer
  /clear   clear the conversation
  exit     quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	client, err := llm.NewClient(cfg.Provider)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// After the first interrupt a second one kills the process.
	go func() {
		<-ctx.Done()
		stop()
	}()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println(boldGreen("⚡ " + cfg.Chat.Title))
	fmt.Printf("Using model: %s\n", boldCyan(client.Model()))
	fmt.Println("Type your message and press Enter. /regen regenerates, /clear clears, 'exit' quits.")
	fmt.Println()

	ctrl := conversation.NewController(client, cfg.Chat.SystemPrompt, conversation.WithLogger(logger))
	return chatLoop(ctx, ctrl, os.Stdin, os.Stdout)
}

// chatLoop reads lines from in until EOF, "exit" or ctx is done. A
// completion already sent is not cancelled by ctx; the loop stops once it
// has returned.
func chatLoop(ctx context.Context, ctrl *conversation.Controller, in io.Reader, out io.Writer) error {
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	done := make(chan struct{})
	defer close(done)

	var scanErr error
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr = scanner.Err()
	}()

	callCtx := context.WithoutCancel(ctx)
	for {
		if ctx.Err() != nil {
			fmt.Fprintln(out)
			return nil
		}
		fmt.Fprint(out, boldGreen("You: "))

		var input string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return scanErr
			}
			input = line
		}

		var (
			turns []models.Message
			err   error
		)
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "exit", "quit":
			return nil
		case "/clear":
			ctrl.Reset()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		case "/regen":
			turns, err = ctrl.Regenerate(callCtx)
		default:
			turns, err = ctrl.Submit(callCtx, input)
		}

		switch {
		case errors.Is(err, conversation.ErrEmptyQuery):
			continue
		case errors.Is(err, conversation.ErrNothingToRegenerate):
			fmt.Fprintln(out, "Nothing to regenerate yet.")
			continue
		case err != nil:
			fmt.Fprintln(out, red("An error occurred: "+err.Error()))
			continue
		}

		last := turns[len(turns)-1]
		fmt.Fprintf(out, "%s%s\n\n", boldCyan("Assistant: "), last.Content)
	}
}
