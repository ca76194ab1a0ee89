package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AagmanBhatia/Oora/pkg/conversation"
	"github.com/AagmanBhatia/Oora/pkg/llm"
	"github.com/AagmanBhatia/Oora/pkg/render"
	"github.com/AagmanBhatia/Oora/pkg/session"
	"github.com/AagmanBhatia/Oora/pkg/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat page and JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	client, err := llm.NewClient(cfg.Provider)
	if err != nil {
		return err
	}
	defer client.Close()

	renderer, err := render.New(render.Options{Title: cfg.Chat.Title, Tagline: cfg.Chat.Tagline})
	if err != nil {
		return err
	}

	store := session.NewStore(func(id string) *conversation.Controller {
		return conversation.NewController(client, cfg.Chat.SystemPrompt,
			conversation.WithLogger(logger.With(zap.String("session_id", id))))
	}, cfg.Server.SessionTTL, logger.Named("session"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go store.Run(ctx, cfg.Server.SweepEvery)

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println(boldGreen("⚡ " + cfg.Chat.Title))
	fmt.Printf("Provider: %s, model: %s\n", boldCyan(cfg.Provider.Name), boldCyan(client.Model()))
	fmt.Printf("Listening on %s\n", boldCyan(cfg.Server.Addr))

	server := web.NewServer(web.ServerConfig{
		Store:        store,
		Renderer:     renderer,
		Logger:       logger.Named("http"),
		SecureCookie: cfg.Server.SecureCookie,
	})
	return server.Serve(ctx, cfg.Server.Addr)
}
