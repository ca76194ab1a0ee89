package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AagmanBhatia/Oora/pkg/config"
	"github.com/AagmanBhatia/Oora/pkg/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "oora",
	Short: "Super Chat - a chat front-end for hosted LLM completions",
	Long: `Oora keeps a per-session conversation (system prompt, your questions and
the model's answers) and sends the whole history to the completion provider
on every question.

Run "oora serve" for the web page or "oora chat" for a terminal session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Log.Level = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		logger, err = logging.New(loaded.Log)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrMissingCredential) {
			fmt.Fprintln(os.Stderr, "Set GROQ_API_KEY in the environment or a .env file, or use --config.")
		}
		os.Exit(1)
	}
}
