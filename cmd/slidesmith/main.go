// Package main provides the slidesmith entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/slidesmith/cli"
	"github.com/richinex/slidesmith/config"
)

var (
	// Global flags
	provider string
	model    string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "slidesmith",
		Short: "Research-backed slide deck generation",
		Long: `SlideSmith turns a prompt into a slide deck.

The model researches the topic with web search, finds images for title and
split slides, and answers with a JSON deck. Progress is streamed to clients
over a WebSocket at /ws/generate.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini); overrides USE_PROVIDER")
	rootCmd.PersistentFlags().StringVarP(&model, "model", "m", "", "Model name; overrides MODEL_NAME")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to the console")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(toolsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads settings, applies flags and wires the app.
func setup(mutate func(*config.Settings)) (*cli.App, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	settings, err = cli.Options{Provider: provider, Model: model, Verbose: verbose}.Apply(settings)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(&settings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	log, err := cli.NewLogger(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cli.Build(settings, log)
}

func serveCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(func(s *config.Settings) {
				if host != "" {
					s.Server.Host = host
				}
				if port != 0 {
					s.Server.Port = port
				}
			})
			if err != nil {
				return err
			}
			defer app.Logger.Sync() //nolint:errcheck

			return cli.Serve(cmd.Context(), app)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host; overrides HOST")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port; overrides PORT")

	return cmd
}

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate a deck once and print progress events as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(nil)
			if err != nil {
				return err
			}
			defer app.Logger.Sync() //nolint:errcheck

			return cli.Generate(cmd.Context(), app, args[0], cmd.OutOrStdout())
		},
	}
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools offered to the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(nil)
			if err != nil {
				return err
			}
			cli.ListTools(cmd.OutOrStdout(), app.Registry, verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}
