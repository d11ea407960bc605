// Package main provides the shopwise CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/shopwise/cli"
	"github.com/richinex/shopwise/recommend"
)

var (
	// Global flags
	provider string
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
		Use:   "shopwise",
		Short: "Search-grounded product recommendations",
		Long: `Recommend products within a budget using an LLM agent that searches the web.

The agent explores several lines of reasoning as a tree, searching DuckDuckGo
for reviews and prices, and answers once one branch reaches a conclusion.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (sambanova, openai, anthropic, deepseek, gemini); defaults to LLM_PROVIDER")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(serveCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func options() cli.Options {
	opts := cli.DefaultOptions()
	if provider != "" {
		opts.Provider = provider
	}
	opts.Verbose = verbose
	return opts
}

func withService(cmd *cobra.Command, fn func(*recommend.Service) error) error {
	svc, logger, err := cli.NewService(cmd.Context(), options())
	if logger != nil {
		defer func() { _ = logger.Sync() }()
	}
	if err != nil {
		return errors.New(recommend.Message(err))
	}
	defer svc.Close()
	return fn(svc)
}

func recommendCmd() *cobra.Command {
	var req recommend.Request

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend products for one request",
		Example: `  shopwise recommend --category Laptops --budget 1000 --feature "Long Battery Life"
  shopwise recommend -c Cameras -b 500 --requirements "good in low light"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *recommend.Service) error {
				if err := cli.Recommend(cmd.Context(), svc, req, cmd.OutOrStdout(), verbose); err != nil {
					return fmt.Errorf("recommendation failed (%s)", recommend.KindOf(err))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Category, "category", "c", "", "Product category")
	cmd.Flags().Float64VarP(&req.Budget, "budget", "b", 1000, "Budget in USD (0-10000)")
	cmd.Flags().StringArrayVarP(&req.Features, "feature", "f", nil, "Desired feature (repeatable)")
	cmd.Flags().StringVarP(&req.FreeText, "requirements", "r", "", "Additional requirements")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Answer several requests interactively with one agent session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *recommend.Service) error {
				return cli.Chat(cmd.Context(), svc, cmd.InOrStdin(), cmd.OutOrStdout(), verbose)
			})
		},
	}
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories [name]",
		Short: "List product categories or show one category's features",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return cli.Categories(cmd.OutOrStdout(), name)
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := cli.NewService(cmd.Context(), options())
			if logger != nil {
				defer func() { _ = logger.Sync() }()
			}
			if err != nil {
				return errors.New(recommend.Message(err))
			}
			defer svc.Close()
			return cli.Serve(cmd.Context(), svc, addr, timeout, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Per-request timeout")

	return cmd
}
