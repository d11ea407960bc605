// Command execution for CLI commands.
//
// Information Hiding:
// - Settings, credential and service setup hidden
// - Interactive prompt parsing hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/richinex/shopwise/api"
	"github.com/richinex/shopwise/catalog"
	"github.com/richinex/shopwise/config"
	"github.com/richinex/shopwise/internal/logging"
	"github.com/richinex/shopwise/recommend"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	Verbose  bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{Provider: config.ProviderFromEnv()}
}

// Recommender answers one request.
type Recommender = api.Recommender

// NewService loads settings for opts.Provider, reads its credential and
// builds the recommendation service. The caller closes the service.
func NewService(ctx context.Context, opts Options) (*recommend.Service, *zap.Logger, error) {
	provider := opts.Provider
	if provider == "" {
		provider = config.ProviderFromEnv()
	}

	settings, err := config.New(provider)
	if err != nil {
		return nil, nil, &recommend.Error{Kind: recommend.KindSetupFailure, Op: "config", Err: err}
	}
	if opts.Verbose {
		settings.Logging.Level = "debug"
		settings.Agent.Verbose = true
	}
	logger := logging.New(logging.Config{
		Level:  settings.Logging.Level,
		Format: settings.Logging.Format,
		File:   settings.Logging.File,
	})

	apiKey, err := config.APIKeyFor(provider)
	if err != nil {
		return nil, logger, &recommend.Error{Kind: recommend.KindSetupFailure, Op: "setup", Err: err}
	}

	svc, err := recommend.Setup(ctx, settings, apiKey, nil, logger)
	if err != nil {
		return nil, logger, err
	}
	return svc, logger, nil
}

// Recommend runs one request and prints the recommendation to out.
func Recommend(ctx context.Context, rec Recommender, req recommend.Request, out io.Writer, verbose bool) error {
	result, err := rec.Recommend(ctx, req)
	if err != nil {
		fmt.Fprintln(out, recommend.Message(err))
		return err
	}
	printResult(out, result, verbose)
	return nil
}

// Chat reads requests from in until EOF or "quit", reusing one service for
// every query. Failures are printed and the loop continues.
func Chat(ctx context.Context, rec Recommender, in io.Reader, out io.Writer, verbose bool) error {
	scanner := bufio.NewScanner(in)
	prompt := func(label string) (string, bool) {
		fmt.Fprintf(out, "%s: ", label)
		if !scanner.Scan() {
			return "", false
		}
		line := strings.TrimSpace(scanner.Text())
		return line, !isQuit(line)
	}

	fmt.Fprintf(out, "Categories: %s\n", strings.Join(catalog.Names(), ", "))
	fmt.Fprintln(out, "Type 'quit' to exit.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		category, ok := prompt("Category")
		if !ok {
			break
		}
		budgetText, ok := prompt("Budget (USD)")
		if !ok {
			break
		}
		featureText, ok := prompt("Features (comma separated)")
		if !ok {
			break
		}
		requirements, ok := prompt("Additional requirements")
		if !ok {
			break
		}

		budget, err := strconv.ParseFloat(budgetText, 64)
		if err != nil {
			fmt.Fprintf(out, "Invalid budget %q\n\n", budgetText)
			continue
		}

		req := recommend.Request{
			Category: category,
			Budget:   budget,
			Features: splitFeatures(featureText),
			FreeText: requirements,
		}
		fmt.Fprintln(out, "Searching for the best products for you...")
		_ = Recommend(ctx, rec, req, out, verbose)
		fmt.Fprintln(out)
	}
	return scanner.Err()
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit":
		return true
	}
	return false
}

func splitFeatures(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Categories prints every category, or the details of one.
func Categories(out io.Writer, name string) error {
	if name == "" {
		for _, c := range catalog.All() {
			fmt.Fprintf(out, "%-20s %d features\n", c.Name, len(c.Features))
		}
		return nil
	}

	c, err := catalog.Resolve(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", c.Name)
	printList(out, "Features", c.Features)
	printList(out, "Types", c.Types)
	printList(out, "Use cases", c.UseCases)
	return nil
}

func printList(out io.Writer, title string, items []string) {
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}

// Serve runs the HTTP API on addr until ctx is cancelled.
func Serve(ctx context.Context, rec Recommender, addr string, requestTimeout time.Duration, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(rec, logger.Named("api"), requestTimeout).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func printResult(out io.Writer, result recommend.Result, verbose bool) {
	if verbose {
		fmt.Fprintf(out, "Query: %s\n\n", result.Query)
	}
	fmt.Fprintf(out, "%s\n", result.Text)
	if result.Incomplete {
		fmt.Fprintln(out, "\n(partial result: the search did not reach a final answer)")
	}
	if verbose {
		fmt.Fprintf(out, "\n(task %s, %d failed searches)\n", result.TaskID, result.ToolFailures)
	}
}
