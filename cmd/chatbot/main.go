package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/internal/config"
	"github.com/bobby-s-dev/flight-concierge/internal/logging"
	"github.com/bobby-s-dev/flight-concierge/internal/session"
	"github.com/bobby-s-dev/flight-concierge/internal/shell"
	"github.com/bobby-s-dev/flight-concierge/internal/store"
	"github.com/bobby-s-dev/flight-concierge/internal/tools"
	"github.com/bobby-s-dev/flight-concierge/pkg/client"
	"github.com/bobby-s-dev/flight-concierge/pkg/runner"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	var serverURL string
	var debug bool

	root := &cobra.Command{
		Use:           "chatbot",
		Short:         "Conversational flight concierge",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfgPath, serverURL, debug)
		},
	}
	root.Flags().StringVar(&cfgPath, "config", "", "config file path")
	root.Flags().StringVar(&serverURL, "server-url", "", "flight server base URL (overrides FLIGHT_SERVER_URL)")
	root.Flags().BoolVar(&debug, "debug", false, "enable debug output")
	return root
}

func run(ctx context.Context, cfgPath, serverURL string, debug bool) error {
	// Logs stay quiet so they do not interleave with the conversation
	logLevel := "error"
	if debug {
		logLevel = "debug"
	}
	logger, _, err := logging.New(logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if serverURL != "" {
		cfg.Shell.FlightServerURL = serverURL
	}

	files, err := store.New(cfg.Shell.FileStore)
	if err != nil {
		return fmt.Errorf("open file store: %w", err)
	}
	sess := session.New(files)
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("Failed to close session", zap.Error(err))
		}
	}()
	logger.Info("Session started", zap.String("session_id", sess.ID))

	clientConfig := client.ClientConfig{
		Timeout:        cfg.HTTPClient.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}
	chat := client.NewChatClient(client.ChatOptions{
		APIKey:       cfg.Chat.APIKey,
		BaseURL:      cfg.Chat.BaseURL,
		Model:        cfg.Chat.Model,
		MaxTokens:    cfg.Chat.MaxTokens,
		SystemPrompt: cfg.Chat.SystemPrompt,
	}, clientConfig, logger)
	// The server may spend its whole fulfill budget on slow providers.
	serverConfig := clientConfig
	serverConfig.Timeout = cfg.Shell.FlightServerTimeout
	flights := client.NewFlightServerClient(cfg.Shell.FlightServerURL, serverConfig, logger)

	execRunner := runner.ExecRunner{}
	git := tools.NewCommitter(execRunner, cfg.Shell.GitPath, cfg.Shell.GitWorkdir, cfg.Shell.GitTimeout, logger)
	chess := tools.NewAnalyzer(execRunner, cfg.Shell.StockfishPath, cfg.Shell.AnalysisDepth, cfg.Shell.AnalysisTimeout, logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	sh := shell.New(os.Stdin, os.Stdout, os.Stderr, sess, shell.Deps{
		Chat:    chat,
		Flights: flights,
		Git:     git,
		Chess:   chess,
		Logger:  logger,
	})
	return sh.Run(ctx)
}
