package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmgate/internal/config"
	"llmgate/internal/conversation"
	"llmgate/internal/httpapi"
	"llmgate/internal/inference"
	"llmgate/internal/registry"
	"llmgate/internal/staging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:           "llmgate",
		Short:         "HTTP gateway over a local Ollama inference server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rf.configPath, "config", "", "Path to a YAML/JSON/TOML config file")
	root.PersistentFlags().StringVar(&rf.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults LLMGATE_LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&rf.logFormat, "log-format", "", "Log format: console|json")

	serve := newServeCmd(rf)
	root.AddCommand(serve, newVersionCmd())
	// Running the bare binary serves.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "llmgate "+version)
		},
	}
}

func newServeCmd(rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP gateway",
		Example: "  llmgate serve --addr :8000 --ollama-url http://localhost:11434",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, rf, os.Getenv)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, logger)
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "HTTP listen address, e.g. :8000")
	f.String("ollama-url", "", "Ollama base URL")
	f.String("default-model", "", "Model used when a request omits one")
	f.String("multimodal-models", "", "Comma-separated models that accept file uploads")
	f.Bool("strict-multimodal", false, "Reject uploads to models not on the multimodal list")
	f.String("staging-dir", "", "Directory for uploads staged during a request")
	f.String("static-dir", "", "Directory holding index.html and static assets")
	f.Int("max-upload-mb", 0, "Maximum upload size in MiB")
	return cmd
}

// resolveConfig applies defaults, then the config file, then LLMGATE_*
// environment variables, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, rf *rootFlags, getenv func(string) string) (config.Config, error) {
	cfg := config.Defaults()
	if rf.configPath != "" {
		fileCfg, err := config.Load(rf.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = cfg.Merge(fileCfg)
	}
	envCfg, err := config.FromEnv(getenv)
	if err != nil {
		return cfg, err
	}
	cfg = cfg.Merge(envCfg)

	var flagCfg config.Config
	f := cmd.Flags()
	if f.Changed("addr") {
		flagCfg.Addr, _ = f.GetString("addr")
	}
	if f.Changed("ollama-url") {
		flagCfg.OllamaURL, _ = f.GetString("ollama-url")
	}
	if f.Changed("default-model") {
		flagCfg.DefaultModel, _ = f.GetString("default-model")
	}
	if f.Changed("multimodal-models") {
		v, _ := f.GetString("multimodal-models")
		flagCfg.MultimodalModels = config.SplitCSV(v)
		if flagCfg.MultimodalModels == nil {
			flagCfg.MultimodalModels = []string{}
		}
	}
	if f.Changed("staging-dir") {
		flagCfg.StagingDir, _ = f.GetString("staging-dir")
	}
	if f.Changed("static-dir") {
		flagCfg.StaticDir, _ = f.GetString("static-dir")
	}
	if f.Changed("max-upload-mb") {
		flagCfg.MaxUploadMB, _ = f.GetInt("max-upload-mb")
	}
	flagCfg.LogLevel = rf.logLevel
	flagCfg.LogFormat = rf.logFormat
	cfg = cfg.Merge(flagCfg)
	// Merge only turns strict mode on; an explicit flag may also turn it off.
	if f.Changed("strict-multimodal") {
		cfg.StrictMultimodal, _ = f.GetBool("strict-multimodal")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the root logger. Unknown levels fall back to info.
func newLogger(level, format string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "llmgate").Logger()
}

// run wires the components and serves until ctx is cancelled.
func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	client, err := inference.New(inference.Options{
		BaseURL:         cfg.OllamaURL,
		DefaultModel:    cfg.DefaultModel,
		GenerateTimeout: seconds(cfg.GenerateTimeoutSec),
		ListTimeout:     seconds(cfg.ListTimeoutSec),
		PullTimeout:     seconds(cfg.PullTimeoutSec),
		ConnectTimeout:  seconds(cfg.ConnectTimeoutSec),
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	maxUpload := int64(cfg.MaxUploadMB) << 20
	stager, err := staging.New(cfg.StagingDir, maxUpload, logger)
	if err != nil {
		return err
	}
	caps := registry.New(cfg.DefaultModel, cfg.MultimodalModels, cfg.StrictMultimodal)
	conv := conversation.NewManager(conversation.NewMemoryStore(), client, logger)

	httpapi.SetLogger(logger)
	httpapi.SetRequestLogLevel(httpLogLevel(cfg.LogLevel))
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetMaxUploadBytes(maxUpload)
	httpapi.SetCORSOptions(cfg.CORS(), cfg.CORSOrigins, nil, nil)
	httpapi.SetBaseContext(ctx)

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.NewMux(httpapi.Deps{
			Backend:       client,
			Conversations: conv,
			Uploads:       stager,
			Capabilities:  caps,
			BackendURL:    client.BaseURL(),
			StaticDir:     cfg.StaticDir,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("ollama", client.BaseURL()).
			Str("default_model", cfg.DefaultModel).
			Strs("multimodal_models", caps.Multimodal()).
			Str("staging_dir", stager.Dir()).
			Msg("llmgate listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	logger.Info().Msg("llmgate stopped")
	return nil
}

// httpLogLevel maps the process level onto the request logger's coarser scale.
func httpLogLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return "debug"
	case "warn", "warning", "error", "fatal", "panic":
		return "error"
	case "disabled", "off":
		return "off"
	default:
		return "info"
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
