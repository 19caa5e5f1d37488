package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	samarth "github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/config"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/logging"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/translator"
)

// ============================================================================
// SAMARTH CLI: questions over rainfall and crop production tables
// ============================================================================

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.3.0"

// app carries state shared by every subcommand.
type app struct {
	configPath string
	dataDir    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "samarth",
		Short: "Answer questions about Indian rainfall and crop production data",
		Long: `samarth answers natural-language questions over rainfall (IMD subdivision)
and crop production CSV tables. Every figure is computed locally from the
loaded tables and cited back to its source file.

Environment:
  SAMARTH_API_KEY   API key for the remote parser (GROQ_API_KEY also works)
  SAMARTH_*         Overrides for any samarth.yaml setting`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config file (default samarth.yaml if present)")
	root.PersistentFlags().StringVarP(&a.dataDir, "data", "d", "", "Directory of CSV tables (overrides data_dir)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(
		newAskCmd(a),
		newParseCmd(a),
		newDatasetsCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads .env, configuration, and the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Development)
	if err != nil {
		return err
	}

	a.cfg, a.logger = cfg, logger
	return nil
}

// open loads the data directory and builds the engine the config asks for.
func (a *app) open(ctx context.Context) (*samarth.Engine, error) {
	opts := []samarth.Option{
		samarth.WithLogger(a.logger),
		samarth.WithEngineOptions(a.cfg.EngineOptions()...),
	}

	switch {
	case a.cfg.Remote():
		tc := a.cfg.TranslatorConfig()
		completer, err := translator.NewCompleter(tc)
		if err != nil {
			return nil, err
		}
		a.logger.Info("Remote parser enabled",
			zap.String("provider", string(tc.Provider)),
			zap.String("model", tc.Model),
			zap.String("apiKey", logging.Redact(tc.APIKey)),
			zap.Duration("timeout", a.cfg.Parser.Timeout))
		opts = append(opts, samarth.WithRemoteParser(completer, translator.WithTimeout(a.cfg.Parser.Timeout)))
	case a.cfg.Parser.Mode == config.ModeRemote:
		a.logger.Warn("Remote parser requested without an API key, using rule parser")
	}

	eng, failures, err := samarth.Open(ctx, a.cfg.DataDir, opts...)
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.YellowString("skipped:"), f.Error())
	}
	if err != nil {
		return nil, err
	}
	return eng, nil
}
