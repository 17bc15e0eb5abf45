// ====================================
// File: cmd/tokenlists/app.go
// ====================================
package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenlists/internal/config"
	"github.com/rovshanmuradov/tokenlists/internal/logger"
	"github.com/rovshanmuradov/tokenlists/internal/pipeline"
	"github.com/rovshanmuradov/tokenlists/internal/registry"
)

const finishTimeout = 10 * time.Second

// App состояние CLI между PersistentPreRunE и командами
type App struct {
	version    string
	configFile string
	debug      bool
	out        io.Writer

	cfg    *config.Config
	logger *logger.Logger
	runner *pipeline.Runner
	opts   []pipeline.Option
}

// Execute разбирает аргументы и запускает команду
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "tokenlists",
		Short:   "Token list reconciliation pipeline",
		Version: a.version,
		Long: `tokenlists pulls candidate token lists from upstream sources, reads
symbol, name and decimals of every contract through Multicall3 and publishes
the reconciled, versioned token lists.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (defaults and TOKENLISTS_* env when empty)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "debug logging")
	root.SetVersionTemplate("tokenlists {{.Version}}\n")
	if a.out != nil {
		root.SetOut(a.out)
	}

	root.AddCommand(
		a.fetchCommand(),
		a.generateCommand(),
		a.checksumCommand(),
		a.makelistCommand(),
		a.ciCheckCommand(),
		a.versionCommand(),
	)
	return root
}

// setup загружает конфигурацию, реестр и логгер. Вызывается только
// командами пайплайна, чтобы version работал без конфигурации.
// Все компоненты получают логгер операции с correlation_id запуска.
func (a *App) setup(command string) (*zap.Logger, error) {
	cfg, err := config.LoadConfig(a.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging || a.debug
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	reg, err := registry.Load(cfg.RegistryFile)
	if err != nil {
		log.LogError("Failed to load registry", err, zap.String("file", cfg.RegistryFile))
		_ = log.Sync()
		return nil, err
	}

	opLog := log.WithOperation(command)
	a.cfg = cfg
	a.logger = log
	a.runner = pipeline.NewRunner(cfg, reg, opLog.With(zap.String("component", "pipeline")), a.opts...)
	return opLog, nil
}

// run оборачивает команду пайплайна: setup, correlation id, метрики и Sync
func (a *App) run(cmd *cobra.Command, command string, fn func(ctx context.Context, log *zap.Logger) error) error {
	log, err := a.setup(command)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	started := time.Now()
	runErr := fn(cmd.Context(), log)
	if runErr != nil {
		log.Error("Command failed", zap.String("command", command), zap.Error(runErr))
	}

	// метрики отправляются и после отмены основного контекста
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()
	a.runner.Finish(ctx, command, started, runErr)
	return runErr
}
