// internal/pipeline/runner.go
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenlists/internal/blockchain/evm"
	"github.com/rovshanmuradov/tokenlists/internal/config"
	"github.com/rovshanmuradov/tokenlists/internal/export"
	"github.com/rovshanmuradov/tokenlists/internal/logger"
	"github.com/rovshanmuradov/tokenlists/internal/metrics"
	"github.com/rovshanmuradov/tokenlists/internal/oracle"
	"github.com/rovshanmuradov/tokenlists/internal/reconcile"
	"github.com/rovshanmuradov/tokenlists/internal/registry"
	"github.com/rovshanmuradov/tokenlists/internal/report"
	"github.com/rovshanmuradov/tokenlists/internal/source"
	"github.com/rovshanmuradov/tokenlists/internal/tokenlist"
	"github.com/rovshanmuradov/tokenlists/internal/types"
)

const metricsJob = "tokenlists"

// CandidateFetcher загружает список-кандидат источника. Реализуется source.Fetcher.
type CandidateFetcher interface {
	Fetch(ctx context.Context, src registry.Source) ([]types.CandidateEntry, source.Stats, error)
}

// ChainDialer открывает RPC соединение с сетью. По умолчанию evm.NewClient.
type ChainDialer func(ctx context.Context, urls []string, observer evm.Observer) (evm.Caller, error)

// Runner связывает компоненты в команды fetch/generate/checksum/makelist/ci-check
type Runner struct {
	cfg      *config.Config
	registry *registry.Registry
	logger   *zap.Logger
	metrics  *metrics.Collector

	fetcher   CandidateFetcher
	dial      ChainDialer
	snapshots *export.SnapshotWriter
	store     *tokenlist.Store
	assembler *tokenlist.Assembler
}

// Option настройка Runner
type Option func(*Runner)

// WithFetcher подменяет загрузчик источников
func WithFetcher(f CandidateFetcher) Option {
	return func(r *Runner) { r.fetcher = f }
}

// WithDialer подменяет подключение к сети
func WithDialer(d ChainDialer) Option {
	return func(r *Runner) { r.dial = d }
}

// WithClock подменяет время для отметки timestamp в списках
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.assembler = tokenlist.NewAssembler(r.registry.PrioritySymbol, r.logger, tokenlist.WithClock(now))
	}
}

// NewRunner NewRunner: принимает cfg, реестр и logger
func NewRunner(cfg *config.Config, reg *registry.Registry, log *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		registry:  reg,
		logger:    log,
		metrics:   metrics.NewCollector(),
		snapshots: export.NewSnapshotWriter(cfg.SrcDir, log),
		store:     tokenlist.NewStore(cfg.SrcDir, cfg.ListsDir, log),
		assembler: tokenlist.NewAssembler(reg.PrioritySymbol, log),
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = source.DefaultTimeout
	r.fetcher = source.NewFetcher(httpClient, cfg.Retries, log)
	r.dial = r.dialEVM

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics возвращает коллектор метрик запуска
func (r *Runner) Metrics() *metrics.Collector {
	return r.metrics
}

func (r *Runner) dialEVM(ctx context.Context, urls []string, observer evm.Observer) (evm.Caller, error) {
	return evm.NewClient(ctx, evm.Options{
		URLs:       urls,
		Timeout:    r.cfg.RequestTimeout(),
		Retries:    r.cfg.Retries,
		HTTPClient: rpcHTTPClient(),
		Observer:   observer,
	}, r.logger)
}

func rpcHTTPClient() *http.Client {
	// таймаут задается на каждый запрос через context
	return cleanhttp.DefaultPooledClient()
}

// Fetch загружает список источника, сверяет его с контрактами и целиком
// заменяет снимок src/tokens/<source>.json. При любой ошибке снимок не трогается.
func (r *Runner) Fetch(ctx context.Context, sourceID string) (*report.FetchSummary, error) {
	start := time.Now()
	defer logger.TrackPerformance(r.logger, "fetch "+sourceID)()

	src, err := r.registry.Source(sourceID)
	if err != nil {
		return nil, err
	}
	chain, err := r.registry.Chain(src.ChainID)
	if err != nil {
		return nil, err
	}

	candidates, fetchStats, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	r.metrics.RecordFetch(src.ID, fetchStats)

	urls := chain.RPC
	if len(r.cfg.RPCList) > 0 {
		urls = r.cfg.RPCList
	}
	caller, err := r.dial(ctx, urls, r.metrics)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", chain.Name, err)
	}
	defer caller.Close()

	orc, err := oracle.New(caller, oracle.Config{
		Multicall3:  chain.Multicall3,
		BatchSize:   r.cfg.BatchSize,
		Concurrency: r.cfg.BatchConcurrency,
		Observer:    r.metrics,
	}, r.logger)
	if err != nil {
		return nil, err
	}

	addresses := make([]string, len(candidates))
	for i, c := range candidates {
		addresses[i] = c.Address
	}
	resolution, err := orc.Resolve(ctx, addresses)
	if err != nil {
		return nil, err
	}

	result := reconcile.New(r.logger).Reconcile(candidates, resolution)
	r.metrics.RecordReconcile(src.ID, result.Stats)

	// отмена до записи: предыдущий снимок остается
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output, err := r.snapshots.Write(src.ID, result.Entries)
	if err != nil {
		return nil, err
	}
	r.metrics.RecordPublished(src.ID, len(result.Entries))

	return &report.FetchSummary{
		Source:     src.ID,
		ChainID:    src.ChainID,
		Fetch:      fetchStats,
		Reconcile:  result.Stats,
		Unresolved: resolution.Failed(),
		Output:     output,
		Duration:   time.Since(start),
	}, nil
}

// Checksum приводит адреса снимка списка к EIP-55
func (r *Runner) Checksum(_ context.Context, listName string) (int, error) {
	meta, err := r.registry.List(listName)
	if err != nil {
		return 0, err
	}
	return r.store.Checksum(listName, meta)
}

// Generate собирает lists/<list>.json из снимка с повышением версии
func (r *Runner) Generate(ctx context.Context, listName, bump string) (*report.ListSummary, error) {
	return r.generate(ctx, listName, bump, false)
}

// MakeList checksum, затем generate с проверкой документа перед записью
func (r *Runner) MakeList(ctx context.Context, listName, bump string) (*report.ListSummary, error) {
	changed, err := r.Checksum(ctx, listName)
	if err != nil {
		return nil, err
	}
	summary, err := r.generate(ctx, listName, bump, true)
	if err != nil {
		return nil, err
	}
	summary.Checksummed = changed
	return summary, nil
}

func (r *Runner) generate(ctx context.Context, listName, bump string, validate bool) (*report.ListSummary, error) {
	defer logger.TrackPerformance(r.logger, "generate "+listName)()

	meta, err := r.registry.List(listName)
	if err != nil {
		return nil, err
	}
	kind, err := tokenlist.ParseBump(bump)
	if err != nil {
		return nil, err
	}

	tokens, err := r.store.ReadSource(listName)
	if err != nil {
		return nil, err
	}
	prev, err := r.store.PreviousVersion(listName)
	if err != nil {
		return nil, err
	}

	list, err := r.assembler.Assemble(meta, prev, kind, tokens)
	if err != nil {
		return nil, err
	}
	if validate {
		if err := tokenlist.Validate(list); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	output, err := r.store.WriteList(listName, list)
	if err != nil {
		return nil, err
	}
	r.metrics.RecordPublished(listName, len(list.Tokens))

	return &report.ListSummary{
		List:    listName,
		Version: list.Version.String(),
		Tokens:  len(list.Tokens),
		Output:  output,
	}, nil
}

// Finish записывает длительность команды и, если настроен pushgateway, отправляет метрики.
// Ошибка отправки только логируется.
func (r *Runner) Finish(ctx context.Context, command string, started time.Time, runErr error) {
	r.metrics.RecordRun(command, time.Since(started), runErr)
	if r.cfg.PushgatewayURL == "" {
		return
	}
	if err := r.metrics.Push(ctx, r.cfg.PushgatewayURL, metricsJob); err != nil {
		r.logger.Warn("Failed to push metrics", zap.String("url", r.cfg.PushgatewayURL), zap.Error(err))
	}
}
