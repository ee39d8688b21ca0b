package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/quote-assistant/internal/config"
	"github.com/kirillkom/quote-assistant/internal/core/classifier"
	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
	"github.com/kirillkom/quote-assistant/internal/core/usecase"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/cache"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/llm/offline"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/policyfile"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/storage/minio"
	"github.com/kirillkom/quote-assistant/internal/observability/metrics"
)

// App is the fully wired quote pipeline served by the API process.
type App struct {
	Config config.Config

	Registry   *jobs.Registry
	Policies   *policyfile.Source
	Classifier ports.DeductionClassifier
	QuoteUC    ports.QuoteGenerator
	Acceptor   ports.QuoteAcceptor
	Archive    ports.QuoteArchive

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, registerer prometheus.Registerer) (*App, error) {
	pipelineMetrics := metrics.NewPipelineMetrics("api", registerer)
	modelExecutor := newExecutor(cfg, resilience.LanguageModelConfig()).WithObserver(pipelineMetrics)
	queueExecutor := newExecutor(cfg, resilience.MessagingConfig()).WithObserver(pipelineMetrics)

	registry := jobs.NewRegistry()

	policies, err := policyfile.Load(cfg.PricingPolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load pricing policy: %w", err)
	}

	db, err := openSchema(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	archive, err := newArchive(cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init quote archive: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: queueExecutor})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	generator, reasoner, err := NewLanguageModel(ctx, cfg, registry, modelExecutor)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init language model: %w", err)
	}

	quotes := postgres.NewQuoteRepository(db, registry)
	benchmarks := cache.NewBenchmarkCache(postgres.NewBenchmarkRepository(db), cfg.BenchmarkCacheSize, cfg.BenchmarkCacheTTL)
	deductions := classifier.New(reasoner)

	quoteUC := usecase.NewGenerateQuoteUseCase(
		usecase.NewInterpretUseCase(generator, registry, cfg.LLMTimeout),
		registry,
		deductions,
		policies,
		postgres.NewRateRepository(db),
		benchmarks,
		quotes,
		postgres.NewMultiplierRepository(db),
		limitsFromConfig(cfg),
	).WithSinks(archive, queue, quotes).WithObserver(pipelineMetrics)

	return &App{
		Config:     cfg,
		Registry:   registry,
		Policies:   policies,
		Classifier: deductions,
		QuoteUC:    quoteUC,
		Acceptor:   usecase.NewAcceptQuoteUseCase(quotes, queue, cfg.SinkTimeout),
		Archive:    archive,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// Worker consumes quote events and keeps industry benchmarks current.
type Worker struct {
	Config    config.Config
	Queue     ports.EventPublisher
	RefreshUC ports.BenchmarkRefresher

	closeFn func()
}

func NewWorker(ctx context.Context, cfg config.Config, observer resilience.Observer) (*Worker, error) {
	executor := newExecutor(cfg, resilience.MessagingConfig())
	if observer != nil {
		executor = executor.WithObserver(observer)
	}

	db, err := openSchema(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	// The API process owns the benchmark cache; its TTL bounds staleness.
	refreshUC := usecase.NewRefreshBenchmarksUseCase(postgres.NewBenchmarkRepository(db), nil)

	return &Worker{
		Config:    cfg,
		Queue:     queue,
		RefreshUC: refreshUC,
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (w *Worker) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// NewLanguageModel selects the interpretation generator and, when enabled, the
// deduction reasoner for the configured provider.
func NewLanguageModel(ctx context.Context, cfg config.Config, registry *jobs.Registry, executor *resilience.Executor) (ports.TextGenerator, ports.DeductionReasoner, error) {
	var (
		generator ports.TextGenerator
		reasoner  ports.DeductionReasoner
	)

	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "", "ollama":
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, executor)
		generator = ollama.NewGenerator(client)
		reasoner = ollama.NewReasoner(client)
	case "gemini":
		g, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, executor)
		if err != nil {
			return nil, nil, err
		}
		generator = g
	case "offline":
		g := offline.New(registry)
		generator = g
		reasoner = g
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}

	if !cfg.ReasonerEnabled {
		reasoner = nil
	}
	return generator, reasoner, nil
}

// newExecutor applies the operator overrides on top of a per-dependency preset.
func newExecutor(cfg config.Config, rc resilience.Config) *resilience.Executor {
	if cfg.ResilienceRetryAttempts > 0 {
		rc.RetryMaxAttempts = cfg.ResilienceRetryAttempts
	}
	rc.BreakerEnabled = cfg.ResilienceBreakerEnabled
	return resilience.NewExecutor(rc)
}

func newArchive(cfg config.Config) (ports.QuoteArchive, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.ArchiveBackend)) {
	case "", "localfs":
		return localfs.New(cfg.StoragePath)
	case "minio", "s3":
		return minio.New(minio.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.ArchiveBackend)
	}
}

func openSchema(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := postgres.OpenDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func limitsFromConfig(cfg config.Config) domain.PipelineLimits {
	return domain.PipelineLimits{
		StoreTimeout:         cfg.StoreTimeout,
		SinkTimeout:          cfg.SinkTimeout,
		MaxDescriptionLength: cfg.MaxDescriptionLength,
	}
}
