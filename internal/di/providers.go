package di

import (
	"context"
	"fmt"
	"time"

	"CPIReg/internal/domain/models"
	"CPIReg/internal/domain/repository"
	"CPIReg/internal/handler/web"
	internalrepo "CPIReg/internal/repository"
	"CPIReg/internal/service/bls"
	svcmetrics "CPIReg/internal/service/metrics"
	"CPIReg/internal/service/ratelimit"
	"CPIReg/internal/service/report"
	"CPIReg/internal/service/sample"
	"CPIReg/internal/service/tabular"
	"CPIReg/internal/usecase"
	"CPIReg/pkg/cache"
	pkgch "CPIReg/pkg/clickhouse"
	"CPIReg/pkg/config"
	xhttp "CPIReg/pkg/http"
	pkgkafka "CPIReg/pkg/kafka"
	"CPIReg/pkg/logger"
	"CPIReg/pkg/metrics"
	"CPIReg/pkg/server"
)

// uploadHeadroom covers multipart framing and the other form fields.
const uploadHeadroom = 1 << 20

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics returns the Prometheus recorder, or nil when metrics are disabled.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.Default()
}

// ProvideHTTPClient creates the outbound client used by the index provider.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Provider.Timeout),
		xhttp.WithUserAgent(cfg.Provider.UserAgent),
	)
}

// ProvideIndexProvider creates the live BLS provider.
func ProvideIndexProvider(cfg *config.Config, client *xhttp.Client, l *logger.Logger) repository.IndexProvider {
	p := bls.New(cfg.Provider.URL, cfg.Provider.SeriesID, client, l)
	if !cfg.Metrics.Enabled {
		return p
	}
	return svcmetrics.Instrument(p)
}

// ProvidePipelineConfig maps configuration onto pipeline defaults.
func ProvidePipelineConfig(cfg *config.Config) usecase.PipelineConfig {
	return usecase.PipelineConfig{
		SampleIndex: sample.CPI(),
		MinRows:     cfg.Pipeline.MinRows,
		Columns: tabular.ColumnSpec{
			DateColumn:  cfg.Performance.DateColumn,
			ValueColumn: cfg.Performance.ValueColumn,
		},
		Format: report.FormatOptions{
			Decimals:       cfg.Report.Decimals,
			ResponseLabel:  "performance",
			PredictorLabel: "index",
		},
		Plot: report.PlotOptions{
			Title:  cfg.Report.Title,
			XLabel: cfg.Report.IndexLabel,
			YLabel: cfg.Report.PerformanceLabel,
			Width:  cfg.Report.Width,
			Height: cfg.Report.Height,
		},
	}
}

// ProvidePipeline creates the regression pipeline.
func ProvidePipeline(pcfg usecase.PipelineConfig, provider repository.IndexProvider) *usecase.Pipeline {
	return usecase.NewPipeline(pcfg, provider)
}

// ProvideCache creates the report cache: memory only, or memory over Redis.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MaxItems),
			cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
		), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Cache.MaxItems),
		cache.WithLayeredMemoryTTL(cfg.Cache.TTL),
	), nil
}

// ProvideReportStore keeps finished reports for the plot links.
func ProvideReportStore(c cache.Service, cfg *config.Config) repository.ReportStore {
	return internalrepo.NewCacheReportStore(c, cfg.Cache.TTL)
}

// ProvideClickHouseClient connects to ClickHouse and prepares the archive schema.
// It returns nil when the archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	ch := cfg.Archive.ClickHouse
	client, err := pkgch.NewClient(context.Background(),
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithAsyncInsert(ch.AsyncInsert, ch.WaitForAsync),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		pkgch.WithCreateDatabase(true),
		pkgch.WithSchema(ch.SchemaTimeout, internalrepo.SchemaStatements(internalrepo.DefaultRunTables)...),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: %w", err)
	}
	return client, nil
}

// ProvideRunArchive returns nil when no ClickHouse client is configured.
func ProvideRunArchive(client *pkgch.Client) repository.RunArchive {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseArchive(client.DB(), internalrepo.DefaultRunTables, client.Close)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when events are disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Events.Enabled {
		return nil, nil
	}
	k := cfg.Events.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithBatchSize(k.BatchSize),
		pkgkafka.WithBatchTimeout(k.Linger),
		pkgkafka.WithTimeouts(k.WriteTimeout, k.WriteTimeout),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithAsync(k.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher publishes run events and, when enabled, ships
// aggregated error logs through the same producer.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config, l *logger.Logger) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	if cfg.Logging.Collector.Enabled {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.CountThreshold,
			Topic:          cfg.Events.Kafka.LogTopic,
			Publisher:      producer,
		})
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Events.Kafka.Topic)
}

// ProvideLimiter returns nil when rate limiting is disabled.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Rate, cfg.RateLimit.Burst)
}

// ProvideWebHandler creates the form and JSON API handler.
func ProvideWebHandler(svc *usecase.RegressionService, limiter *ratelimit.Limiter, pcfg usecase.PipelineConfig, cfg *config.Config, l *logger.Logger) *web.Handler {
	return web.NewHandler(svc, limiter, web.Options{
		APIKey:            cfg.Provider.APIKey,
		DefaultRange:      models.DateRange{StartYear: cfg.Provider.StartYear, EndYear: cfg.Provider.EndYear},
		PerformancePath:   cfg.Performance.Path,
		SyntheticFallback: cfg.Performance.SyntheticFallback,
		MaxUploadBytes:    cfg.Server.MaxUploadBytes,
		Format:            pcfg.Format,
		Title:             cfg.Report.Title,
	}, l)
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(h *web.Handler, cfg *config.Config, l *logger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithBodyLimit(cfg.Server.MaxUploadBytes + uploadHeadroom),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, 5*time.Second))
	}
	return xhttp.NewServer(h, l, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, srv *xhttp.Server, svc *usecase.RegressionService, c cache.Service, l *logger.Logger) *server.App {
	return server.New(cfg, srv, svc, c, l)
}

// Regressor bundles what the one-shot command needs.
type Regressor struct {
	Service *usecase.RegressionService
	Log     *logger.Logger
	cache   cache.Service
}

// ProvideRegressor creates the one-shot bundle.
func ProvideRegressor(svc *usecase.RegressionService, l *logger.Logger, c cache.Service) *Regressor {
	return &Regressor{Service: svc, Log: l, cache: c}
}

// Close flushes collected logs before the producer goes away, then releases clients.
func (r *Regressor) Close() error {
	r.Log.RemoveCollector()
	err := r.Service.Close()
	if cerr := r.cache.Close(); err == nil {
		err = cerr
	}
	return err
}
