package bootstrap

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/adapters/cache"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/adapters/events"
	transporthttp "github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/adapters/http"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/adapters/memstore"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/adapters/metrics"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/adapters/probe"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/adapters/registry"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/adapters/secrets"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/application"
	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/ports"
)

type Runtime struct {
	httpServer *stdhttp.Server
	service    *application.Service
	publisher  ports.EventPublisher
	autoStart  []string
	logger     *log.Logger
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Writer(), cfg.ServiceID+" ", log.LstdFlags|log.LUTC)

	reg, err := registry.New(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
	}

	var creds ports.CredentialStore
	var dashCache ports.DashboardCache
	if redisClient != nil {
		creds = secrets.NewRedis(redisClient)
		dashCache = cache.NewRedis(redisClient)
	} else {
		creds = secrets.NewStatic(cfg.Credentials)
		dashCache = cache.NewMemory()
	}

	var publisher ports.EventPublisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	promReg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	meter := metrics.New(promReg)

	prober := probe.NewHTTPProber(creds, probe.Config{Timeout: cfg.ProbeTimeout})
	repos := memstore.NewRepositories()

	svc := application.NewService(application.Config{
		ProbeTimeout:          cfg.ProbeTimeout,
		CacheTTL:              cfg.CacheTTL,
		MonitorInterval:       cfg.MonitorInterval,
		AlertSuccessThreshold: cfg.AlertSuccessThreshold,
	}, application.Dependencies{
		Registry: reg,
		Prober:   prober,
		Stats:    repos.Stats,
		Results:  repos.Results,
		Cache:    dashCache,
		Events:   publisher,
		Metrics:  meter,
		Audits:   repos.Audits,
		Logger:   logger,
	})

	verifier := security.NewVerifier(cfg.JWTSecret)
	handler := transporthttp.NewHandler(svc, reg)
	router := transporthttp.NewRouter(handler, verifier, promReg, logger)

	return &Runtime{
		httpServer: &stdhttp.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		service:   svc,
		publisher: publisher,
		autoStart: cfg.AutoStart,
		logger:    logger,
	}, nil
}

func (r *Runtime) Run(ctx context.Context) error {
	for _, name := range r.autoStart {
		if _, err := r.service.StartContinuous(ctx, application.Actor{ID: "system", Role: "system"}, name, 0); err != nil {
			r.logger.Printf("auto-start monitor for %s: %v", name, err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()
	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.Printf("runtime error: %v", err)
	}

	r.service.StopAll()
	if err := r.publisher.Close(); err != nil {
		r.logger.Printf("close publisher: %v", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.httpServer.Shutdown(shutdownCtx)
}
