package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/prudhivi99/guitar-store/internal/cache"
	"github.com/prudhivi99/guitar-store/internal/client"
	"github.com/prudhivi99/guitar-store/internal/config"
	"github.com/prudhivi99/guitar-store/internal/consumer"
	"github.com/prudhivi99/guitar-store/internal/db"
	"github.com/prudhivi99/guitar-store/internal/discovery"
	"github.com/prudhivi99/guitar-store/internal/events"
	"github.com/prudhivi99/guitar-store/internal/graphql"
	"github.com/prudhivi99/guitar-store/internal/handlers"
	"github.com/prudhivi99/guitar-store/internal/logger"
	"github.com/prudhivi99/guitar-store/internal/messaging"
	"github.com/prudhivi99/guitar-store/internal/metrics"
	"github.com/prudhivi99/guitar-store/internal/publisher"
	"github.com/prudhivi99/guitar-store/internal/service"
	"github.com/prudhivi99/guitar-store/internal/storage"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, closer := logger.Setup(cfg.SlogLevel(), cfg.LogFile)
		defer closer.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return serve(ctx, cfg, log)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	m := metrics.New()

	database, err := db.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()
	if migrateOnStart {
		if err := database.MigrateUp(ctx); err != nil {
			return err
		}
	}

	store := openCache(ctx, cfg.Cache, log)
	defer store.Close()

	bus := events.New(events.WithOrigin(cfg.Consul.ServiceID), events.WithMetrics(m))
	defer bus.Shutdown()

	identity, err := client.NewIdentityClient(ctx, cfg.Identity)
	if err != nil {
		return err
	}

	brandRepo := db.NewCachedBrandRepository(db.NewBrandRepository(database), store, m, log)
	productRepo := db.NewProductRepository(database)

	if cfg.Events.AMQPURL != "" {
		mq, err := startFanOut(ctx, cfg.Events, bus, brandRepo, log)
		if err != nil {
			return err
		}
		defer mq.Close()
	}

	svc := handlers.Services{
		Brands:     service.NewBrandService(brandRepo, bus, log),
		Categories: service.NewCategoryService(db.NewCategoryRepository(database), brandRepo, bus, log),
		Products:   service.NewProductService(productRepo, brandRepo, bus, log),
		Orders:     service.NewOrderService(db.NewOrderRepository(database), bus, log),
		OrderItems: service.NewOrderItemService(db.NewOrderItemRepository(database), bus, log),
		Reviews:    service.NewReviewService(db.NewReviewRepository(database), productRepo, bus, log),
		Users:      service.NewUserService(db.NewUserRepository(database), identity, bus, log),
	}

	gql, err := graphql.New(graphql.Services(svc), log)
	if err != nil {
		return err
	}

	opts := handlers.Options{
		PublicBaseURL:  cfg.PublicBaseURL,
		UploadMaxBytes: cfg.Upload.MaxBytes,
		CORSOrigins:    cfg.CORSOrigins,
		GraphQL:        gql,
		Playground:     graphql.Playground("/graphql"),
		Metrics:        m,
		Ready:          database.Ping,

		ElectricCategory: cfg.Shelves.ElectricCategory,
		AcousticCategory: cfg.Shelves.AcousticCategory,
	}
	if cfg.S3.Enabled() {
		opts.Uploader = storage.NewS3Uploader(cfg.S3)
	} else {
		log.Warn("object storage not configured, uploads disabled")
	}
	router := handlers.NewRouter(svc, bus, identity, opts, log)

	if cfg.Consul.Addr != "" {
		deregister := register(cfg.Consul, log)
		defer deregister()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("catalog service starting", "addr", cfg.HTTPAddr, "routes", len(router.Routes()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	// Push streams only end when the bus closes their channels.
	bus.Shutdown()
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openCache connects to Redis when configured. An unreachable Redis degrades
// to the in-memory cache instead of failing startup.
func openCache(ctx context.Context, cfg config.Cache, log *slog.Logger) cache.Store {
	if cfg.RedisAddr == "" {
		log.Info("using in-memory cache", "max_entries", cfg.MaxEntries, "ttl", cfg.TTL)
		return cache.NewMemoryCache(cfg.MaxEntries, cfg.TTL)
	}
	rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.TTL)
	if err != nil {
		log.Warn("redis unavailable, falling back to in-memory cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemoryCache(cfg.MaxEntries, cfg.TTL)
	}
	return rc
}

// startFanOut relays local change events to the cluster exchange and feeds
// events from other instances back into the bus.
func startFanOut(ctx context.Context, cfg config.Events, bus *events.Bus, brands consumer.BrandCache, log *slog.Logger) (io.Closer, error) {
	mq, err := messaging.NewRabbitMQ(cfg.AMQPURL, log)
	if err != nil {
		return nil, err
	}
	if err := mq.DeclareExchange(cfg.Exchange); err != nil {
		mq.Close()
		return nil, err
	}
	queue, err := mq.BindInstanceQueue(cfg.Exchange)
	if err != nil {
		mq.Close()
		return nil, err
	}
	deliveries, err := mq.Consume(queue)
	if err != nil {
		mq.Close()
		return nil, err
	}

	relay := publisher.NewEventRelay(mq, cfg.Exchange, log)
	bus.Observe(relay.Enqueue)
	go relay.Run(ctx)
	go consumer.NewEventConsumer(bus, brands, bus.Origin(), log).Process(deliveries)

	return closerFunc(func() error {
		mq.Close()
		return nil
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func register(cfg config.Consul, log *slog.Logger) func() {
	consul, err := discovery.NewConsulClient(cfg.Addr, log)
	if err != nil {
		log.Warn("service registration skipped", "error", err)
		return func() {}
	}
	err = consul.Register(discovery.ServiceConfig{
		Name:    cfg.ServiceName,
		ID:      cfg.ServiceID,
		Address: cfg.ServiceAddress,
		Port:    cfg.ServicePort,
		Tags:    []string{"api", "catalog", "graphql"},
		Meta:    map[string]string{"origin": cfg.ServiceID},
	})
	if err != nil {
		log.Warn("service registration failed", "error", err)
		return func() {}
	}
	return func() {
		if err := consul.Deregister(cfg.ServiceID); err != nil {
			log.Warn("service deregistration failed", "error", err)
		}
	}
}
