package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zhima-Mochi/acuotaz-checkout/internal/application/checkout"
	apppay "github.com/Zhima-Mochi/acuotaz-checkout/internal/application/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/config"
	dompay "github.com/Zhima-Mochi/acuotaz-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/catalog"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/id"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/observability"
	"github.com/Zhima-Mochi/acuotaz-checkout/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/acuotaz-checkout/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/acuotaz-checkout/internal/presentation/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the checkout HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	zl, err := logging.NewLogger(cfg.ServiceName, cfg.Env, logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	appLogger := zaplogger.New(zl)
	systemLogger := zaplogger.New(logging.WithTrace(zl, logging.SystemTraceID, logging.SystemSpanID))

	shutdownTracing, err := oteltrace.Setup(cfg.TraceExporter)
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	tel := infraobs.New(infraobs.Options{
		Tracer:   oteltrace.New(cfg.ServiceName),
		Logger:   appLogger,
		Registry: prometrics.New(promReg, "", ""),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	methods, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	redirect, err := apppay.NewRedirectBuilder(cfg.RedirectBaseURL)
	if err != nil {
		return err
	}

	bus := outbox.NewBus(tel, outbox.WithContextDecorator(workerpresentation.EventContext(appLogger)))
	bus.Start(ctx)
	apppay.NewAuditWorker(bus, tel).Start()

	orders := memory.NewOrderRepository()
	processor := apppay.NewProcessor(methods, store, redirect, bus, tel)
	handler := httppresentation.NewHandler(
		checkout.NewRegisterOrderUseCase(orders, store, id.NewUUIDGenerator(), tel),
		checkout.NewSubmitPaymentUseCase(orders, store, processor, tel),
		tel,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		systemLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
			observability.F("store_backend", cfg.Store.Backend),
			observability.F("redirect_base_url", redirect.Base()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			systemLogger.Error("http_server_error", observability.Err(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error", observability.Err(err))
	} else {
		systemLogger.Info("http_server_stopped")
	}
	bus.Stop(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		systemLogger.Warn("tracer_shutdown_error", observability.Err(err))
	}
	return nil
}

// openStore returns the configured instrument store and its close function.
func openStore(ctx context.Context, cfg *config.Config) (dompay.InstrumentStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewInstrumentStore(db)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil
	default:
		return memory.NewInstrumentStore(), func() {}, nil
	}
}

func loadCatalog(cfg *config.Config) (dompay.Catalog, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.CatalogFile)
}
