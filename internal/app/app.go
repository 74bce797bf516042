package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/pos-console/internal/backend"
	"github.com/xenking/pos-console/internal/domain/order"
	"github.com/xenking/pos-console/internal/domain/ordercode"
	"github.com/xenking/pos-console/internal/handler"
	"github.com/xenking/pos-console/internal/session"
	"github.com/xenking/pos-console/pkg/health"
	"github.com/xenking/pos-console/pkg/httpmiddleware"
)

const serviceName = "pos-console"

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.Backend.URL),
	)

	client, err := backend.New(backend.Config{
		BaseURL:        cfg.Backend.URL,
		Timeout:        cfg.Backend.Timeout,
		TracerProvider: m.TracerProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create backend client")
	}

	// Backend ports.
	catalog := backend.NewCatalog(client)
	customers := backend.NewCustomers(client)
	orders := backend.NewOrders(client)

	// Domain services.
	assembler, err := order.NewAssembler(customers, orders, order.AssemblerConfig{
		Admin:          order.Reference{ID: &cfg.Order.AdminID, Name: cfg.Order.AdminName},
		PaymentMethod:  order.Reference{ID: &cfg.Order.PaymentID, Name: cfg.Order.PaymentName},
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create order assembler")
	}
	sess := session.New(ordercode.NewSequencer(cfg.Order.FallbackCode), assembler)

	// An unreachable backend must not keep the console from starting; the
	// first placement then uses the fallback code.
	seedCtx, cancel := context.WithTimeout(zctx.Base(ctx, lg), cfg.Backend.Timeout)
	if err := sess.SeedCode(seedCtx, orders); err != nil {
		lg.Warn("Order code not seeded, fallback will be used", zap.Error(err))
	}
	cancel()

	// Health check service.
	healthSvc := health.New()
	healthSvc.Register(health.Check{
		Name:    "backend",
		Kind:    health.Readiness,
		Timeout: cfg.Backend.Timeout,
		Func:    health.PingCheck(client),
	})
	healthSvc.Register(health.Check{
		Name: "goroutines",
		Kind: health.Liveness,
		Func: health.GoroutineCountCheck(10000),
	})
	healthSvc.Register(health.Check{
		Name: "gc",
		Kind: health.Liveness,
		Func: health.GCMaxPauseCheck(time.Second),
	})
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	h := handler.NewHandler(catalog, customers, orders, sess)

	router := chi.NewRouter()
	router.Use(
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			Origins:          cfg.CORS.Origins,
			Headers:          []string{"Content-Type", httpmiddleware.RequestIDHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Instrument(serviceName, m.TracerProvider(), m.MeterProvider()),
		httpmiddleware.LogRequests(),
	)
	router.Get("/livez", healthSvc.Live)
	router.Get("/readyz", healthSvc.Ready)
	router.Mount("/api", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		// Placement makes up to three sequential backend calls.
		WriteTimeout:   3*cfg.Backend.Timeout + 5*time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Addr:           cfg.Addr,
		Handler:        router,
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
