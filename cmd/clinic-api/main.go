package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-admin/internal/cache"
	"github.com/jwalitptl/clinic-admin/internal/config"
	"github.com/jwalitptl/clinic-admin/internal/email"
	appointmentHandler "github.com/jwalitptl/clinic-admin/internal/handler/appointment"
	clinicHandler "github.com/jwalitptl/clinic-admin/internal/handler/clinic"
	doctorHandler "github.com/jwalitptl/clinic-admin/internal/handler/doctor"
	"github.com/jwalitptl/clinic-admin/internal/handler/health"
	patientHandler "github.com/jwalitptl/clinic-admin/internal/handler/patient"
	prommw "github.com/jwalitptl/clinic-admin/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-admin/internal/middleware"
	"github.com/jwalitptl/clinic-admin/internal/repository/postgres"
	"github.com/jwalitptl/clinic-admin/internal/router"
	"github.com/jwalitptl/clinic-admin/internal/schedule"
	appointmentService "github.com/jwalitptl/clinic-admin/internal/service/appointment"
	clinicService "github.com/jwalitptl/clinic-admin/internal/service/clinic"
	doctorService "github.com/jwalitptl/clinic-admin/internal/service/doctor"
	"github.com/jwalitptl/clinic-admin/internal/service/notification"
	patientService "github.com/jwalitptl/clinic-admin/internal/service/patient"
	"github.com/jwalitptl/clinic-admin/pkg/auth"
	"github.com/jwalitptl/clinic-admin/pkg/logger"
	"github.com/jwalitptl/clinic-admin/pkg/messaging"
	"github.com/jwalitptl/clinic-admin/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-admin/pkg/metrics"
	"github.com/jwalitptl/clinic-admin/pkg/validator"
)

const metricsNamespace = "clinic"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "clinic-api",
		Short:        "Clinic administration API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yml (default: search . ./config /app /app/config)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(slotsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func slotsCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the bookable start times of an availability window",
		RunE: func(cmd *cobra.Command, args []string) error {
			times, err := schedule.Slots(from, to)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(times, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "08:00", "window start (HH:mm)")
	cmd.Flags().StringVar(&to, "to", "18:00", "window end, exclusive (HH:mm)")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadConfig()
}

func runServer(cfg *config.Config) error {
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	loc, err := cfg.Server.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg, metricsNamespace)

	broker, err := newBroker(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if broker != nil {
		defer broker.Close()
	}

	listing := cache.NewListingCache(cache.Options{
		TTL:             cfg.Cache.ListingTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
		Broker:          broker,
		Channel:         cfg.Redis.Channel,
		Metrics:         m,
		Logger:          log,
	})
	go func() {
		if err := listing.Listen(ctx); err != nil {
			log.Error().Err(err).Msg("listing invalidation listener stopped")
		}
	}()

	var notifier notification.Service
	if cfg.SMTP.Enabled {
		notifier = notification.NewService(email.NewSMTPService(cfg.SMTP), m, loc, log)
	}

	v := validator.New()
	tokens := auth.NewJWTService(
		cfg.Session.Secret,
		cfg.Session.Issuer,
		time.Duration(cfg.Session.ExpiryHours)*time.Hour,
	)

	clinicRepo := postgres.NewClinicRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	clinicSvc := clinicService.NewService(clinicRepo, tokens, v, log)
	doctorSvc := doctorService.NewService(doctorRepo, listing, v, log)
	patientSvc := patientService.NewService(patientRepo, listing, v, log)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, listing, notifier, v, appointmentService.Options{
		Location:            loc,
		EnforceAvailability: cfg.Appointments.EnforceAvailability,
		Metrics:             m,
		Logger:              log,
	})

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	routerConfig := router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     corsConfig,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(tokens),
		router.Handlers{
			Health:      health.NewHandler(db, reg),
			Clinic:      clinicHandler.NewHandler(clinicSvc),
			Doctor:      doctorHandler.NewHandler(doctorSvc),
			Patient:     patientHandler.NewHandler(patientSvc),
			Appointment: appointmentHandler.NewHandler(appointmentSvc),
		},
		prommw.New(reg, metricsNamespace),
		log,
		routerConfig,
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("timezone", loc.String()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

// newBroker connects to Redis when a URL is configured. Without one the
// listing cache only invalidates locally.
func newBroker(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (messaging.Broker, error) {
	if cfg.URL == "" {
		log.Info().Msg("redis not configured, cache invalidation stays local")
		return nil, nil
	}
	broker, err := redis.NewRedisBroker(ctx, redis.Config{
		URL:          cfg.URL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}, log)
	if err != nil {
		return nil, err
	}
	return broker, nil
}
