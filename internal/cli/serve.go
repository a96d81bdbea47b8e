package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	fiberzap "github.com/gofiber/contrib/v3/zap"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dreamdigital/landing/internal/config"
	"github.com/dreamdigital/landing/internal/content"
	"github.com/dreamdigital/landing/internal/geoip"
	"github.com/dreamdigital/landing/internal/handlers"
	"github.com/dreamdigital/landing/internal/logging"
	"github.com/dreamdigital/landing/internal/realtime"
	"github.com/dreamdigital/landing/internal/submission"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the landing page web server",
	Long: `Start the web server: landing page, lead submissions, tracking beacons,
the admin API and the live analytics socket.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default 3000)")
}

func runServe(ctx context.Context) error {
	log := logging.Named("serve")

	svc, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	cfg := svc.cfg
	if servePort != "" {
		cfg.Port = servePort
	}

	if err := geoip.Init(cfg.DataDir); err != nil {
		log.Warn("geoip unavailable", zap.Error(err))
	}
	defer func() { _ = geoip.Close() }()

	site, err := loadContent(cfg)
	if err != nil {
		return err
	}
	provider := content.NewProvider(site)

	hub := realtime.NewHub()
	svc.analytics.SetObserver(hub.Publish)

	deps := &handlers.Deps{
		Config:    cfg,
		Content:   provider,
		Analytics: svc.analytics,
		Ledger:    svc.ledger,
		Consent:   svc.consent,
		Flow:      newFlow(cfg, svc),
		Hub:       hub,
		Views:     handlers.NewViews(),
	}
	if !cfg.AdminEnabled() {
		log.Warn("admin password hash or jwt secret missing; admin API disabled")
	}

	app := newApp(deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	if cfg.ContentFile != "" {
		g.Go(func() error { return content.Watch(gctx, cfg.ContentFile, provider) })
	}
	g.Go(func() error {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("storage", cfg.Storage))
		return app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true})
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// newFlow picks the live verifier and relay when credentials are configured
func newFlow(cfg *config.Config, svc *services) *submission.Flow {
	log := logging.Named("serve")

	var verifier submission.Verifier = submission.TokenVerifier{}
	if cfg.Recaptcha.SecretKey != "" {
		verifier = submission.NewRecaptchaVerifier(cfg.Recaptcha.SecretKey, cfg.Recaptcha.VerifyURL, cfg.Recaptcha.MinScore)
	} else {
		log.Warn("recaptcha secret not set; accepting any non-empty token")
	}

	var relay submission.Relay = submission.LogRelay{}
	if cfg.EmailJS.ServiceID != "" && cfg.EmailJS.PublicKey != "" {
		relay = submission.NewEmailJSRelay(cfg.EmailJS.Endpoint, cfg.EmailJS.ServiceID, cfg.EmailJS.PublicKey, cfg.EmailJS.PrivateKey)
	} else {
		log.Warn("emailjs not configured; submissions are logged instead of mailed")
	}

	return submission.NewFlow(verifier, relay, svc.ledger, svc.analytics,
		submission.WithChannel(cfg.EmailJS.TemplateID),
		submission.WithTimeout(cfg.RelayTimeout),
	)
}

// newApp builds the Fiber app with middleware and routes
func newApp(d *handlers.Deps) *fiber.App {
	app := fiber.New(createFiberConfig("DREAM DIGITAL landing", d.Views))

	app.Use(recoverer.New())
	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logging.Named("http"),
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
	}))
	if len(d.Config.TrustedOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     d.Config.TrustedOrigins,
			AllowCredentials: true,
		}))
	}

	handlers.Register(app, d)

	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})
	return app
}

