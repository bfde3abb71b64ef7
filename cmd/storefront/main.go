// Command storefront is a headless demo client: it restores the session,
// browses the catalogue, and reports cart and wishlist state against a
// configured storefront API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/steve-ongera/amazon/internal/api"
	"github.com/steve-ongera/amazon/internal/cart"
	"github.com/steve-ongera/amazon/internal/checkout"
	"github.com/steve-ongera/amazon/internal/config"
	"github.com/steve-ongera/amazon/internal/credstore"
	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/internal/notify"
	"github.com/steve-ongera/amazon/internal/session"
	"github.com/steve-ongera/amazon/internal/wishlist"
	"github.com/steve-ongera/amazon/pkg/httpclient"
	"github.com/steve-ongera/amazon/pkg/logger"
	"github.com/steve-ongera/amazon/pkg/tracing"
)

func main() {
	// A missing .env file is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("storefront", cfg.LogLevel)
	log.Info("starting storefront client",
		slog.String("environment", cfg.Environment),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("cred_store", cfg.CredStore),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.TracingEnabled {
		tcfg := tracing.DefaultConfig("storefront")
		tcfg.Environment = cfg.Environment
		tcfg.OTLPEndpoint = cfg.TracingEndpoint
		tcfg.Enabled = true
		shutdown, err := tracing.InitTracer(ctx, tcfg)
		if err != nil {
			log.Error("failed to initialize tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("tracing shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	creds, err := buildCredStore(cfg)
	if err != nil {
		log.Error("failed to initialize credential store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	httpc := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.Config{
			Timeout:    cfg.APITimeout,
			MaxRetries: httpclient.DefaultConfig().MaxRetries,
		}),
		httpclient.DefaultCircuitBreakerConfig("storefront-api"),
		log,
	)

	// Headless run: navigation intents are only logged.
	nav := api.NavigatorFunc(func(path string) {
		log.Info("navigate", slog.String("path", path))
	})

	client := api.New(cfg.APIBaseURL, httpc, creds, nav, log)

	notifier := notify.NewChannel(log)
	defer notifier.Close()
	unsubscribe := notifier.Subscribe(func(active []notify.Notification) {
		for _, n := range active {
			log.Info("notification", slog.String("severity", n.Severity), slog.String("message", n.Message))
		}
	})
	defer unsubscribe()

	sess := session.NewStore(client, creds, log)
	if err := sess.Initialize(ctx); err != nil {
		log.Error("failed to initialize session", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("session ready", slog.Bool("authenticated", sess.IsAuthenticated()))

	cartStore := cart.NewStore(client, notifier, log)
	wl := wishlist.NewSynchronizer(client, sess, nav, notifier, log)
	_ = checkout.New(client, cartStore, notifier, nav, log, checkout.Config{
		PollInterval: cfg.PaymentPollInterval,
		MaxAttempts:  cfg.PaymentMaxAttempts,
	})

	// Browse the catalogue and report state, demonstrating the wiring.
	page, err := client.ListProducts(ctx, api.ProductFilter{})
	if err != nil {
		log.Error("failed to list products", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("catalogue reachable", slog.Int("products", page.Count))

	if sess.IsAuthenticated() {
		cartStore.Fetch(ctx)
		stopWishlist := wl.Subscribe(ctx, func([]domain.WishlistEntry) {})
		defer stopWishlist()
		log.Info("account state",
			slog.Int("cart_items", cartStore.ItemCount()),
			slog.Int("wishlist_items", wl.Count()),
		)
	}

	<-ctx.Done()
	log.Info("storefront client stopped")
}

func buildCredStore(cfg *config.Config) (credstore.Store, error) {
	switch cfg.CredStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		return credstore.NewRedis(client, cfg.RedisKeySpace), nil
	case "memory":
		return credstore.NewMemory(), nil
	default:
		return credstore.NewFile(cfg.CredFilePath), nil
	}
}
