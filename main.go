package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	config "github.com/Keoroanthony/go-storefront/configs"
	"github.com/Keoroanthony/go-storefront/internal/auth"
	"github.com/Keoroanthony/go-storefront/internal/cart"
	"github.com/Keoroanthony/go-storefront/internal/catalog"
	"github.com/Keoroanthony/go-storefront/internal/checkout"
	"github.com/Keoroanthony/go-storefront/internal/db"
	"github.com/Keoroanthony/go-storefront/internal/events"
	"github.com/Keoroanthony/go-storefront/internal/handlers"
	"github.com/Keoroanthony/go-storefront/internal/live"
	"github.com/Keoroanthony/go-storefront/internal/media"
	"github.com/Keoroanthony/go-storefront/internal/notifier"
	"github.com/Keoroanthony/go-storefront/internal/orders"
	"github.com/Keoroanthony/go-storefront/internal/payments"
	"github.com/Keoroanthony/go-storefront/internal/routes"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadAppConfig()

	db.Init()
	auth.Init(config.LoadOIDCConfig())

	ctx := context.Background()

	cartStore := newCartStore(ctx, cfg)

	shipping, err := checkout.NewShippingRule(cfg.ShippingFeeRule)
	if err != nil {
		log.Fatalf("Invalid SHIPPING_FEE_RULE: %v", err)
	}

	bus := events.NewEmitter()
	hub := live.NewHub(cfg.CORSOrigins...)

	orderSvc := orders.NewService(db.DB, bus)
	bus.Subscribe(events.PaymentStatusChanged, orderSvc.PaymentStatusHook())
	bus.Subscribe("", hub)

	emailCfg := config.LoadEmailConfig()
	var mailer notifier.Mailer
	if m, err := notifier.NewSESMailer(ctx, emailCfg); err != nil {
		log.Printf("Email disabled: %v", err)
	} else {
		mailer = m
	}

	var sms notifier.SMSSender
	if atCfg := config.LoadAfricaTalkingConfig(); atCfg.APIKey != "" {
		sms = notifier.NewAfricasTalking(atCfg, &http.Client{Timeout: 10 * time.Second})
	}

	var orderHook *notifier.OrderHook
	if mailer != nil || sms != nil {
		orderHook = notifier.NewOrderHook(db.DB, mailer, sms)
		bus.Subscribe(events.OrderPlaced, orderHook)
		bus.Subscribe(events.OrderStatusChanged, orderHook)
	}

	var kafkaHook *events.KafkaHook
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.DialKafka(cfg.KafkaBrokers, 10, 3*time.Second)
		if err != nil {
			log.Printf("Kafka disabled: %v", err)
		} else {
			kafkaHook = events.NewKafkaHook(producer, cfg.KafkaTopic)
			bus.Subscribe("", kafkaHook)
		}
	}

	carts := cart.NewService(db.DB, cartStore)
	mediaStore := media.NewStore(cfg.MediaRoot, cfg.MediaURL)

	h := &handlers.Handler{
		Catalog:   catalog.NewService(db.DB),
		Cart:      carts,
		Checkout:  checkout.NewService(db.DB, carts, shipping, bus),
		Orders:    orderSvc,
		Payments:  payments.NewService(db.DB, bus, cfg.UPIPayeeName),
		Media:     mediaStore,
		Mailer:    mailer,
		ContactTo: emailCfg.ContactEmail,
		Live:      hub,
	}

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ── session store ──
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions(auth.SessionName, store))

	r.Static(mediaStore.URL, mediaStore.Root)
	routes.SetupRoutes(r, h)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if orderHook != nil {
		orderHook.Wait()
	}
	if kafkaHook != nil {
		_ = kafkaHook.Close()
	}
}

func newCartStore(ctx context.Context, cfg config.AppConfig) cart.Store {
	switch cfg.CartStore {
	case "memory":
		log.Println("Cart store: memory")
		return cart.NewMemoryStore()
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("Redis unavailable at %s: %v", cfg.RedisAddr, err)
		}
		log.Printf("Cart store: redis at %s", cfg.RedisAddr)
		return cart.NewRedisStore(client, cfg.CartTTL)
	default:
		store := cart.NewGormStore(db.DB)
		if removed, err := store.Purge(ctx, time.Now().Add(-cfg.CartTTL)); err != nil {
			log.Printf("Cart purge failed: %v", err)
		} else if removed > 0 {
			log.Printf("Purged %d stale carts", removed)
		}
		return store
	}
}
