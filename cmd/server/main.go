package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicore/contact-api/internal/api"
	"github.com/clinicore/contact-api/internal/config"
	"github.com/clinicore/contact-api/internal/mailer"
	"github.com/clinicore/contact-api/internal/ratelimit"
	"github.com/clinicore/contact-api/internal/recaptcha"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Recaptcha.SecretKey == "" {
		log.Fatal("RECAPTCHA_SECRET_KEY is required")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Build the email pipeline
	sender, err := mailer.NewSender(cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize email backend: %v", err)
	}
	log.Printf("Email backend: %s (from=%s, to=%s)", cfg.Email.Service, cfg.Email.From, cfg.Email.To)

	composer, err := mailer.NewComposer(cfg.Email)
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}
	dispatcher := mailer.NewDispatcher(sender)

	verifier := recaptcha.NewClient(cfg.Recaptcha)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Rate limiting: Redis when configured and reachable, in-process otherwise
	var limiter ratelimit.Limiter
	var redisLimiter *ratelimit.RedisLimiter
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		var redisClient *redis.Client
		if err != nil {
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
		} else {
			redisClient = redis.NewClient(opts)
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — falling back to in-memory rate limiting", cfg.Redis.URL, err)
			redisClient.Close()
		} else {
			redisLimiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
			limiter = redisLimiter
			log.Printf("Redis connected: %s (distributed rate limiting enabled)", cfg.Redis.URL)
		}
		pingCancel()
	}
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
		log.Println("Rate limiting: in-memory (single instance)")
	}
	log.Printf("Rate limit: %d requests per %d minutes per IP", cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowMinutes)

	handlers := api.NewHandlers(cfg.Recaptcha.SiteKey, limiter, verifier, composer, dispatcher)
	server := api.NewServer(cfg, handlers)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s (origins: %v)", addr, cfg.Server.AllowedOrigins)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisLimiter != nil {
		redisLimiter.Close()
	}

	log.Println("Server stopped")
}
