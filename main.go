// main.go - Entry point for the job marketplace backend server

package main // Declares the package name

import ( // Import required packages
	"context"   // Shutdown deadlines
	"errors"    // http.ErrServerClosed
	"log"       // Logging
	"net/http"  // HTTP server
	"os"        // Process signals and stdout
	"os/signal" // SIGINT / SIGTERM
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"go-jobmarket-backend/auth"       // Token issuing and verification
	"go-jobmarket-backend/cache"      // Redis cache for the job listing
	"go-jobmarket-backend/config"     // Project config management
	"go-jobmarket-backend/database"   // Database connection and setup
	"go-jobmarket-backend/events"     // Notification fan-out
	"go-jobmarket-backend/handlers"   // HTTP handlers for API endpoints
	"go-jobmarket-backend/middleware" // Request id, logging, recovery
	"go-jobmarket-backend/mqtt"       // MQTT event publisher
	"go-jobmarket-backend/store"      // Data store
	"go-jobmarket-backend/ws"         // WebSocket hub

	"github.com/gin-contrib/cors" // CORS middleware
	"github.com/gin-gonic/gin"    // Gin web framework
)

const shutdownTimeout = 10 * time.Second

func main() { // Main function, program entry point
	// STEP 1: Load configuration and establish connections
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config error: ", err)
	}
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("DB connection error: ", err)
	}
	st := store.New(db)
	tokens := auth.NewTokens(cfg.JWTSecret)
	jobsCache := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := ws.NewHub(log.New(os.Stdout, "[ws] ", log.LstdFlags))
	go hub.Run(hubCtx)

	notifiers := events.Multi{hub}
	var publisher *mqtt.Publisher
	if cfg.MQTTBroker != "" {
		// The API stays up without a broker; events then only reach WebSocket clients
		if publisher, err = mqtt.Connect(cfg.MQTTBroker, cfg.MQTTTopicPrefix); err != nil {
			log.Println("MQTT connection error, events will not be mirrored: ", err)
		} else {
			notifiers = append(notifiers, publisher)
		}
	}

	// STEP 2: Create Gin router and configure routes
	h := handlers.New(st, tokens, jobsCache, notifiers, hub)
	r := newRouter(cfg, h)

	// STEP 3: Start the web server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	// STEP 4: Graceful shutdown
	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("HTTP shutdown error: ", err)
	}
	stopHub()
	if publisher != nil {
		publisher.Close()
	}
	if err := jobsCache.Close(); err != nil {
		log.Println("Redis close error: ", err)
	}
	if err := database.Close(db); err != nil {
		log.Println("DB close error: ", err)
	}
	log.Println("Server stopped")
}

// newRouter assembles the middleware chain and mounts every route.
func newRouter(cfg *config.Config, h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(log.New(os.Stdout, "", log.LstdFlags)),
		cors.New(corsConfig(cfg.CORSOrigins)),
		middleware.Timeout(cfg.RequestTimeout),
	)
	handlers.Register(r, h)
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	c.ExposeHeaders = []string{"X-Request-ID"}
	c.MaxAge = 12 * time.Hour

	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
