// handler.go - Shared handler dependencies, route table and response helpers

package handlers // Declares the package name

import ( // Import required packages
	"context"  // Cache/hub signatures
	"log"      // Server-side error logging
	"net/http" // HTTP status codes
	"strconv"  // Path id parsing

	"go-jobmarket-backend/auth"       // Token issuing
	"go-jobmarket-backend/events"     // Domain notifications
	"go-jobmarket-backend/middleware" // Authenticate / RequireRoles
	"go-jobmarket-backend/models"     // Roles
	"go-jobmarket-backend/store"      // Data store

	"github.com/gin-gonic/gin" // Gin web framework
)

// JobsCache caches the public job listing under generation-versioned keys.
// *cache.Redis satisfies it.
type JobsCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
	Generation(ctx context.Context, name string) (int64, error)
	Invalidate(ctx context.Context, name string) error
}

// SocketServer attaches an authenticated WebSocket connection. *ws.Hub satisfies it.
type SocketServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uint) error
}

// Handler holds everything the endpoints need; nothing is read from globals.
type Handler struct {
	store  *store.Store
	tokens *auth.Tokens
	cache  JobsCache
	events events.Notifier
	hub    SocketServer
}

// New wires the handlers. A nil cache or notifier is replaced by a no-op;
// a nil hub leaves /ws unregistered.
func New(st *store.Store, tokens *auth.Tokens, c JobsCache, n events.Notifier, hub SocketServer) *Handler {
	if c == nil {
		c = noCache{}
	}
	if n == nil {
		n = events.Nop{}
	}
	return &Handler{store: st, tokens: tokens, cache: c, events: n, hub: hub}
}

// Register mounts every route. Protected routes run
// Authenticate -> RequireRoles -> handler.
func Register(r gin.IRouter, h *Handler) {
	authenticate := middleware.Authenticate(h.tokens)
	ownerOnly := middleware.RequireRoles(models.RoleOwner)
	workerOnly := middleware.RequireRoles(models.RoleWorker)

	// Public routes (no authentication required)
	r.GET("/", h.Root)
	r.GET("/healthz", h.Health)
	r.POST("/users", h.CreateTestUser)
	r.GET("/test-db", h.ListUsers)
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)
	r.GET("/jobs", h.ListJobs)

	// Protected routes
	r.POST("/jobs", authenticate, ownerOnly, h.CreateJob)
	r.POST("/jobs/:jobId/apply", authenticate, workerOnly, h.Apply)
	r.GET("/jobs/:jobId/applications", authenticate, ownerOnly, h.ListApplications)
	r.PATCH("/applications/:applicationId", authenticate, ownerOnly, h.UpdateApplicationStatus)

	if h.hub != nil {
		r.GET("/ws", authenticate, h.WebSocket)
	}
}

// badRequest and friends keep every error body in the {"error": msg} shape.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
}

// serverError logs the real cause and answers with a generic message.
func serverError(c *gin.Context, msg string, err error) {
	log.Printf("[%s %s] rid=%s %s: %v", c.Request.Method, c.FullPath(), middleware.RequestIDFrom(c), msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// mustClaims returns the caller's claims; the route table guarantees they exist.
func mustClaims(c *gin.Context) *auth.Claims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		panic("handlers: protected route mounted without middleware.Authenticate")
	}
	return claims
}

type noCache struct{}

func (noCache) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (noCache) SetJSON(context.Context, string, any) error         { return nil }
func (noCache) Generation(context.Context, string) (int64, error)  { return 0, nil }
func (noCache) Invalidate(context.Context, string) error           { return nil }
