package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"  // Echo web framework routing
	"github.com/redis/go-redis/v9" // Redis client for the cache and rate-limit middleware

	"github.com/iliyamo/border-control-ticketing/internal/config"     // middleware configuration
	"github.com/iliyamo/border-control-ticketing/internal/handler"    // the handlers that implement business logic
	"github.com/iliyamo/border-control-ticketing/internal/middleware" // JWT authentication, role enforcement, cache, rate limiting
	"github.com/iliyamo/border-control-ticketing/internal/model"      // role constants
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check, used by
// load balancers and monitoring to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Login lives under
// /v1/auth and needs no session; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the traveler-facing endpoints. No JWT applies:
// travelers register tickets before ever reaching the border. Both routes
// are rate limited; the status lookup is additionally served from the
// response cache so repeated polling does not hit the database.
func RegisterPublic(e *echo.Echo, t *handler.TicketHandler, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.POST("/v1/tickets", t.Create, limiter)
	e.GET("/v1/tickets", t.Lookup, limiter, cache)
}

// RegisterAgent registers the booth workflow under /v1/agent. Every route
// requires a valid token with the AGENT role. The scan route carries the
// rate limiter: a misconfigured kiosk retrying a scan in a tight loop
// would otherwise keep reissuing the lease.
func RegisterAgent(e *echo.Echo, a *handler.AgentHandler, jwtSecret string, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/v1/agent")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAgent))

	g.POST("/scan/:ticket_no", a.Scan, limiter)
	g.POST("/decide", a.Decide)
	g.PATCH("/tickets/:id/form", a.EditForm)
	g.GET("/history", a.History)
}

// RegisterAdmin registers the supervisor/admin surface under /v1/admin.
// Reads and soft delete accept SUPERVISOR or ADMIN; the irreversible purge
// is admin-only.
func RegisterAdmin(e *echo.Echo, h *handler.AdminTicketHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin))

	g.GET("/tickets/:id", h.Get)
	g.GET("/tickets/:id/overstay", h.Overstay)
	g.DELETE("/tickets/:id", h.SoftDelete)
	g.DELETE("/tickets/:id/purge", h.Purge, middleware.RequireRole(model.RoleAdmin))
}
