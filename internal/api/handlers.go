package api

import (
	"log"
	"net/http"

	"github.com/axellelanca/visitorpulse/internal/services"
	"github.com/gin-gonic/gin"
)

// CookieSettings describes the visitor identity cookie issued on first contact.
type CookieSettings struct {
	Name   string // Cookie name, visitor_id by default
	MaxAge int    // Lifetime in seconds (one year by default)
	Secure bool   // Restrict the cookie to HTTPS
	Domain string // Optional cookie domain
}

// Services groups the business services the routes depend on.
type Services struct {
	Heartbeat *services.HeartbeatService
	Stats     *services.StatsService
	Query     *services.QueryService
}

// SetupRoutes configures all Gin API routes and injects necessary dependencies
func SetupRoutes(router *gin.Engine, svc Services, cookie CookieSettings) {
	// Health Check Route - used for monitoring service availability
	router.GET("/health", HealthCheckHandler)

	router.GET("/", GetStatsHandler(svc.Stats))
	router.POST("/heartbeat", HeartbeatHandler(svc.Heartbeat, cookie))
	router.POST("/query", QueryHandler(svc.Query))
}

// HealthCheckHandler handles the /health route to verify service status
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HeartbeatRequest is the JSON body sent by the tracking script on every heartbeat.
// Every field is optional; the body is validated but not stored.
type HeartbeatRequest struct {
	Path     string `json:"path" binding:"omitempty,max=2048"`
	Referrer string `json:"referrer" binding:"omitempty,max=2048"`
	Title    string `json:"title" binding:"omitempty,max=512"`
}

// HeartbeatHandler records one heartbeat for the visitor identified by the cookie,
// issuing the cookie when the request carried none.
func HeartbeatHandler(heartbeatService *services.HeartbeatService, cookie CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req HeartbeatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		// A missing cookie and an empty one are both first contacts
		token, _ := c.Cookie(cookie.Name)

		result, err := heartbeatService.RecordHeartbeat(c.Request.Context(), token, c.ClientIP())
		if err != nil {
			log.Printf("Error recording heartbeat: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record heartbeat"})
			return
		}

		if result.NewCookieToken != "" {
			c.SetSameSite(http.SameSiteStrictMode)
			c.SetCookie(cookie.Name, result.NewCookieToken, cookie.MaxAge, "/", cookie.Domain, cookie.Secure, true)
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"session_id": result.Session.ID,
			"visitor_id": result.Visitor.ID,
		})
	}
}

// GetStatsHandler returns the current statistics snapshot
func GetStatsHandler(statsService *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, err := statsService.GetStats(c.Request.Context())
		if err != nil {
			log.Printf("Error computing stats: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

// QueryRequest is the body of POST /query. SQL stays untyped so that a non-string
// value reaches validation instead of failing the JSON binding.
type QueryRequest struct {
	SQL any `json:"sql"`
}

// QueryHandler runs an ad-hoc SELECT. It always answers 200: rejections and
// execution failures are reported in the "error" field of the payload.
func QueryHandler(queryService *services.QueryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			// Leaves req.SQL nil, which validation rejects
			log.Printf("Invalid query body: %v", err)
		}

		c.JSON(http.StatusOK, queryService.Run(c.Request.Context(), req.SQL))
	}
}
