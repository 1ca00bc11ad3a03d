package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"cartsync/internal/session"
)

const sessionHeader = "X-Session-Token"

// buildRouter wires routes for the cart API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(allowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = allowedOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, sessionHeader)
		router.Use(cors.New(corsCfg))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/sessions", issueSessionHandler(deps.Sessions))
	router.POST("/pricing/quote", pricingQuoteHandler)

	authed := router.Group("/", sessionAuth(deps.Sessions))
	{
		authed.GET("/cart", getCartHandler)
		authed.POST("/cart/items", addItemHandler)
		authed.PATCH("/cart/items/:id", setQuantityHandler)
		authed.DELETE("/cart/items/:id", removeItemHandler)
		authed.DELETE("/cart", clearCartHandler)

		authed.POST("/auth/login", loginHandler)
		authed.POST("/auth/logout", logoutHandler)

		authed.POST("/checkout", submitCheckoutHandler)
		authed.GET("/checkout/correction", getCorrectionHandler)
		authed.POST("/checkout/correction/accept", acceptCorrectionHandler)
	}

	return router
}

// sessionAuth resolves the session token header and stashes the session on
// the request context.
func sessionAuth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(sessionHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}
		sess, err := sessions.Lookup(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}
		c.Set("session", sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet("session").(*session.Session)
}

func issueSessionHandler(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Issue()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"token":      sess.Token,
			"ttlSeconds": sessions.TTLSeconds(),
		})
	}
}
